// pkg/cli/shell.go
package cli

import (
	"bufio"
	"io"
	"strings"
)

// Shell reads single lines of interactive input and writes prompts. It
// has no notion of multi-line statements or quoting; each call to
// ReadLine returns exactly one line.
type Shell struct {
	reader *bufio.Reader
	output io.Writer

	// prompt is shown before each line read.
	prompt string
}

// NewShell creates a shell reading from input and writing prompts to
// output. If input is nil, ReadLine always reports EOF.
func NewShell(input io.Reader, output io.Writer) *Shell {
	var reader *bufio.Reader
	if input != nil {
		reader = bufio.NewReader(input)
	}

	return &Shell{
		reader: reader,
		output: output,
		prompt: "> ",
	}
}

// SetPrompt changes the prompt string.
func (s *Shell) SetPrompt(prompt string) {
	s.prompt = prompt
}

// ReadLine writes the prompt, then reads and returns a single line with
// trailing whitespace stripped, and whether EOF was reached.
func (s *Shell) ReadLine() (string, bool) {
	if s.output != nil {
		io.WriteString(s.output, s.prompt)
	}

	if s.reader == nil {
		return "", true
	}

	line, err := s.reader.ReadString('\n')
	line = strings.TrimRight(line, " \t\r\n")
	return line, err != nil
}
