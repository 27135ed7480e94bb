// pkg/cli/shell_test.go
package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewShell(t *testing.T) {
	shell := NewShell(strings.NewReader(""), &bytes.Buffer{})
	if shell == nil {
		t.Fatal("NewShell returned nil")
	}
	if shell.prompt != "> " {
		t.Errorf("expected default prompt '> ', got %q", shell.prompt)
	}
}

func TestShell_SetPrompt(t *testing.T) {
	shell := NewShell(nil, nil)
	shell.SetPrompt("custom> ")
	if shell.prompt != "custom> " {
		t.Errorf("expected prompt 'custom> ', got %q", shell.prompt)
	}
}

func TestShell_ReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		eof   bool
	}{
		{"single line with newline", "hello\n", "hello", false},
		{"trailing CRLF", "hello\r\n", "hello", false},
		{"no trailing newline is EOF", "hello", "hello", true},
		{"empty input is immediate EOF", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shell := NewShell(strings.NewReader(tt.input), &bytes.Buffer{})
			got, eof := shell.ReadLine()
			if got != tt.want || eof != tt.eof {
				t.Errorf("ReadLine() = (%q, %v), want (%q, %v)", got, eof, tt.want, tt.eof)
			}
		})
	}
}

func TestShell_ReadLine_WritesPromptToOutput(t *testing.T) {
	output := &bytes.Buffer{}
	shell := NewShell(strings.NewReader("x\n"), output)
	shell.SetPrompt("idx> ")

	shell.ReadLine()

	if !strings.HasPrefix(output.String(), "idx> ") {
		t.Errorf("output = %q, want prefix %q", output.String(), "idx> ")
	}
}

func TestShell_ReadLine_NilReaderIsEOF(t *testing.T) {
	shell := NewShell(nil, nil)
	line, eof := shell.ReadLine()
	if line != "" || !eof {
		t.Errorf("ReadLine() = (%q, %v), want (\"\", true)", line, eof)
	}
}
