// pkg/cli/repl.go
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"blocktree/pkg/index"
)

// ErrInvalidInput names the invalid-input error kind. The REPL does not
// return it: a prompt answer that is not the integer a command needs is
// reported with a printed message, and a malformed CSV row is counted as
// skipped.
var ErrInvalidInput = errors.New("cli: invalid input")

// REPL implements the index file manager's interactive menu: create,
// open, insert, search, load, print, extract, quit. It never performs
// tree algorithms itself; all of that lives behind index.Manager.
type REPL struct {
	manager *index.Manager
	shell   *Shell

	output    io.Writer
	errOutput io.Writer

	running bool
}

// NewREPL creates a REPL reading commands from input and writing output
// and errors to the given writers.
func NewREPL(input io.Reader, output, errOutput io.Writer) *REPL {
	return &REPL{
		manager:   index.New(),
		shell:     NewShell(input, output),
		output:    output,
		errOutput: errOutput,
	}
}

// Close closes any index file the REPL has open.
func (r *REPL) Close() error {
	return r.manager.Close()
}

// Run prints the menu and dispatches commands until "quit" or EOF.
func (r *REPL) Run() {
	r.running = true

	for r.running {
		r.printMenu()
		cmd, eof := r.readLine("Enter command: ")
		cmd = strings.ToLower(strings.TrimSpace(cmd))

		if cmd == "" {
			if eof {
				return
			}
			continue
		}

		switch cmd {
		case "create":
			r.cmdCreate()
		case "open":
			r.cmdOpen()
		case "insert":
			r.cmdInsert()
		case "search":
			r.cmdSearch()
		case "load":
			r.cmdLoad()
		case "print":
			r.cmdPrint()
		case "extract":
			r.cmdExtract()
		case "quit":
			fmt.Fprintln(r.output, "Exiting...")
			r.running = false
		default:
			fmt.Fprintln(r.output, "Invalid command. Please try again.")
		}

		if eof {
			return
		}
	}
}

func (r *REPL) printMenu() {
	fmt.Fprintln(r.output, "\nB-Tree Index File Manager")
	fmt.Fprintln(r.output, "Commands:")
	fmt.Fprintln(r.output, "create - Create a new index file")
	fmt.Fprintln(r.output, "open   - Open an existing index file")
	fmt.Fprintln(r.output, "insert - Insert a key-value pair")
	fmt.Fprintln(r.output, "search - Search for a key")
	fmt.Fprintln(r.output, "load   - Load key-value pairs from a CSV file")
	fmt.Fprintln(r.output, "print  - Print all key-value pairs")
	fmt.Fprintln(r.output, "extract- Extract key-value pairs to a CSV file")
	fmt.Fprintln(r.output, "quit   - Exit the program")
}

func (r *REPL) readLine(prompt string) (string, bool) {
	r.shell.SetPrompt(prompt)
	return r.shell.ReadLine()
}

func (r *REPL) cmdCreate() {
	filename, _ := r.readLine("Enter filename for new index: ")
	filename = strings.TrimSpace(filename)

	err := r.manager.Create(filename, false)
	if errors.Is(err, index.ErrFileExists) {
		answer, _ := r.readLine(fmt.Sprintf("File %s already exists. Overwrite? (y/n): ", filename))
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			return
		}
		err = r.manager.Create(filename, true)
	}
	if err != nil {
		r.printError(err)
		return
	}
	fmt.Fprintf(r.output, "Created index file: %s\n", filename)
}

func (r *REPL) cmdOpen() {
	filename, _ := r.readLine("Enter filename to open: ")
	filename = strings.TrimSpace(filename)

	if err := r.manager.Open(filename); err != nil {
		r.printError(err)
		return
	}
	fmt.Fprintf(r.output, "Opened index file: %s\n", filename)
}

func (r *REPL) cmdInsert() {
	keyStr, _ := r.readLine("Enter key (unsigned integer): ")
	valStr, _ := r.readLine("Enter value (unsigned integer): ")

	key, err := strconv.ParseUint(strings.TrimSpace(keyStr), 10, 64)
	if err != nil {
		fmt.Fprintln(r.output, "Invalid input. Please enter unsigned integers.")
		return
	}
	value, err := strconv.ParseUint(strings.TrimSpace(valStr), 10, 64)
	if err != nil {
		fmt.Fprintln(r.output, "Invalid input. Please enter unsigned integers.")
		return
	}

	if err := r.manager.Insert(key, value); err != nil {
		r.printError(err)
		return
	}
	fmt.Fprintln(r.output, "Inserted successfully.")
}

func (r *REPL) cmdSearch() {
	keyStr, _ := r.readLine("Enter key to search: ")
	key, err := strconv.ParseUint(strings.TrimSpace(keyStr), 10, 64)
	if err != nil {
		fmt.Fprintln(r.output, "Invalid input. Please enter an unsigned integer.")
		return
	}

	value, found, err := r.manager.Search(key)
	if err != nil {
		r.printError(err)
		return
	}
	if found {
		fmt.Fprintf(r.output, "Found: Key=%d, Value=%d\n", key, value)
		return
	}
	fmt.Fprintf(r.output, "Key %d not found.\n", key)
}

func (r *REPL) cmdLoad() {
	filename, _ := r.readLine("Enter CSV filename to load: ")
	filename = strings.TrimSpace(filename)

	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(r.output, "Error loading CSV: %v\n", err)
		return
	}
	defer f.Close()

	errCount := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseCSVLine(scanner.Text())
		if !ok {
			errCount++
			continue
		}
		if err := r.manager.Insert(key, value); err != nil {
			errCount++
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(r.output, "Error loading CSV: %v\n", err)
		return
	}

	fmt.Fprintf(r.output, "Loaded data from CSV. (%d row(s) skipped)\n", errCount)
}

// parseCSVLine parses a "key,value" line of unsigned integers. It reports
// ok=false for any line that doesn't split into exactly two such integers,
// matching the original's blanket row-skip behavior on any parse failure.
func parseCSVLine(line string) (key, value uint64, ok bool) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 2 {
		return 0, 0, false
	}

	key, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	value, err = strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return key, value, true
}

func (r *REPL) cmdPrint() {
	empty := true
	err := r.manager.Traverse(func(key, value uint64) error {
		empty = false
		fmt.Fprintf(r.output, "Key: %d, Value: %d\n", key, value)
		return nil
	})
	if err != nil {
		r.printError(err)
		return
	}
	if empty {
		fmt.Fprintln(r.output, "Index is empty.")
	}
}

func (r *REPL) cmdExtract() {
	filename, _ := r.readLine("Enter CSV filename to extract to: ")
	filename = strings.TrimSpace(filename)

	if _, err := os.Stat(filename); err == nil {
		answer, _ := r.readLine(fmt.Sprintf("File %s already exists. Overwrite? (y/n): ", filename))
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			return
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(r.output, "Error extracting to CSV: %v\n", err)
		return
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	err = r.manager.Traverse(func(key, value uint64) error {
		_, err := fmt.Fprintf(w, "%d,%d\n", key, value)
		return err
	})
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		fmt.Fprintf(r.output, "Error extracting to CSV: %v\n", err)
		return
	}
	fmt.Fprintf(r.output, "Successfully extracted data to %s\n", filename)
}

func (r *REPL) printError(err error) {
	fmt.Fprintf(r.errOutput, "An error occurred: %v\n", err)
}
