package reconcile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TerminalDecider prompts the operator on the controlling terminal. The
// prompt blocks indefinitely; cancelling is the only way to abort mid-run.
type TerminalDecider struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalDecider creates a decider reading decisions from in.
func NewTerminalDecider(in io.Reader, out io.Writer) *TerminalDecider {
	return &TerminalDecider{in: bufio.NewReader(in), out: out}
}

// Decide asks for one of yes, no, or cancel, re-prompting on anything else.
// EOF on the input is treated as cancel.
func (t *TerminalDecider) Decide(destPath, sourcePath string) (Decision, error) {
	for {
		fmt.Fprintf(t.out, "Update %s with the contents of %s? [y/n/c] ", sourcePath, destPath)
		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			return Cancel, nil
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return Accept, nil
		case "n", "no":
			return Decline, nil
		case "c", "cancel":
			return Cancel, nil
		}
		if err != nil {
			return Cancel, nil
		}
	}
}
