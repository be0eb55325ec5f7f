// Package handoff transfers process control to the entry command once
// the gate is satisfied.
//
// The hand-off is a true exec: the gate's process image is replaced, so
// the entry command inherits the pid, stdio, and signal routing, and its
// exit code is the container's exit code. No supervisory wrapper remains
// running. The worker fleet ships Linux containers only, where exec is
// always available.
package handoff

import (
	"errors"
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"
)

// ExecError reports that the entry command could not be located or
// launched.
type ExecError struct {
	Command string
	Cause   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("exec %s: %v", e.Command, e.Cause)
}

func (e *ExecError) Unwrap() error {
	return e.Cause
}

// Exec resolves argv[0] on PATH and replaces the current process image.
// On success it never returns. Callers must flush any buffered log
// output first; nothing survives the exec.
func Exec(argv, env []string) error {
	if len(argv) == 0 || argv[0] == "" {
		return &ExecError{Command: "", Cause: errors.New("empty entry command")}
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return &ExecError{Command: argv[0], Cause: err}
	}

	if err := unix.Exec(path, argv, env); err != nil {
		return &ExecError{Command: path, Cause: err}
	}
	return nil
}
