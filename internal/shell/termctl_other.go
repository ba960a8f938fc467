//go:build !unix

package shell

import (
	"fmt"
	"syscall"
)

// Terminal process-group control (tcgetpgrp/tcsetpgrp/killpg/waitpid) is a
// POSIX job-control primitive; spec.md §1 explicitly scopes portability to
// "non-POSIX systems" out, so these stubs exist only so the package still
// builds elsewhere. NewWorker surfaces the error as a fatal startup error.

func foregroundPgrp(fd int) (int, error) {
	return 0, fmt.Errorf("job control requires a POSIX terminal")
}

func setForegroundPgrp(fd, pgid int) error {
	return fmt.Errorf("job control requires a POSIX terminal")
}

func killpg(pgid int, sig syscall.Signal) error {
	return fmt.Errorf("job control requires a POSIX terminal")
}

func waitAny() (pid int, ws waitStatus, err error) {
	return 0, waitStatus{}, fmt.Errorf("job control requires a POSIX terminal")
}

func reapOne(pid int) {}

// waitStatus stands in for unix.WaitStatus on non-unix builds.
type waitStatus struct{}

func (waitStatus) Exited() bool            { return false }
func (waitStatus) Signaled() bool          { return false }
func (waitStatus) Stopped() bool           { return false }
func (waitStatus) Continued() bool         { return false }
func (waitStatus) ExitStatus() int         { return 0 }
func (waitStatus) Signal() syscall.Signal  { return 0 }
