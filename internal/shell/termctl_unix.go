//go:build unix

package shell

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// foregroundPgrp reads the process group currently owning the controlling
// terminal attached to fd, the same ioctl the teacher's pty relay uses to
// inspect a pty master's foreground group (TIOCGPGRP).
func foregroundPgrp(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCGPGRP)
}

// setForegroundPgrp transfers terminal ownership of fd to pgid (TIOCSPGRP).
func setForegroundPgrp(fd, pgid int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, pgid)
}

// killpg sends sig to every process in the group led by pgid.
func killpg(pgid int, sig syscall.Signal) error {
	return syscall.Kill(-pgid, sig)
}

// waitStatus is the reaped child's exit/stop/continue status. Aliased so
// worker.go can share one signature across the unix and stub builds.
type waitStatus = unix.WaitStatus

// waitAny reaps one pending child-state transition without blocking,
// mirroring the WNOHANG|WUNTRACED|WCONTINUED waitpid loop of spec.md §4.3.
// pid == 0 means no pending transition (StillAlive); err == syscall.ECHILD
// means there are no children left to wait for.
func waitAny() (pid int, ws waitStatus, err error) {
	pid, err = unix.Wait4(-1, &ws, unix.WNOHANG|unix.WUNTRACED|unix.WCONTINUED, nil)
	return pid, ws, err
}

// reapOne performs a single blocking wait for a specific pid. Used only to
// clean up a leader process whose follower failed to start in spawnChild,
// per spec.md §9 Open Question 1 — a narrow, documented exception to the
// Worker's otherwise strictly non-blocking reap discipline.
func reapOne(pid int) {
	var ws waitStatus
	_, _ = unix.Wait4(pid, &ws, 0, nil)
}
