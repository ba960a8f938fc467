package shell

import (
	"fmt"
	"os"
	"strconv"
	"syscall"
)

// isBuiltin reports whether name is handled in-process by the Worker
// rather than spawned as a child (spec.md §4.3 "Built-in commands").
func isBuiltin(name string) bool {
	switch name {
	case "exit", "jobs", "fg", "cd":
		return true
	}
	return false
}

func (w *Worker) runBuiltin(stage Stage, tx chan<- ShellMsg) {
	switch stage.Cmd {
	case "exit":
		w.runExit(stage.Args, tx)
	case "jobs":
		w.runJobs(tx)
	case "fg":
		w.runFg(stage.Args, tx)
	case "cd":
		w.runCd(stage.Args, tx)
	}
}

// runExit refuses to quit while jobs remain, per spec.md §4.3: the shell
// must not abandon stopped or running children. Otherwise it takes an
// optional explicit exit code argument, defaulting to the last exit_val.
func (w *Worker) runExit(args []string, tx chan<- ShellMsg) {
	if len(w.jobs) > 0 {
		fmt.Fprintln(os.Stderr, "jcsh: there are stopped or running jobs")
		w.exitVal = 1
		tx <- ShellMsg{Kind: Continue, Code: w.exitVal}
		return
	}

	code := w.exitVal
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "jcsh: exit: %s is not a valid argument\n", args[0])
			w.exitVal = 1
			tx <- ShellMsg{Kind: Continue, Code: w.exitVal}
			return
		}
		code = n
	}

	tx <- ShellMsg{Kind: Quit, Code: code}
}

// runJobs lists every tracked job with its id, state, and original line.
func (w *Worker) runJobs(tx chan<- ShellMsg) {
	for _, id := range w.jobsSorted() {
		job := w.jobs[id]
		state := ProcRun
		if w.isGroupStopped(job.Pgid) {
			state = ProcStop
		}
		fmt.Fprintf(os.Stderr, "[%d] %s\t%s\n", id, state, job.Line)
	}
	w.exitVal = 0
	tx <- ShellMsg{Kind: Continue, Code: w.exitVal}
}

// runFg resumes a stopped (or backgrounded) job in the foreground: send it
// SIGCONT, transfer the terminal to its group, and wait for manageJob to
// reply once it next leaves the foreground — exactly the asymmetric reply
// timing spawnChild uses for a freshly spawned job.
func (w *Worker) runFg(args []string, tx chan<- ShellMsg) {
	jobID, ok := w.resolveFgTarget(args)
	if !ok {
		fmt.Fprintln(os.Stderr, "jcsh: fg: no such job")
		w.exitVal = 1
		tx <- ShellMsg{Kind: Continue, Code: w.exitVal}
		return
	}

	job := w.jobs[jobID]
	fmt.Fprintln(os.Stderr, job.Line)

	if err := setForegroundPgrp(w.ttyFd, job.Pgid); err != nil {
		w.log.Warn().Err(err).Msg("failed to transfer terminal to job")
	}
	if err := killpg(job.Pgid, syscall.SIGCONT); err != nil && err != syscall.ESRCH {
		w.log.Warn().Err(err).Msg("failed to continue job")
	}
	w.setAllRunning(job.Pgid)
	w.fg = &job.Pgid
	// Reply is sent later by manageJob, once the job stops again or exits.
}

// resolveFgTarget picks the job fg should act on. spec.md requires an
// explicit numeric job id argument — unlike exit, fg has no no-argument
// form (`fg` with no id is a usage error, per the original's `run_fg`).
func (w *Worker) resolveFgTarget(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, false
	}
	if _, ok := w.jobs[n]; !ok {
		return 0, false
	}
	return n, true
}

func (w *Worker) setAllRunning(pgid int) {
	entry, ok := w.pgids[pgid]
	if !ok {
		return
	}
	for pid := range entry.Pids {
		w.setPidState(pid, ProcRun)
	}
}

// runCd changes the shell's own working directory. Unlike every other
// command this must run in the Worker's process, not a forked child,
// or the chdir would have no visible effect (spec.md §4.3 "cd").
func (w *Worker) runCd(args []string, tx chan<- ShellMsg) {
	dir := os.Getenv("HOME")
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.Chdir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "jcsh: cd: %v\n", err)
		w.exitVal = 1
	} else {
		w.exitVal = 0
	}
	tx <- ShellMsg{Kind: Continue, Code: w.exitVal}
}
