package shell

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Worker is the sole owner of all shell state (spec.md §3). It consumes
// WorkerMsg values one at a time — the single-consumer discipline that
// lets every handler below mutate the tables without locking.
type Worker struct {
	exitVal int
	fg      *int // nil => the shell itself is foreground
	jobs    map[int]jobEntry
	pgids   map[int]*pgidEntry
	procs   map[int]ProcInfo

	shellPgid int
	ttyFd     int

	log     zerolog.Logger
	session uuid.UUID
}

// NewWorker captures the shell's own process group from the controlling
// terminal, exactly once (spec.md §3 invariant 5), and builds an empty
// Worker. Failure here is the fatal "signal-plumbing error at startup"
// category of spec.md §7.4.
func NewWorker(ttyFd int, log zerolog.Logger) (*Worker, error) {
	pgid, err := foregroundPgrp(ttyFd)
	if err != nil {
		return nil, fmt.Errorf("failed to read shell process group: %w", err)
	}
	session := uuid.New()
	log = log.With().Str("session", session.String()).Logger()
	log.Debug().Int("shellPgid", pgid).Msg("worker initialized")
	return &Worker{
		jobs:      make(map[int]jobEntry),
		pgids:     make(map[int]*pgidEntry),
		procs:     make(map[int]ProcInfo),
		shellPgid: pgid,
		ttyFd:     ttyFd,
		log:       log,
		session:   session,
	}, nil
}

// Run drains rx until it is closed, replying on tx per spec.md §4.3/P4.
func (w *Worker) Run(rx <-chan WorkerMsg, tx chan<- ShellMsg) {
	w.log.Debug().Msg("worker message loop started")
	for msg := range rx {
		if msg.IsCmd {
			w.handleCmd(msg.Cmd, tx)
			continue
		}
		w.handleSignal(msg.Signal, tx)
	}
	w.log.Debug().Msg("worker message loop stopped")
}

func (w *Worker) handleCmd(line string, tx chan<- ShellMsg) {
	stages, err := parseCmd(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jcsh: %v\n", err)
		w.exitVal = 1
		tx <- ShellMsg{Kind: Continue, Code: w.exitVal}
		return
	}

	if len(stages) == 1 && isBuiltin(stages[0].Cmd) {
		w.runBuiltin(stages[0], tx)
		return
	}

	if !w.spawnChild(line, stages) {
		tx <- ShellMsg{Kind: Continue, Code: w.exitVal}
	}
	// On success the reply comes later, once the pipeline leaves the
	// foreground (manageJob), per spec.md §4.3 step 3 / P4.
}

func (w *Worker) handleSignal(sig int, tx chan<- ShellMsg) {
	w.log.Debug().Stringer("signal", syscall.Signal(sig)).Msg("signal delivered")
	if syscall.Signal(sig) == syscall.SIGCHLD {
		w.waitChildren(tx)
	}
	// SIGINT/SIGTSTP are delivered straight to the foreground group by the
	// kernel once the terminal has been transferred; the Worker itself
	// ignores them here, per spec.md §4.3 "Other Signal(n)".
}

// waitChildren reaps every pending child-state transition in a tight
// non-blocking loop (spec.md §4.3 table), stopping once the kernel reports
// nothing left to reap.
func (w *Worker) waitChildren(tx chan<- ShellMsg) {
	for {
		pid, ws, err := waitAny()
		switch {
		case err == syscall.ECHILD:
			return
		case err != nil:
			fmt.Fprintf(os.Stderr, "\njcsh: wait failed: %v\n", err)
			os.Exit(1)
		case pid == 0:
			return
		case ws.Exited():
			w.exitVal = ws.ExitStatus()
			w.processTerm(pid, tx)
		case ws.Signaled():
			fmt.Fprintf(os.Stderr, "\njcsh: child terminated by signal: pid=%d signal=%d\n", pid, ws.Signal())
			w.exitVal = int(ws.Signal()) + 128
			w.processTerm(pid, tx)
		case ws.Stopped():
			w.setPidState(pid, ProcStop)
			w.processStop(pid, tx)
		case ws.Continued():
			w.setPidState(pid, ProcRun)
		}
	}
}

func (w *Worker) processTerm(pid int, tx chan<- ShellMsg) {
	jobID, pgid, ok := w.removePid(pid)
	if ok {
		w.manageJob(jobID, pgid, tx)
	}
}

func (w *Worker) processStop(pid int, tx chan<- ShellMsg) {
	info, ok := w.procs[pid]
	if !ok {
		return
	}
	entry, ok := w.pgids[info.Pgid]
	if !ok {
		return
	}
	w.manageJob(entry.JobID, info.Pgid, tx)
}

// manageJob implements spec.md §4.3's manage_job policy.
func (w *Worker) manageJob(jobID, pgid int, tx chan<- ShellMsg) {
	job, ok := w.jobs[jobID]
	if !ok {
		return
	}
	entry := w.pgids[pgid]
	isFg := w.fg != nil && *w.fg == pgid

	empty := entry == nil || len(entry.Pids) == 0

	if isFg {
		switch {
		case empty:
			fmt.Fprintf(os.Stderr, "[%d] done\t%s\n", jobID, job.Line)
			w.removeJob(jobID)
			w.setShellFg(tx)
		case w.isGroupStopped(pgid):
			fmt.Fprintf(os.Stderr, "[%d] stopped\t%s\n", jobID, job.Line)
			w.setShellFg(tx)
		}
		return
	}

	if empty {
		fmt.Fprintf(os.Stderr, "[%d] done\t%s\n", jobID, job.Line)
		w.removeJob(jobID)
	}
}

func (w *Worker) isGroupStopped(pgid int) bool {
	entry, ok := w.pgids[pgid]
	if !ok {
		return true
	}
	for pid := range entry.Pids {
		if w.procs[pid].State == ProcRun {
			return false
		}
	}
	return true
}

// setShellFg returns terminal ownership to the shell and resumes the Reader.
func (w *Worker) setShellFg(tx chan<- ShellMsg) {
	w.fg = nil
	if err := setForegroundPgrp(w.ttyFd, w.shellPgid); err != nil {
		w.log.Warn().Err(err).Msg("failed to return terminal to shell")
	}
	tx <- ShellMsg{Kind: Continue, Code: w.exitVal}
}

func (w *Worker) insertJob(jobID, pgid int, pids map[int]struct{}, line string) {
	w.jobs[jobID] = jobEntry{Pgid: pgid, Line: line}
	for pid := range pids {
		w.procs[pid] = ProcInfo{State: ProcRun, Pgid: pgid}
	}
	w.pgids[pgid] = &pgidEntry{JobID: jobID, Pids: pids}
}

func (w *Worker) removePid(pid int) (jobID, pgid int, ok bool) {
	info, ok := w.procs[pid]
	if !ok {
		return 0, 0, false
	}
	pgid = info.Pgid
	delete(w.procs, pid)

	entry, ok := w.pgids[pgid]
	if !ok {
		return 0, 0, false
	}
	delete(entry.Pids, pid)
	return entry.JobID, pgid, true
}

func (w *Worker) removeJob(jobID int) {
	job, ok := w.jobs[jobID]
	if !ok {
		return
	}
	delete(w.jobs, jobID)
	delete(w.pgids, job.Pgid)
}

func (w *Worker) setPidState(pid int, state ProcState) {
	info, ok := w.procs[pid]
	if !ok {
		return
	}
	info.State = state
	w.procs[pid] = info
}

// newJobID is the dense-search allocator of spec.md §3 invariant 6.
func (w *Worker) newJobID() int {
	for i := 0; ; i++ {
		if _, used := w.jobs[i]; !used {
			return i
		}
	}
}

// spawnChild implements spec.md §4.3's spawn_child. It returns false if no
// job was created, in which case the caller must reply Continue itself.
func (w *Worker) spawnChild(line string, stages []Stage) bool {
	jobID := w.newJobID()

	if len(stages) > 2 {
		fmt.Fprintln(os.Stderr, "jcsh: pipelines of more than two commands are not supported")
		return false
	}

	var pr, pw *os.File
	if len(stages) == 2 {
		r, wr, err := os.Pipe()
		if err != nil {
			fmt.Fprintf(os.Stderr, "jcsh: failed to create pipe: %v\n", err)
			w.exitVal = 1
			return false
		}
		pr, pw = r, wr
	}
	closePipe := func() {
		if pr != nil {
			_ = pr.Close()
			pr = nil
		}
		if pw != nil {
			_ = pw.Close()
			pw = nil
		}
	}
	defer closePipe() // P5: every exit path releases both pipe ends.

	leaderCmd := exec.Command(stages[0].Cmd, stages[0].Args...)
	leaderCmd.Stdin = os.Stdin
	leaderCmd.Stderr = os.Stderr
	if pw != nil {
		leaderCmd.Stdout = pw
	} else {
		leaderCmd.Stdout = os.Stdout
	}
	leaderCmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: 0}

	if err := leaderCmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "jcsh: %s: %v\n", stages[0].Cmd, err)
		w.exitVal = 1
		return false
	}
	leader := leaderCmd.Process.Pid
	pids := map[int]struct{}{leader: {}}

	if len(stages) == 2 {
		followerCmd := exec.Command(stages[1].Cmd, stages[1].Args...)
		followerCmd.Stdin = pr
		followerCmd.Stdout = os.Stdout
		followerCmd.Stderr = os.Stderr
		followerCmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: leader}

		if err := followerCmd.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "jcsh: %s: %v\n", stages[1].Cmd, err)
			// Open Question 1: don't leak the stage-1 leader — terminate
			// and reap it before reporting the spawn failure.
			_ = syscall.Kill(leader, syscall.SIGTERM)
			reapOne(leader)
			w.exitVal = 1
			return false
		}
		pids[followerCmd.Process.Pid] = struct{}{}
	}

	closePipe() // parent doesn't need its copies once both children hold theirs

	w.insertJob(jobID, leader, pids, line)
	w.fg = &leader
	if err := setForegroundPgrp(w.ttyFd, leader); err != nil {
		w.log.Warn().Err(err).Msg("failed to transfer terminal to job")
	}
	w.log.Debug().Int("job", jobID).Int("pgid", leader).Msg("spawned job")

	return true
}

// jobsSorted returns job ids in ascending order for deterministic listing.
func (w *Worker) jobsSorted() []int {
	ids := make([]int, 0, len(w.jobs))
	for id := range w.jobs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
