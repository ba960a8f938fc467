package shell

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestWorker() *Worker {
	return &Worker{
		jobs:  make(map[int]jobEntry),
		pgids: make(map[int]*pgidEntry),
		procs: make(map[int]ProcInfo),
		log:   zerolog.Nop(),
	}
}

func TestNewJobID_FillsLowestGap(t *testing.T) {
	w := newTestWorker()
	if id := w.newJobID(); id != 0 {
		t.Fatalf("first id = %d, want 0", id)
	}

	w.insertJob(0, 100, map[int]struct{}{100: {}}, "sleep 1")
	if id := w.newJobID(); id != 1 {
		t.Fatalf("second id = %d, want 1", id)
	}

	w.insertJob(1, 200, map[int]struct{}{200: {}}, "sleep 2")
	w.removeJob(0)
	if id := w.newJobID(); id != 0 {
		t.Fatalf("id after removing 0 = %d, want 0 (lowest free slot)", id)
	}
}

func TestInsertAndRemovePid(t *testing.T) {
	w := newTestWorker()
	w.insertJob(0, 10, map[int]struct{}{10: {}, 11: {}}, "a | b")

	if got := w.procs[10].Pgid; got != 10 {
		t.Fatalf("pid 10 pgid = %d, want 10", got)
	}

	jobID, pgid, ok := w.removePid(10)
	if !ok || jobID != 0 || pgid != 10 {
		t.Fatalf("removePid(10) = (%d, %d, %v)", jobID, pgid, ok)
	}
	if _, stillThere := w.procs[10]; stillThere {
		t.Fatalf("pid 10 should have been removed from procs")
	}
	if _, stillThere := w.pgids[10].Pids[10]; stillThere {
		t.Fatalf("pid 10 should have been removed from the pgid's pid set")
	}
	if _, stillThere := w.pgids[10].Pids[11]; !stillThere {
		t.Fatalf("pid 11 should remain in the pgid's pid set")
	}
}

func TestRemovePid_UnknownPidIsNoop(t *testing.T) {
	w := newTestWorker()
	_, _, ok := w.removePid(999)
	if ok {
		t.Fatalf("removePid of unknown pid should report ok=false")
	}
}

func TestIsGroupStopped(t *testing.T) {
	w := newTestWorker()
	w.insertJob(0, 10, map[int]struct{}{10: {}, 11: {}}, "a | b")

	if w.isGroupStopped(10) {
		t.Fatalf("freshly inserted group should be running, not stopped")
	}

	w.setPidState(10, ProcStop)
	if w.isGroupStopped(10) {
		t.Fatalf("group with one running pid should not be reported stopped")
	}

	w.setPidState(11, ProcStop)
	if !w.isGroupStopped(10) {
		t.Fatalf("group with every pid stopped should be reported stopped")
	}
}

func TestManageJob_ForegroundJobExitRepliesAndRestoresShell(t *testing.T) {
	w := newTestWorker()
	w.ttyFd = -1 // setForegroundPgrp will fail harmlessly in this unit test
	w.insertJob(0, 10, map[int]struct{}{10: {}}, "sleep 1")
	w.fg = &[]int{10}[0]

	tx := make(chan ShellMsg, 1)
	w.removePid(10)
	w.manageJob(0, 10, tx)

	if _, stillExists := w.jobs[0]; stillExists {
		t.Fatalf("job 0 should have been removed once empty")
	}
	if w.fg != nil {
		t.Fatalf("fg should be cleared once the foreground job finishes")
	}

	select {
	case msg := <-tx:
		if msg.Kind != Continue {
			t.Fatalf("got reply kind %v, want Continue", msg.Kind)
		}
	default:
		t.Fatalf("expected a reply on tx")
	}
}

func TestManageJob_BackgroundJobExitDoesNotReply(t *testing.T) {
	w := newTestWorker()
	w.insertJob(0, 10, map[int]struct{}{10: {}}, "sleep 1 &")
	// fg left nil: job 0 is a background job.

	tx := make(chan ShellMsg, 1)
	w.removePid(10)
	w.manageJob(0, 10, tx)

	if _, stillExists := w.jobs[0]; stillExists {
		t.Fatalf("job 0 should have been removed once empty")
	}
	select {
	case msg := <-tx:
		t.Fatalf("background job completion should not reply, got %+v", msg)
	default:
	}
}
