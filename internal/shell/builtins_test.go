package shell

import "testing"

func TestIsBuiltin(t *testing.T) {
	for _, name := range []string{"exit", "jobs", "fg", "cd"} {
		if !isBuiltin(name) {
			t.Errorf("isBuiltin(%q) = false, want true", name)
		}
	}
	if isBuiltin("ls") {
		t.Errorf("isBuiltin(\"ls\") = true, want false")
	}
}

func TestRunExit_RefusesWithOpenJobs(t *testing.T) {
	w := newTestWorker()
	w.insertJob(0, 10, map[int]struct{}{10: {}}, "sleep 100")

	tx := make(chan ShellMsg, 1)
	w.runExit(nil, tx)

	msg := <-tx
	if msg.Kind != Continue {
		t.Fatalf("got %v, want Continue while jobs remain", msg.Kind)
	}
	if w.exitVal != 1 {
		t.Fatalf("got exitVal %d, want 1", w.exitVal)
	}
}

func TestRunExit_QuitsWithNoJobs(t *testing.T) {
	w := newTestWorker()
	w.exitVal = 7
	tx := make(chan ShellMsg, 1)
	w.runExit(nil, tx)

	msg := <-tx
	if msg.Kind != Quit {
		t.Fatalf("got %v, want Quit with no jobs", msg.Kind)
	}
	if msg.Code != 7 {
		t.Fatalf("got code %d, want the last exit_val (7) when no argument is given", msg.Code)
	}
}

func TestRunExit_ExplicitCodeOverridesLastExitVal(t *testing.T) {
	w := newTestWorker()
	w.exitVal = 7
	tx := make(chan ShellMsg, 1)
	w.runExit([]string{"42"}, tx)

	msg := <-tx
	if msg.Kind != Quit || msg.Code != 42 {
		t.Fatalf("got %+v, want Quit(42)", msg)
	}
}

func TestRunExit_NonIntegerArgumentIsError(t *testing.T) {
	w := newTestWorker()
	tx := make(chan ShellMsg, 1)
	w.runExit([]string{"not-a-number"}, tx)

	msg := <-tx
	if msg.Kind != Continue || w.exitVal != 1 {
		t.Fatalf("got %+v (exitVal=%d), want Continue with exitVal=1", msg, w.exitVal)
	}
}

func TestResolveFgTarget_RequiresExplicitArgument(t *testing.T) {
	w := newTestWorker()
	w.insertJob(0, 10, map[int]struct{}{10: {}}, "a")

	if _, ok := w.resolveFgTarget(nil); ok {
		t.Fatalf("resolveFgTarget(nil) should fail: fg requires an explicit job id")
	}
}

func TestResolveFgTarget_ExplicitArgument(t *testing.T) {
	w := newTestWorker()
	w.insertJob(0, 10, map[int]struct{}{10: {}}, "a")

	id, ok := w.resolveFgTarget([]string{"0"})
	if !ok || id != 0 {
		t.Fatalf("resolveFgTarget([0]) = (%d, %v), want (0, true)", id, ok)
	}

	if _, ok := w.resolveFgTarget([]string{"99"}); ok {
		t.Fatalf("resolveFgTarget([99]) should fail for an unknown job")
	}
}
