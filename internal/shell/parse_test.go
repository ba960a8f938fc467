package shell

import "testing"

func TestParseCmd_SingleStage(t *testing.T) {
	stages, err := parseCmd("ls -la /tmp")
	if err != nil {
		t.Fatalf("parseCmd: %v", err)
	}
	if len(stages) != 1 {
		t.Fatalf("got %d stages, want 1", len(stages))
	}
	if stages[0].Cmd != "ls" {
		t.Fatalf("got cmd %q, want ls", stages[0].Cmd)
	}
	if len(stages[0].Args) != 2 || stages[0].Args[0] != "-la" || stages[0].Args[1] != "/tmp" {
		t.Fatalf("got args %v", stages[0].Args)
	}
}

func TestParseCmd_TwoStagePipeline(t *testing.T) {
	stages, err := parseCmd("ps aux | grep jcsh")
	if err != nil {
		t.Fatalf("parseCmd: %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("got %d stages, want 2", len(stages))
	}
	if stages[0].Cmd != "ps" || stages[1].Cmd != "grep" {
		t.Fatalf("got stages %+v", stages)
	}
	if len(stages[1].Args) != 1 || stages[1].Args[0] != "jcsh" {
		t.Fatalf("got args %v", stages[1].Args)
	}
}

func TestParseCmd_EmptyStageIsError(t *testing.T) {
	cases := []string{"ls ||", "| ls", "ls |  | grep x"}
	for _, line := range cases {
		if _, err := parseCmd(line); err == nil {
			t.Errorf("parseCmd(%q): expected error, got none", line)
		}
	}
}

func TestParseCmd_TrimsSurroundingWhitespace(t *testing.T) {
	stages, err := parseCmd("  echo   hi  |  cat  ")
	if err != nil {
		t.Fatalf("parseCmd: %v", err)
	}
	if stages[0].Cmd != "echo" || len(stages[0].Args) != 1 || stages[0].Args[0] != "hi" {
		t.Fatalf("got %+v", stages[0])
	}
	if stages[1].Cmd != "cat" {
		t.Fatalf("got %+v", stages[1])
	}
}
