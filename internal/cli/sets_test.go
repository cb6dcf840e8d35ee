package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetsListShowsQuestionFiles(t *testing.T) {
	dir := t.TempDir()
	questionsDir := filepath.Join(dir, "questions")
	if err := os.Mkdir(questionsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"capitals.yaml", "science.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(questionsDir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	configFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("quiz:\n  questions_dir: "+questionsDir+"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sets", "list", "--config", configFile})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("sets list: %v", err)
	}

	want := "capitals\tfiles\ndefault\tfiles\nscience\tfiles\n"
	if out.String() != want {
		t.Fatalf("unexpected listing:\n%s", out.String())
	}
}

func TestSetsDeleteNeedsPostgres(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"sets", "delete", "capitals", "--config", filepath.Join(t.TempDir(), "absent.yaml")})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "postgres url not configured") {
		t.Fatalf("expected missing postgres error, got %v", err)
	}
}
