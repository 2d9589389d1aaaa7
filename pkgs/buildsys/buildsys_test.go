package buildsys

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/bin", "CC=gcc", "EMPTY=", "BROKEN"}
	got := MergeEnv(base, map[string]string{"CC": "clang", "CXX": "clang++"})
	want := []string{"CC=clang", "CXX=clang++", "EMPTY=", "PATH=/bin"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeEnv mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeEnvKeepsBase(t *testing.T) {
	base := []string{"B=2", "A=1"}
	got := MergeEnv(base, map[string]string{"C": "3"})
	if diff := cmp.Diff([]string{"A=1", "B=2", "C=3"}, got); diff != "" {
		t.Errorf("MergeEnv mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"B=2", "A=1"}, base); diff != "" {
		t.Errorf("base modified (-want +got):\n%s", diff)
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "make", Args: []string{"VERBOSE=1", "-j4"}}
	if got := c.String(); got != "make VERBOSE=1 -j4" {
		t.Errorf("String() = %q", got)
	}
	if diff := cmp.Diff([]string{"make", "VERBOSE=1", "-j4"}, c.Argv()); diff != "" {
		t.Errorf("Argv mismatch (-want +got):\n%s", diff)
	}
}

func TestStepErrorExitCode(t *testing.T) {
	plain := &StepError{Step: "configure", Command: Command{Name: "cmake"}, Err: errors.New("not found")}
	if got := plain.ExitCode(); got != 1 {
		t.Errorf("ExitCode() = %d, want 1", got)
	}
	if !strings.Contains(plain.Error(), "configure") {
		t.Errorf("Error() = %q, want step name", plain.Error())
	}
	if !errors.Is(plain, plain.Err) {
		t.Error("StepError does not unwrap to its cause")
	}
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}
}

func TestExecRunnerExitCode(t *testing.T) {
	requireSh(t)

	c := Command{Name: "sh", Args: []string{"-c", "exit 7"}}
	err := ExecRunner{}.Run(context.Background(), c)
	if err == nil {
		t.Fatal("Run succeeded, want error")
	}
	stepErr := &StepError{Step: "compile", Command: c, Err: err}
	if got := stepErr.ExitCode(); got != 7 {
		t.Errorf("ExitCode() = %d, want 7", got)
	}
}

func TestExecRunnerEnvAndDir(t *testing.T) {
	requireSh(t)

	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	t.Setenv("DVBUILD_TEST_KEEP", "kept")

	c := Command{
		Name: "sh",
		Args: []string{"-c", `printf '%s %s %s' "$DVBUILD_TEST_CC" "$DVBUILD_TEST_KEEP" "$(pwd)" > out.txt`},
		Env:  map[string]string{"DVBUILD_TEST_CC": "clang"},
		Dir:  dir,
	}
	if err := (ExecRunner{}).Run(context.Background(), c); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) != 3 {
		t.Fatalf("output = %q, want 3 fields", data)
	}
	if fields[0] != "clang" || fields[1] != "kept" {
		t.Errorf("env = %q %q, want clang kept", fields[0], fields[1])
	}
	wantDir, _ := filepath.EvalSymlinks(dir)
	gotDir, _ := filepath.EvalSymlinks(fields[2])
	if gotDir != wantDir {
		t.Errorf("pwd = %q, want %q", gotDir, wantDir)
	}
	if _, ok := os.LookupEnv("DVBUILD_TEST_CC"); ok {
		t.Error("override leaked into the process environment")
	}
}
