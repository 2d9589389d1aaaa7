package build

import (
	"context"
	"errors"
	"os"

	"github.com/dumageview/dvbuild/pkgs/buildsys"
)

// call is one command seen by mockRunner, with the working directory it ran in.
type call struct {
	cmd buildsys.Command
	wd  string
}

// mockRunner implements buildsys.Runner for testing. It records every call
// and fails commands for which fail returns true.
type mockRunner struct {
	calls []call
	fail  func(buildsys.Command) bool
	err   error
}

func (m *mockRunner) Run(ctx context.Context, cmd buildsys.Command) error {
	wd, _ := os.Getwd()
	m.calls = append(m.calls, call{cmd: cmd, wd: wd})
	if m.fail != nil && m.fail(cmd) {
		if m.err != nil {
			return m.err
		}
		return errors.New(cmd.Name + " failed")
	}
	return nil
}

func (m *mockRunner) argvs() [][]string {
	out := make([][]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.cmd.Argv()
	}
	return out
}

// failName fails every command running program name.
func failName(name string) func(buildsys.Command) bool {
	return func(cmd buildsys.Command) bool { return cmd.Name == name }
}

func newTestBuilder(runner *mockRunner, cpus int) *Builder {
	b := NewBuilder(runner)
	b.numCPU = func() int { return cpus }
	return b
}
