package buildsys

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/qiniu/x/log"
)

// Command describes a single external tool invocation.
type Command struct {
	Name string
	Args []string
	// Env holds variables overriding the process environment for this
	// command only. The calling process environment is never changed.
	Env map[string]string
	// Dir is the working directory; empty means the current directory.
	Dir string
}

// Argv returns the full argument vector, program name first.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command as a shell-quoted line.
func (c Command) String() string {
	return shellquote.Join(c.Argv()...)
}

// Runner executes external commands. Run must block until the command exits.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as child processes with the standard streams
// inherited from the current process.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) Run(ctx context.Context, c Command) error {
	log.Infof("+ %s", c)
	if len(c.Env) > 0 {
		log.Debugf("env overrides: %s", formatEnv(c.Env))
	}
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(c.Env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), c.Env)
	}
	return cmd.Run()
}

// MergeEnv applies override on top of base and returns a sorted KEY=VALUE list.
func MergeEnv(base []string, override map[string]string) []string {
	envMap := make(map[string]string, len(base))
	for _, kv := range base {
		if k, v, ok := strings.Cut(kv, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range override {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+envMap[k])
	}
	return out
}

func formatEnv(env map[string]string) string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, shellquote.Join(k+"="+env[k]))
	}
	return strings.Join(parts, " ")
}

// StepError reports a failed build step.
type StepError struct {
	Step    string
	Command Command
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %s: %v", e.Step, e.Command.Name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ExitCode returns the exit status of the failed process, or 1 if the
// process did not run to completion.
func (e *StepError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}
