//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/oshokin/tauri-release/internal/logger"
)

// ErrCommandFailed classifies external commands that exited with a non-zero status.
var ErrCommandFailed = errors.New("command failed")

// Command is one external process invocation.
type Command struct {
	// Name is the executable looked up in PATH.
	Name string
	// Args are passed verbatim, without shell interpretation.
	Args []string
	// Env is appended to the parent environment for this process only.
	Env []string
	// Dir is the working directory; empty means the current one.
	Dir string
}

// NewCommand is a shorthand for a command without extra environment.
func NewCommand(name string, args ...string) *Command {
	return &Command{Name: name, Args: args}
}

// String renders the command line. Env is deliberately left out.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)

	for _, arg := range c.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			arg = fmt.Sprintf("%q", arg)
		}

		parts = append(parts, arg)
	}

	return strings.Join(parts, " ")
}

// CommandError reports a command that ran and exited with a non-zero status.
type CommandError struct {
	Command  string
	ExitCode int
}

// Error names the failing command line and its status.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
}

// Unwrap classifies the error as ErrCommandFailed.
func (e *CommandError) Unwrap() error {
	return ErrCommandFailed
}

// Runner invokes external commands synchronously.
type Runner interface {
	// Run executes cmd and returns a *CommandError on a non-zero exit.
	Run(ctx context.Context, cmd *Command) error
	// RunTolerant executes cmd and reports a non-zero exit as ok=false with a nil error.
	// An error is returned only when the command could not be started.
	RunTolerant(ctx context.Context, cmd *Command) (bool, error)
}

// ExecRunner runs commands with os/exec, wiring them to the given streams.
// No output is captured and no timeout applies.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner attached to the process console.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, cmd *Command) error {
	ok, code, err := r.run(ctx, cmd)
	if err != nil {
		return err
	}

	if !ok {
		return &CommandError{Command: cmd.String(), ExitCode: code}
	}

	return nil
}

// RunTolerant implements Runner.
func (r *ExecRunner) RunTolerant(ctx context.Context, cmd *Command) (bool, error) {
	ok, code, err := r.run(ctx, cmd)
	if err != nil {
		return false, err
	}

	if !ok {
		logger.DebugKV(ctx, "Command exited with non-zero status", "command", cmd.String(), "exit_code", code)
	}

	return ok, nil
}

func (r *ExecRunner) run(ctx context.Context, cmd *Command) (bool, int, error) {
	logger.InfoKV(ctx, "Running command", "command", cmd.String())

	//nolint:gosec // The command line comes from the release settings of this repository.
	process := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	process.Dir = cmd.Dir
	process.Stdin = r.Stdin
	process.Stdout = r.Stdout
	process.Stderr = r.Stderr

	if len(cmd.Env) > 0 {
		process.Env = append(os.Environ(), cmd.Env...)
	}

	err := process.Run()
	if err == nil {
		return true, 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, exitErr.ExitCode(), nil
	}

	return false, -1, fmt.Errorf("start %s: %w", cmd.Name, err)
}
