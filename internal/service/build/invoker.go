// Package build runs the bundler that produces installer archives.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mvdan.cc/sh/v3/shell"

	"github.com/oshokin/tauri-release/internal/domain/release"
	"github.com/oshokin/tauri-release/internal/logger"
	"github.com/oshokin/tauri-release/internal/service/common"
)

var errEmptyCommand = errors.New("build command must not be empty")

// Invoker runs the configured build command line.
type Invoker struct {
	runner  common.Runner
	command []string
}

// NewInvoker splits commandLine with POSIX shell word rules (quotes and
// $VAR expansion from the process environment; no pipes or redirections).
func NewInvoker(runner common.Runner, commandLine string) (*Invoker, error) {
	fields, err := shell.Fields(commandLine, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("parse build command %q: %w", commandLine, err)
	}

	if len(fields) == 0 {
		return nil, errEmptyCommand
	}

	return &Invoker{runner: runner, command: fields}, nil
}

// Argv returns the split command line.
func (i *Invoker) Argv() []string {
	return append([]string(nil), i.command...)
}

// Invoke runs the build. The credential, when present, reaches the bundler
// through the child environment only.
func (i *Invoker) Invoke(ctx context.Context, credential *release.Credential) error {
	cmd := &common.Command{
		Name: i.command[0],
		Args: i.command[1:],
		Env:  credential.Env(),
	}

	logger.InfoKV(ctx, "Building application", "command", cmd.String(), "signed", !credential.Empty())

	if err := i.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("build: %w", err)
	}

	return nil
}
