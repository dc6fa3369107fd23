package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/oshokin/tauri-release/internal/service/common"
)

// Call is one command seen by a Recorder.
type Call struct {
	Line     string
	Env      []string
	Tolerant bool
}

// Recorder is a common.Runner that records commands instead of running them.
// Exit codes are scripted per command-line prefix.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	fail  map[string]int
	hooks map[string]func()
}

// NewRecorder returns a Recorder where every command succeeds.
func NewRecorder() *Recorder {
	return &Recorder{
		fail:  make(map[string]int),
		hooks: make(map[string]func()),
	}
}

// FailOn makes commands whose line starts with prefix exit with code.
func (r *Recorder) FailOn(prefix string, code int) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fail[prefix] = code

	return r
}

// OnRun calls fn when a command whose line starts with prefix runs.
func (r *Recorder) OnRun(prefix string, fn func()) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks[prefix] = fn

	return r
}

// Run implements common.Runner.
func (r *Recorder) Run(_ context.Context, cmd *common.Command) error {
	if code := r.record(cmd, false); code != 0 {
		return &common.CommandError{Command: cmd.String(), ExitCode: code}
	}

	return nil
}

// RunTolerant implements common.Runner.
func (r *Recorder) RunTolerant(_ context.Context, cmd *common.Command) (bool, error) {
	return r.record(cmd, true) == 0, nil
}

// Lines returns the recorded command lines in order.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		lines = append(lines, c.Line)
	}

	return lines
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Call(nil), r.calls...)
}

func (r *Recorder) record(cmd *common.Command, tolerant bool) int {
	line := cmd.String()

	r.mu.Lock()
	r.calls = append(r.calls, Call{Line: line, Env: append([]string(nil), cmd.Env...), Tolerant: tolerant})

	var (
		hook      func()
		hookMatch int
		code      int
		codeMatch int
	)

	// The longest matching prefix wins so "git push origin" can override "git push".
	for prefix, fn := range r.hooks {
		if strings.HasPrefix(line, prefix) && len(prefix) >= hookMatch {
			hook, hookMatch = fn, len(prefix)
		}
	}

	for prefix, c := range r.fail {
		if strings.HasPrefix(line, prefix) && len(prefix) >= codeMatch {
			code, codeMatch = c, len(prefix)
		}
	}
	r.mu.Unlock()

	if hook != nil {
		hook()
	}

	return code
}
