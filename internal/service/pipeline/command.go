package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/tauri-release/internal/config"
	"github.com/oshokin/tauri-release/internal/domain/semver"
	"github.com/oshokin/tauri-release/internal/logger"
	"github.com/oshokin/tauri-release/internal/repository/versionrecord"
	"github.com/oshokin/tauri-release/internal/service/artifact"
	"github.com/oshokin/tauri-release/internal/service/build"
	"github.com/oshokin/tauri-release/internal/service/common"
	"github.com/oshokin/tauri-release/internal/service/credential"
	"github.com/oshokin/tauri-release/internal/service/progress"
	"github.com/oshokin/tauri-release/internal/service/vcs"
)

// BumpCommitFormat is the message of the version bump commit.
const BumpCommitFormat = "chore: bump version to %s"

// ErrVersionNotIncreased is returned when the requested version is lower than the current one.
var ErrVersionNotIncreased = errors.New("new version must not be lower than the current version")

// Options are inputs of a release run.
type Options struct {
	// ConfigPath is the settings file; missing means defaults.
	ConfigPath string
	// CommitMessage skips the commit message prompt when set.
	CommitMessage string
	// Version skips the version prompt when set.
	Version string
	// Bump selects how the default next version is computed; empty means patch.
	Bump string
	// AssumeDefaults answers every prompt with its default.
	AssumeDefaults bool
	// LockPath overrides the release lock location.
	LockPath string
	// In and Out carry the prompts; nil means stdin and stdout.
	In  io.Reader
	Out io.Writer
	// Runner executes git and the build; nil means the process console.
	Runner common.Runner
	// Tracker receives step progress; nil means a LogTracker.
	Tracker progress.Tracker
}

// Result summarizes a finished run.
type Result struct {
	Previous  semver.Version
	Version   semver.Version
	Changed   bool
	Collected int
	Duration  time.Duration
}

// pipeline holds the collaborators of one run.
// It is unexported; callers use Run.
type pipeline struct {
	cfg      *config.Config
	opts     *Options
	record   versionrecord.Repository
	vcs      *vcs.Controller
	builder  *build.Invoker
	tracker  progress.Tracker
	prompter *Prompter
	steps    []step
}

// Run executes a release and returns its summary.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "pipeline")

	lock, err := common.AcquireRunLock(ctx, opts.LockPath)
	if err != nil {
		return nil, err
	}

	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			logger.WarnKV(ctx, "Could not remove release lock", "path", lock.Path(), "error", releaseErr)
		}
	}()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	p, err := newPipeline(cfg, opts)
	if err != nil {
		return nil, err
	}

	return p.Run(ctx)
}

func newPipeline(cfg *config.Config, opts *Options) (*pipeline, error) {
	runner := opts.Runner
	if runner == nil {
		runner = common.NewExecRunner()
	}

	tracker := opts.Tracker
	if tracker == nil {
		tracker = progress.NewLogTracker()
	}

	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}

	if out == nil {
		out = os.Stdout
	}

	builder, err := build.NewInvoker(runner, cfg.BuildCommand)
	if err != nil {
		return nil, err
	}

	return &pipeline{
		cfg:      cfg,
		opts:     opts,
		record:   versionrecord.FromConfig(cfg),
		vcs:      vcs.NewController(runner, cfg.GitRemote),
		builder:  builder,
		tracker:  tracker,
		prompter: NewPrompter(in, out),
	}, nil
}

// Run performs the release steps in order.
//
//nolint:cyclop,funlen // The release is one linear sequence; splitting it hides the order.
func (p *pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	logger.Info(ctx, "Checking version documents")

	if err := p.record.Check(); err != nil {
		return nil, err
	}

	current, err := p.record.CurrentVersion()
	if err != nil {
		return nil, err
	}

	p.warnOnDrift(ctx, current)

	message, err := p.commitMessage()
	if err != nil {
		return nil, err
	}

	target, err := p.targetVersion(current)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Previous: current,
		Version:  target,
		Changed:  semver.Compare(target, current) != 0,
	}

	logger.InfoKV(ctx, "Release planned", "current", current.String(), "next", target.String(), "version_changed", result.Changed)

	p.plan(result.Changed)

	if err = p.run(ctx, stepCommitPending, func(ctx context.Context) error {
		if err := p.vcs.Stage(ctx); err != nil {
			return err
		}

		return p.vcs.Commit(ctx, message, true)
	}); err != nil {
		return nil, err
	}

	if result.Changed {
		if err = p.run(ctx, stepBumpVersion, func(ctx context.Context) error {
			return p.bump(ctx, target)
		}); err != nil {
			return nil, err
		}
	}

	if p.cfg.PushStage == config.PushBeforeBuild {
		if err = p.run(ctx, stepPush, p.vcs.Push); err != nil {
			return nil, err
		}
	}

	if err = p.run(ctx, stepBuild, p.build); err != nil {
		return nil, err
	}

	if err = p.run(ctx, stepCollect, func(ctx context.Context) error {
		collected, err := p.collect(ctx)
		result.Collected = collected

		return err
	}); err != nil {
		return nil, err
	}

	if p.cfg.PushStage == config.PushAfterCollect {
		if err = p.run(ctx, stepPush, p.vcs.Push); err != nil {
			logger.ErrorKV(ctx, "Push failed; collected artifacts are kept", "release_dir", p.cfg.ReleaseDir)
			return nil, err
		}
	}

	if result.Changed {
		tag := target.Tag()

		if err = p.run(ctx, stepTag, func(ctx context.Context) error {
			if err := p.vcs.Tag(ctx, tag); err != nil {
				return err
			}

			return p.vcs.PushTag(ctx, tag)
		}); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(started)

	logger.InfoKV(ctx, "Release completed",
		"version", target.String(),
		"duration", result.Duration.Round(100*time.Millisecond),
		"artifacts", result.Collected,
		"release_dir", p.cfg.ReleaseDir)

	return result, nil
}

// commitMessage returns the message of the opportunistic pre-release commit.
func (p *pipeline) commitMessage() (string, error) {
	def := p.cfg.DefaultCommitMessage

	switch {
	case p.opts.CommitMessage != "":
		return p.opts.CommitMessage, nil
	case p.opts.AssumeDefaults:
		return def, nil
	}

	return p.prompter.Ask(fmt.Sprintf("Enter commit message (default: '%s'): ", def), def)
}

// targetVersion asks for the release version, defaulting to the bumped current one.
func (p *pipeline) targetVersion(current semver.Version) (semver.Version, error) {
	bump, err := semver.ParseBump(p.opts.Bump)
	if err != nil {
		return semver.Version{}, err
	}

	next, err := semver.Increment(current, bump)
	if err != nil {
		return semver.Version{}, err
	}

	answer := p.opts.Version

	if answer == "" && !p.opts.AssumeDefaults {
		question := fmt.Sprintf("Enter new version (current: %s, default: %s): ", current, next)

		answer, err = p.prompter.Ask(question, next.String())
		if err != nil {
			return semver.Version{}, err
		}
	}

	if answer == "" {
		return next, nil
	}

	target, err := semver.Parse(answer)
	if err != nil {
		return semver.Version{}, err
	}

	if target.Less(current) {
		return semver.Version{}, fmt.Errorf("%s < %s: %w", target, current, ErrVersionNotIncreased)
	}

	return target, nil
}

// bump writes the version to both documents and commits it.
func (p *pipeline) bump(ctx context.Context, target semver.Version) error {
	if err := p.record.Save(target); err != nil {
		var saveErr *versionrecord.SaveError
		if errors.As(err, &saveErr) && saveErr.Partial() {
			logger.ErrorKV(ctx, "Version documents are inconsistent, fix them before retrying",
				"written", saveErr.Written, "failed", saveErr.Failed)
		}

		return err
	}

	if err := p.vcs.Stage(ctx); err != nil {
		return err
	}

	return p.vcs.Commit(ctx, fmt.Sprintf(BumpCommitFormat, target), false)
}

// build loads the signing key and invokes the bundler with it.
func (p *pipeline) build(ctx context.Context) error {
	cred, _, err := credential.Load(ctx, p.cfg.SigningKeyPath, p.cfg.SigningPasswordPath)
	if err != nil {
		logger.WarnKV(ctx, "Continuing without a usable signing key", "error", err)
	}

	return p.builder.Invoke(ctx, cred)
}

// collect copies installers into the release directory; finding none is a warning.
func (p *pipeline) collect(ctx context.Context) (int, error) {
	copied, err := artifact.Collect(ctx, artifact.Sources(p.cfg.BundleDir), p.cfg.ReleaseDir)
	if err != nil {
		return copied, err
	}

	if copied == 0 {
		logger.WarnKV(ctx, "No artifacts found to copy", "bundle_dir", p.cfg.BundleDir, "error", artifact.ErrNoArtifactFound)
	}

	return copied, nil
}

// warnOnDrift reports documents that disagree with the package manifest.
func (p *pipeline) warnOnDrift(ctx context.Context, current semver.Version) {
	for name, v := range p.record.Versions() {
		if v != current.String() {
			logger.WarnKV(ctx, "Version documents disagree", "document", name, "version", v, "current", current.String())
		}
	}
}
