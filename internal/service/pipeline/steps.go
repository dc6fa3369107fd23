package pipeline

import (
	"context"
	"fmt"

	"github.com/oshokin/tauri-release/internal/config"
	"github.com/oshokin/tauri-release/internal/logger"
	"github.com/oshokin/tauri-release/internal/service/progress"
)

type stepID string

const (
	stepCommitPending stepID = "commit-pending"
	stepBumpVersion   stepID = "bump-version"
	stepPush          stepID = "push"
	stepBuild         stepID = "build"
	stepCollect       stepID = "collect"
	stepTag           stepID = "tag"
)

type step struct {
	id   stepID
	name string
}

var stepNames = map[stepID]string{
	stepCommitPending: "Committing pending changes",
	stepBumpVersion:   "Updating version",
	stepPush:          "Pushing to remote",
	stepBuild:         "Building installers",
	stepCollect:       "Collecting artifacts",
	stepTag:           "Tagging release",
}

// plan fixes the step list so progress reads "[Step i/n]".
func (p *pipeline) plan(changed bool) {
	ids := []stepID{stepCommitPending}

	if changed {
		ids = append(ids, stepBumpVersion)
	}

	if p.cfg.PushStage == config.PushBeforeBuild {
		ids = append(ids, stepPush)
	}

	ids = append(ids, stepBuild, stepCollect)

	if p.cfg.PushStage == config.PushAfterCollect {
		ids = append(ids, stepPush)
	}

	if changed {
		ids = append(ids, stepTag)
	}

	p.steps = make([]step, 0, len(ids))
	for i, id := range ids {
		p.steps = append(p.steps, step{
			id:   id,
			name: fmt.Sprintf("[Step %d/%d] %s", i+1, len(ids), stepNames[id]),
		})
	}
}

// run executes fn as the planned step id and reports it to the tracker.
func (p *pipeline) run(ctx context.Context, id stepID, fn func(ctx context.Context) error) error {
	name := stepNames[id]

	for _, s := range p.steps {
		if s.id == id {
			name = s.name
			break
		}
	}

	ctx = logger.WithKV(ctx, "step", string(id))

	p.tracker.Add(ctx, string(id), name)

	if err := fn(ctx); err != nil {
		p.tracker.Update(ctx, string(id), 0, progress.StatusFailed, err.Error())
		return fmt.Errorf("%s: %w", stepNames[id], err)
	}

	p.tracker.Update(ctx, string(id), 100, progress.StatusCompleted, "")

	return nil
}
