// Package pause toggles a target between paused and running on the backend
// and keeps the pause button label in step with the last acknowledged toggle.
package pause

import (
	"context"
	"log/slog"

	"targetwatch/internal/viewmodel"
)

// Toggler issues the remote pause toggle.
type Toggler interface {
	Pause(ctx context.Context, instance, targetID string) error
}

// Result is the outcome of one remote toggle.
type Result struct {
	Instance string
	TargetID string
	Err      error
}

// Controller flips pause labels after the backend acknowledges a toggle.
type Controller struct {
	targets viewmodel.Lookup
	remote  Toggler
}

func NewController(targets viewmodel.Lookup, remote Toggler) *Controller {
	return &Controller{targets: targets, remote: remote}
}

// Request performs the remote toggle only. It does not touch the view-model
// and is safe to run off the UI loop.
func (c *Controller) Request(ctx context.Context, instance, targetID string) Result {
	return Result{
		Instance: instance,
		TargetID: targetID,
		Err:      c.remote.Pause(ctx, instance, targetID),
	}
}

// Resolve applies a Result. On success the label flips between "pause" and
// "resume"; on failure the label is left alone and the error is returned.
func (c *Controller) Resolve(res Result) (viewmodel.PauseState, error) {
	t, err := c.targets.Target(res.TargetID)
	if err != nil {
		return viewmodel.Running, err
	}

	if res.Err != nil {
		slog.Error("pause toggle failed", "instance", res.Instance, "target", res.TargetID, "element", viewmodel.PauseButtonID(res.TargetID), "error", res.Err)
		return t.PauseState(), res.Err
	}

	next := t.PauseState().Flipped()
	t.SetPauseLabel(next)
	slog.Info("pause toggled", "instance", res.Instance, "target", res.TargetID, "state", next)
	return next, nil
}

// Toggle requests and resolves in one call.
func (c *Controller) Toggle(ctx context.Context, instance, targetID string) (viewmodel.PauseState, error) {
	return c.Resolve(c.Request(ctx, instance, targetID))
}
