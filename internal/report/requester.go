// Package report requests report generation for a target. The report button
// is disabled while a request is outstanding; that is the only guard against
// duplicate requests.
package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"targetwatch/internal/metrics"
	"targetwatch/internal/pubsub"
	"targetwatch/internal/viewmodel"
)

// ErrReportInProgress is returned by Begin while the button is disabled.
var ErrReportInProgress = errors.New("report already in progress")

// Generator issues the remote report request.
type Generator interface {
	Report(ctx context.Context, instance, targetID string) error
}

// Result is the outcome of one remote report request.
type Result struct {
	Instance string
	TargetID string
	Err      error
}

// Requester drives the report button through Begin, Request and Resolve.
type Requester struct {
	targets viewmodel.Lookup
	remote  Generator
	events  pubsub.Publisher[pubsub.TargetRef]

	// prior holds the button as it was before Begin, restored on failure.
	prior map[string]viewmodel.Button
}

func NewRequester(targets viewmodel.Lookup, remote Generator, events pubsub.Publisher[pubsub.TargetRef]) *Requester {
	return &Requester{
		targets: targets,
		remote:  remote,
		events:  events,
		prior:   make(map[string]viewmodel.Button),
	}
}

// Begin disables the report button and shows the in-progress label.
func (r *Requester) Begin(targetID string) error {
	t, err := r.targets.Target(targetID)
	if err != nil {
		return err
	}
	if t.ReportState() == viewmodel.ReportGenerating {
		return ErrReportInProgress
	}

	r.prior[targetID] = t.Report
	t.SetReportState(viewmodel.ReportGenerating)
	metrics.ReportsInFlight.Inc()
	return nil
}

// Request performs the remote call only; safe off the UI loop.
func (r *Requester) Request(ctx context.Context, instance, targetID string) Result {
	return Result{
		Instance: instance,
		TargetID: targetID,
		Err:      r.remote.Report(ctx, instance, targetID),
	}
}

// Resolve finishes a request. Success publishes one ReportReady event and
// leaves the handle to the subscriber that re-synchronizes it. Failure
// re-enables the button with its previous label.
func (r *Requester) Resolve(res Result) error {
	prior, began := r.prior[res.TargetID]
	delete(r.prior, res.TargetID)
	if began {
		metrics.ReportsInFlight.Dec()
	}

	// The target may have left the board in a config reload.
	t, err := r.targets.Target(res.TargetID)
	if err != nil {
		return err
	}

	if res.Err != nil {
		slog.Error("report request failed", "instance", res.Instance, "target", res.TargetID, "element", viewmodel.ReportButtonID(res.TargetID), "error", res.Err)
		if began {
			t.Report = prior
		} else {
			t.SetReportState(viewmodel.ReportIdle)
		}
		return res.Err
	}

	slog.Info("report generated", "instance", res.Instance, "target", res.TargetID)
	if r.events != nil {
		r.events.Publish(pubsub.ReportReady, pubsub.TargetRef{
			Instance: res.Instance,
			TargetID: res.TargetID,
			At:       time.Now(),
		})
	}
	return nil
}

// Generate runs Begin, Request and Resolve in sequence.
func (r *Requester) Generate(ctx context.Context, instance, targetID string) error {
	if err := r.Begin(targetID); err != nil {
		return err
	}
	return r.Resolve(r.Request(ctx, instance, targetID))
}
