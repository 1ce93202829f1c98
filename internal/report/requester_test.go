package report

import (
	"context"
	"errors"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"targetwatch/config"
	"targetwatch/internal/metrics"
	"targetwatch/internal/pubsub"
	"targetwatch/internal/viewmodel"
)

type fakeGenerator struct {
	err error
	// during is called while the request is in flight.
	during func()
	calls  int
}

func (f *fakeGenerator) Report(context.Context, string, string) error {
	f.calls++
	if f.during != nil {
		f.during()
	}
	return f.err
}

type recordingPublisher struct {
	events []pubsub.Event[pubsub.TargetRef]
}

func (r *recordingPublisher) Publish(t pubsub.EventType, ref pubsub.TargetRef) {
	r.events = append(r.events, pubsub.Event[pubsub.TargetRef]{Type: t, Payload: ref})
}

func newBoard() *viewmodel.Board {
	return viewmodel.NewBoard(&config.Dashboard{
		Instances: []config.InstanceConfig{{Name: "inst", Targets: []config.TargetConfig{{ID: "7"}, {ID: "8"}}}},
	})
}

func TestGenerate_DisablesBeforeRemoteCall(t *testing.T) {
	board := newBoard()
	target, _ := board.Target("7")

	gen := &fakeGenerator{}
	gen.during = func() {
		if target.Report.Enabled || target.Report.Label != viewmodel.ReportGeneratingLabel {
			t.Errorf("Expected disabled in-progress button during the call, got %+v", target.Report)
		}
	}
	events := &recordingPublisher{}

	if err := NewRequester(board, gen, events).Generate(context.Background(), "inst", "7"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("Expected one remote call, got %d", gen.calls)
	}
}

func TestResolve_SuccessPublishesOnceAndDoesNotPatch(t *testing.T) {
	board := newBoard()
	target, _ := board.Target("7")
	events := &recordingPublisher{}
	r := NewRequester(board, &fakeGenerator{}, events)

	if err := r.Begin("7"); err != nil {
		t.Fatal(err)
	}
	if err := r.Resolve(r.Request(context.Background(), "inst", "7")); err != nil {
		t.Fatal(err)
	}

	if len(events.events) != 1 {
		t.Fatalf("Expected exactly one event, got %d", len(events.events))
	}
	evt := events.events[0]
	if evt.Type != pubsub.ReportReady || evt.Payload.TargetID != "7" || evt.Payload.Instance != "inst" {
		t.Errorf("Unexpected event %+v", evt)
	}
	// The button is left for the subscriber to re-synchronize.
	if target.Report.Enabled {
		t.Error("Resolve must not patch the handle on success")
	}
}

func TestBegin_GuardsDuplicates(t *testing.T) {
	board := newBoard()
	r := NewRequester(board, &fakeGenerator{}, nil)

	if err := r.Begin("7"); err != nil {
		t.Fatal(err)
	}
	if err := r.Begin("7"); !errors.Is(err, ErrReportInProgress) {
		t.Errorf("Expected ErrReportInProgress, got %v", err)
	}
	// Other targets are independent.
	if err := r.Begin("8"); err != nil {
		t.Errorf("Expected target 8 to start, got %v", err)
	}
}

func TestResolve_FailureRestoresButton(t *testing.T) {
	board := newBoard()
	target, _ := board.Target("7")
	target.Report.Label = "report now"
	before := target.Report

	boom := errors.New("timeout")
	events := &recordingPublisher{}
	r := NewRequester(board, &fakeGenerator{err: boom}, events)

	if err := r.Generate(context.Background(), "inst", "7"); !errors.Is(err, boom) {
		t.Fatalf("Expected the remote error, got %v", err)
	}
	if target.Report != before {
		t.Errorf("Expected button restored to %+v, got %+v", before, target.Report)
	}
	if len(events.events) != 0 {
		t.Errorf("Expected no events on failure, got %v", events.events)
	}

	// The target can be retried.
	if err := r.Begin("7"); err != nil {
		t.Errorf("Expected retry to be allowed, got %v", err)
	}
}

func TestGenerate_UnknownTarget(t *testing.T) {
	gen := &fakeGenerator{}
	r := NewRequester(newBoard(), gen, nil)
	if err := r.Generate(context.Background(), "inst", "nope"); !errors.Is(err, viewmodel.ErrUnknownTarget) {
		t.Errorf("Expected ErrUnknownTarget, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("No remote call expected for an unknown target")
	}
}

type swappableLookup struct {
	*viewmodel.Board
}

func inFlight(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.ReportsInFlight.Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetGauge().GetValue()
}

func TestResolve_TargetRemovedWhileGenerating(t *testing.T) {
	lookup := &swappableLookup{Board: newBoard()}
	events := &recordingPublisher{}
	r := NewRequester(lookup, &fakeGenerator{}, events)

	base := inFlight(t)
	if err := r.Begin("7"); err != nil {
		t.Fatal(err)
	}
	if got := inFlight(t); got != base+1 {
		t.Fatalf("Expected gauge %v, got %v", base+1, got)
	}

	lookup.Board = viewmodel.NewBoard(&config.Dashboard{
		Instances: []config.InstanceConfig{{Name: "inst", Targets: []config.TargetConfig{{ID: "8"}}}},
	})
	res := r.Request(context.Background(), "inst", "7")
	if err := r.Resolve(res); !errors.Is(err, viewmodel.ErrUnknownTarget) {
		t.Fatalf("Expected ErrUnknownTarget, got %v", err)
	}

	if got := inFlight(t); got != base {
		t.Errorf("Expected gauge back at %v, got %v", base, got)
	}
	if len(r.prior) != 0 {
		t.Errorf("Expected no pending requests, got %v", r.prior)
	}
	if len(events.events) != 0 {
		t.Errorf("Expected no events, got %v", events.events)
	}
}
