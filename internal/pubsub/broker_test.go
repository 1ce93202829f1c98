package pubsub

import (
	"context"
	"testing"
	"time"
)

func TestBroker_FanOut(t *testing.T) {
	b := NewBroker[TargetRef](4)
	defer b.Shutdown()

	ctx := context.Background()
	first := b.Subscribe(ctx)
	second := b.Subscribe(ctx)

	b.Publish(ReportReady, TargetRef{TargetID: "7"})

	for i, ch := range []<-chan Event[TargetRef]{first, second} {
		select {
		case evt := <-ch:
			if evt.Type != ReportReady || evt.Payload.TargetID != "7" {
				t.Errorf("Subscriber %d got %+v", i, evt)
			}
		case <-time.After(time.Second):
			t.Fatalf("Subscriber %d got nothing", i)
		}
	}
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker[TargetRef](1)
	defer b.Shutdown()
	ch := b.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish(ReportReady, TargetRef{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	if len(ch) != 1 {
		t.Errorf("Expected one buffered event, got %d", len(ch))
	}
}

func TestBroker_UnsubscribeOnCancel(t *testing.T) {
	b := NewBroker[TargetRef](1)
	defer b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Expected a closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("Channel not closed after cancel")
	}
	if n := b.Subscribers(); n != 0 {
		t.Errorf("Expected 0 subscribers, got %d", n)
	}
}

func TestBroker_Shutdown(t *testing.T) {
	b := NewBroker[TargetRef](1)
	ch := b.Subscribe(context.Background())
	b.Shutdown()
	b.Shutdown()

	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after shutdown")
	}
	if _, ok := <-b.Subscribe(context.Background()); ok {
		t.Error("Subscribe after shutdown must return a closed channel")
	}
	b.Publish(ReportReady, TargetRef{})
}

func TestPublisherFunc_DeliversEveryEvent(t *testing.T) {
	var got []string
	var p Publisher[TargetRef] = PublisherFunc[TargetRef](func(t EventType, ref TargetRef) {
		got = append(got, ref.TargetID)
	})

	for i := 0; i < 100; i++ {
		p.Publish(ReportReady, TargetRef{TargetID: "7"})
	}
	if len(got) != 100 {
		t.Errorf("Expected 100 deliveries, got %d", len(got))
	}
}
