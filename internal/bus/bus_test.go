package bus

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPublishStopsAtFirstHandled(t *testing.T) {
	b := New()
	var calls []string
	b.Subscribe(func(event string, payload any) (bool, any) {
		calls = append(calls, "first")
		return false, nil
	})
	b.Subscribe(func(event string, payload any) (bool, any) {
		calls = append(calls, "second")
		return true, "handled by second"
	})
	b.Subscribe(func(event string, payload any) (bool, any) {
		calls = append(calls, "third")
		return true, "handled by third"
	})

	result := b.Publish("ping", nil)
	if result != "handled by second" {
		t.Fatalf("result = %v, want result of second handler", result)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("calls = %v, want [first second]", calls)
	}
}

func TestPublishUnhandledReturnsNil(t *testing.T) {
	b := New()
	b.Subscribe(func(event string, payload any) (bool, any) {
		return false, nil
	})
	if result := b.Publish("ping", 42); result != nil {
		t.Fatalf("result = %v, want nil", result)
	}
}

func TestCancelRemovesHandler(t *testing.T) {
	b := New()
	calls := 0
	cancel := b.Subscribe(func(event string, payload any) (bool, any) {
		calls++
		return true, nil
	})
	b.Publish("ping", nil)
	cancel()
	cancel() // idempotent
	b.Publish("ping", nil)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestClaimConsumesEvent(t *testing.T) {
	b := New()
	handlerSaw := false
	b.Subscribe(func(event string, payload any) (bool, any) {
		handlerSaw = true
		return true, nil
	})
	ch, cancel := b.Listen("reply")
	defer cancel()

	b.Publish("reply", "payload")
	select {
	case d := <-ch:
		if d.Event != "reply" || d.Payload != "payload" {
			t.Fatalf("delivery = %+v", d)
		}
	default:
		t.Fatal("claimed event not delivered")
	}
	if handlerSaw {
		t.Fatal("handler ran for a claimed event")
	}

	// Other events still reach the handler.
	b.Publish("other", nil)
	if !handlerSaw {
		t.Fatal("handler missed unclaimed event")
	}
}

func TestAllClaimsReceive(t *testing.T) {
	b := New()
	ch1, cancel1 := b.Listen("ev")
	defer cancel1()
	ch2, cancel2 := b.Listen("ev")
	defer cancel2()

	b.Publish("ev", 1)
	select {
	case <-ch1:
	default:
		t.Fatal("first claim did not receive the event")
	}
	select {
	case <-ch2:
	default:
		t.Fatal("second claim did not receive the event")
	}
}

func TestAwaitReceives(t *testing.T) {
	b := New()
	done := make(chan struct{})
	go func() {
		defer close(done)
		d, err := b.Await(context.Background(), time.Second, "a", "b")
		if err != nil {
			t.Errorf("Await: %v", err)
			return
		}
		if d.Event != "b" || d.Payload != 7 {
			t.Errorf("delivery = %+v, want event b payload 7", d)
		}
	}()

	// Publish until the claim is registered and consumes the event.
	deadline := time.After(time.Second)
	for {
		b.Publish("b", 7)
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("Await never received the event")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestAwaitTimeout(t *testing.T) {
	b := New()
	_, err := b.Await(context.Background(), 10*time.Millisecond, "never")
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
	if len(te.Events) != 1 || te.Events[0] != "never" {
		t.Fatalf("TimeoutError.Events = %v", te.Events)
	}
}

func TestAwaitContextCancel(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Await(ctx, 0, "never")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
