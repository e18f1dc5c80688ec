package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	boom := errors.New("boom")

	d.Subscribe(EventAssetAssigned, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.SubjectID)
		return boom
	})
	d.Subscribe(EventAssetAssigned, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventAssetDeleted, func(_ context.Context, _ Event) error {
		t.Fatalf("unrelated handler invoked")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventAssetAssigned, SubjectID: "a1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined handler error, got %v", err)
	}
	if len(calls) != 2 || calls[0] != "first:a1" || calls[1] != "second:a1" {
		t.Fatalf("unexpected calls %v", calls)
	}
}

func TestDispatcherWithoutHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDispatcherRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false
	d.Subscribe(EventLicenseAssigned, func(context.Context, Event) error {
		panic("sink exploded")
	})
	d.Subscribe(EventLicenseAssigned, func(context.Context, Event) error {
		delivered = true
		return nil
	})
	d.Subscribe(EventLicenseAssigned, nil)

	err := d.Publish(context.Background(), Event{Type: EventLicenseAssigned, SubjectID: "l1"})
	if err == nil {
		t.Fatalf("expected the panic to surface as an error")
	}
	if !delivered {
		t.Fatalf("second handler should still run after a panic")
	}
}
