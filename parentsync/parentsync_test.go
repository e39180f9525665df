package parentsync

import (
	"context"
	"testing"
	"time"

	"laddercore/bus"
	"laddercore/configdoc"
	"laddercore/store"
)

func newTestService(t *testing.T, mac string) (*Service, *bus.Bus) {
	t.Helper()
	b := bus.NewBus(8)
	conn := b.NewConnection("child")
	st := store.New(store.NopDriver{}, nil)
	if err := st.Load([]configdoc.Variable{
		{Name: "flag", Kind: configdoc.KindBoolean, BoolValue: true},
		{Name: "num", Kind: configdoc.KindNumber, NumValue: 3},
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	svc := New(conn, st, mac, nil)
	return svc, b
}

func TestPublishSkippedWhenDisconnected(t *testing.T) {
	svc, b := newTestService(t, "child-mac")
	svc.Connected = func() bool { return false }
	svc.Parents = func() []string { return []string{"parent-mac"} }

	parentConn := b.NewConnection("parent")
	sub := parentConn.Subscribe(bus.T("parent-mac", "children_listener"))
	defer parentConn.Unsubscribe(sub)

	svc.publish()

	select {
	case <-sub.Channel():
		t.Fatal("expected no publish while Connected reports false")
	case <-time.After(10 * time.Millisecond):
	}
}

func TestPublishSendsDeltasToEachParent(t *testing.T) {
	svc, b := newTestService(t, "child-mac")
	svc.Connected = func() bool { return true }
	svc.Parents = func() []string { return []string{"parent-mac"} }

	parentConn := b.NewConnection("parent")
	sub := parentConn.Subscribe(bus.T("parent-mac", "children_listener"))
	defer parentConn.Unsubscribe(sub)

	svc.publish()

	select {
	case msg := <-sub.Channel():
		deltas, ok := msg.Payload.(map[string]any)
		if !ok {
			t.Fatalf("expected a map payload, got %T", msg.Payload)
		}
		if deltas["flag"] != true {
			t.Fatalf("expected flag=true in deltas, got %+v", deltas)
		}
	case <-time.After(50 * time.Millisecond):
		t.Fatal("expected a publish to the parent's children_listener topic")
	}
}

func TestAbsorbAppliesInboundDeltas(t *testing.T) {
	svc, _ := newTestService(t, "child-mac")
	svc.absorb(map[string]any{"num": 9.0})
	if got := svc.store.ReadNum("num"); got != 9 {
		t.Fatalf("expected absorb to apply num=9, got %v", got)
	}
}

func TestAbsorbIgnoresNonObjectPayload(t *testing.T) {
	svc, _ := newTestService(t, "child-mac")
	svc.absorb("not an object")
	if got := svc.store.ReadNum("num"); got != 3 {
		t.Fatalf("expected non-object payload to be ignored, got %v", got)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	svc, _ := newTestService(t, "child-mac")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after context cancellation")
	}
}
