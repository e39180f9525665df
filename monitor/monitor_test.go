package monitor

import (
	"testing"

	"laddercore/bus"
	"laddercore/configdoc"
	"laddercore/store"
)

func newTestMonitor(t *testing.T, scanner OneWireScanner, device configdoc.Device) (*Service, *bus.Connection) {
	t.Helper()
	b := bus.NewBus(8)
	conn := b.NewConnection("core")
	st := store.New(store.NopDriver{}, nil)
	if err := st.Load([]configdoc.Variable{
		{Name: "flag", Kind: configdoc.KindBoolean, BoolValue: true},
	}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	svc := New(conn, st, func() configdoc.Device { return device }, scanner, nil, "self-mac", nil)
	return svc, conn
}

func TestPublishSnapshotSuppressesUnchangedPayload(t *testing.T) {
	svc, b := newTestMonitor(t, nil, configdoc.Device{})
	sub := b.Subscribe(bus.T("self-mac", "monitor"))
	defer b.Unsubscribe(sub)

	svc.publishSnapshot()
	select {
	case <-sub.Channel():
	default:
		t.Fatal("expected the first snapshot publish to go out")
	}

	svc.publishSnapshot()
	select {
	case <-sub.Channel():
		t.Fatal("expected an unchanged snapshot to be suppressed")
	default:
	}
}

func TestPublishSnapshotRepublishesOnChange(t *testing.T) {
	svc, b := newTestMonitor(t, nil, configdoc.Device{})
	sub := b.Subscribe(bus.T("self-mac", "monitor"))
	defer b.Unsubscribe(sub)

	svc.publishSnapshot()
	<-sub.Channel()

	svc.store.WriteBool("flag", false)
	svc.publishSnapshot()
	select {
	case <-sub.Channel():
	default:
		t.Fatal("expected a changed snapshot to republish")
	}
}

type fakeScanner struct {
	addrs map[int][]string
}

func (f fakeScanner) ScanBus(busID int) ([]string, error) {
	return f.addrs[busID], nil
}

func TestSearchOneWireDebouncesDetection(t *testing.T) {
	dev := configdoc.Device{OneWireBuses: []configdoc.OneWireBus{{Name: "bus0", ID: 1}}}
	scanner := fakeScanner{addrs: map[int][]string{1: {"28FF00"}}}
	svc, _ := newTestMonitor(t, scanner, dev)

	for i := 0; i < DetectThreshold-1; i++ {
		out := svc.searchOneWire()
		pins := out["pins"].([]pinAddrs)
		if len(pins[0].Addresses) != 0 {
			t.Fatalf("expected no reported address before DetectThreshold scans, got %v at scan %d", pins[0].Addresses, i)
		}
	}
	out := svc.searchOneWire()
	pins := out["pins"].([]pinAddrs)
	if len(pins[0].Addresses) != 1 || pins[0].Addresses[0] != "28FF00" {
		t.Fatalf("expected 28FF00 reported after DetectThreshold consecutive scans, got %v", pins[0].Addresses)
	}
}

func TestSearchOneWireDebouncesMiss(t *testing.T) {
	dev := configdoc.Device{OneWireBuses: []configdoc.OneWireBus{{Name: "bus0", ID: 1}}}
	addrs := map[int][]string{1: {"28FF00"}}
	scanner := fakeScanner{addrs: addrs}
	svc, _ := newTestMonitor(t, scanner, dev)

	for i := 0; i < DetectThreshold; i++ {
		svc.searchOneWire()
	}

	addrs[1] = nil
	var lastSeen []string
	for i := 0; i < MissThreshold-1; i++ {
		out := svc.searchOneWire()
		lastSeen = out["pins"].([]pinAddrs)[0].Addresses
	}
	if len(lastSeen) != 1 {
		t.Fatalf("expected the address to still be reported while under MissThreshold, got %v", lastSeen)
	}

	out := svc.searchOneWire()
	pins := out["pins"].([]pinAddrs)
	if len(pins[0].Addresses) != 0 {
		t.Fatalf("expected the address to drop after MissThreshold consecutive misses, got %v", pins[0].Addresses)
	}
}

func TestSearchOneWireWithNilScannerReportsEmpty(t *testing.T) {
	dev := configdoc.Device{OneWireBuses: []configdoc.OneWireBus{{Name: "bus0", ID: 1}}}
	svc, _ := newTestMonitor(t, nil, dev)
	out := svc.searchOneWire()
	pins := out["pins"].([]pinAddrs)
	if len(pins) != 1 || len(pins[0].Addresses) != 0 {
		t.Fatalf("expected an empty address list with no scanner, got %+v", pins)
	}
}
