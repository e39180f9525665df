// Package monitor implements §4.G: a steady ~100 ms tick that, while the
// monitoring app is connected (see Liveness), publishes a full variable
// snapshot and a debounced one-wire bus scan.
package monitor

import (
	"context"
	"encoding/json"
	"time"

	"laddercore/bus"
	"laddercore/configdoc"
	"laddercore/store"

	"github.com/sirupsen/logrus"
)

// Tick is the steady publish interval (§4.G).
const Tick = 100 * time.Millisecond

// DetectThreshold/MissThreshold gate how many consecutive scans a
// one-wire address must appear in (or be absent from) before the
// monitor reports it present or drops it (§4.G).
const (
	DetectThreshold = 3
	MissThreshold   = 3
)

// OneWireScanner is the boundary to the physical one-wire bus scan
// (distinct from store.Driver.ReadOneWire, which reads a configured
// sensor's value: this discovers raw addresses present on a bus,
// configured or not).
type OneWireScanner interface {
	ScanBus(busID int) ([]string, error) // returns hex16 addresses present
}

type addrState struct {
	detectStreak int
	missStreak   int
	reported     bool
}

// Service drives the monitor snapshot/one-wire publish tick.
type Service struct {
	conn    *bus.Connection
	store   *store.Store
	device  func() configdoc.Device
	scanner OneWireScanner
	selfMAC string
	live    *Liveness
	log     logrus.FieldLogger

	addrs map[string]*addrState // key: busName + "\x00" + address

	lastSnapshot []byte // last published monitor payload, for change suppression
}

// New constructs a monitor service. scanner may be nil, in which case
// one-wire scans always report empty.
func New(conn *bus.Connection, st *store.Store, device func() configdoc.Device, scanner OneWireScanner, live *Liveness, selfMAC string, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		conn: conn, store: st, device: device, scanner: scanner,
		live: live, selfMAC: selfMAC, log: log,
		addrs: make(map[string]*addrState),
	}
}

// Run drives the publish tick until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.live != nil && !s.live.Connected() {
				continue
			}
			s.publishSnapshot()
			s.publishOneWire()
		}
	}
}

// publishSnapshot mirrors the teacher's lastEmit coalescing idiom: an
// unchanged snapshot is not republished on every tick, only the first
// tick where it changed.
func (s *Service) publishSnapshot() {
	vars := s.store.Snapshot()
	out := make([]map[string]any, 0, len(vars))
	for _, v := range vars {
		out = append(out, configdoc.EncodeVariable(v))
	}
	payload, err := json.Marshal(out)
	if err != nil {
		s.log.WithError(err).Warn("failed to marshal monitor snapshot")
		return
	}
	if bytesEqual(s.lastSnapshot, payload) {
		return
	}
	s.lastSnapshot = payload
	s.conn.Publish(s.conn.NewMessage(bus.T(s.selfMAC, "monitor"), json.RawMessage(payload), false))
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *Service) publishOneWire() {
	s.conn.Publish(s.conn.NewMessage(bus.T(s.selfMAC, "one_wire"), s.searchOneWire(), false))
}

type pinAddrs struct {
	Pin       string   `json:"pin"`
	Addresses []string `json:"addresses"`
}

// searchOneWire scans each configured bus, debounces detections/misses
// per address, and reports addresses that have cleared DetectThreshold
// consecutive detections and not yet cleared MissThreshold misses
// (§4.G).
func (s *Service) searchOneWire() map[string]any {
	var pins []pinAddrs
	if s.device == nil {
		return map[string]any{"pins": pins}
	}
	dev := s.device()

	seenThisScan := map[string]bool{}
	for _, busDecl := range dev.OneWireBuses {
		var present []string
		if s.scanner != nil {
			addrs, err := s.scanner.ScanBus(busDecl.ID)
			if err != nil {
				s.log.WithError(err).WithField("bus", busDecl.Name).Warn("one-wire bus scan failed")
			} else {
				present = addrs
			}
		}

		presentSet := make(map[string]bool, len(present))
		for _, a := range present {
			presentSet[a] = true
		}

		var reportedAddrs []string
		for _, addr := range present {
			key := busDecl.Name + "\x00" + addr
			seenThisScan[key] = true
			st := s.addrs[key]
			if st == nil {
				st = &addrState{}
				s.addrs[key] = st
			}
			st.detectStreak++
			st.missStreak = 0
			if st.detectStreak >= DetectThreshold {
				st.reported = true
			}
		}

		for key, st := range s.addrs {
			if len(key) <= len(busDecl.Name)+1 || key[:len(busDecl.Name)+1] != busDecl.Name+"\x00" {
				continue
			}
			addr := key[len(busDecl.Name)+1:]
			if presentSet[addr] {
				if st.reported {
					reportedAddrs = append(reportedAddrs, addr)
				}
				continue
			}
			st.missStreak++
			st.detectStreak = 0
			if st.missStreak >= MissThreshold {
				delete(s.addrs, key)
				continue
			}
			if st.reported {
				reportedAddrs = append(reportedAddrs, addr)
			}
		}

		pins = append(pins, pinAddrs{Pin: busDecl.Name, Addresses: reportedAddrs})
	}

	return map[string]any{"pins": pins}
}
