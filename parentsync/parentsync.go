// Package parentsync implements §4.F: a steady ~100 ms tick that
// publishes every Boolean/Number variable to each configured parent's
// child-sync topic, and absorbs the matching inbound stream.
package parentsync

import (
	"context"
	"time"

	"laddercore/bus"
	"laddercore/store"

	"github.com/sirupsen/logrus"
)

// Tick is the steady publish interval (§4.F).
const Tick = 100 * time.Millisecond

// Service ticks child->parent variable sync and applies the inbound
// parent->child stream.
type Service struct {
	conn    *bus.Connection
	store   *store.Store
	selfMAC string
	log     logrus.FieldLogger

	// Connected reports whether the bus link to the wider network is up;
	// publishing is skipped while false (§4.F: "if the message bus is
	// connected").
	Connected func() bool

	// Parents returns the current parent MAC list. Read fresh on every
	// tick so a config apply's new ParentDevices list takes effect
	// without restarting the service.
	Parents func() []string
}

// New constructs a parent-sync service bound to conn and store, keyed by
// the device's own MAC (used to build its inbound listener topic).
func New(conn *bus.Connection, st *store.Store, selfMAC string, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{conn: conn, store: st, selfMAC: selfMAC, log: log}
}

// Run drives the publish tick and the inbound subscription until ctx is
// cancelled.
func (s *Service) Run(ctx context.Context) {
	sub := s.conn.Subscribe(bus.T(s.selfMAC, "children_listener"))
	defer s.conn.Unsubscribe(sub)

	tick := time.NewTicker(Tick)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.publish()
		case msg := <-sub.Channel():
			s.absorb(msg.Payload)
		}
	}
}

func (s *Service) publish() {
	if s.Connected != nil && !s.Connected() {
		return
	}
	deltas := s.store.BooleanAndNumberDeltas()
	if len(deltas) == 0 || s.Parents == nil {
		return
	}
	for _, mac := range s.Parents() {
		if mac == "" {
			continue
		}
		s.conn.Publish(s.conn.NewMessage(bus.T(mac, "children_listener"), deltas, false))
	}
}

func (s *Service) absorb(payload any) {
	m, ok := payload.(map[string]any)
	if !ok {
		s.log.Debug("parentsync: inbound payload is not an object, ignoring")
		return
	}
	s.store.ApplyDeltas(m)
}
