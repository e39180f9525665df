package monitor

import (
	"context"
	"sync"
	"time"

	"laddercore/bus"

	"github.com/sirupsen/logrus"
)

// PresenceTimeout is how long Liveness waits for a "Present" heartbeat
// before clearing app_connected (§4.G).
const PresenceTimeout = 10 * time.Second

// presenceCheckInterval is how often Liveness polls its own deadline;
// it only needs to be well under PresenceTimeout.
const presenceCheckInterval = 1 * time.Second

// Liveness tracks whether the monitoring app on the other end of the bus
// is currently connected, driven by "Connect"/"Present"/"Disconnect"
// messages on "{self_mac}/connection_request" (§4.G).
type Liveness struct {
	conn    *bus.Connection
	selfMAC string
	log     logrus.FieldLogger

	mu          sync.Mutex
	connected   bool
	lastPresent time.Time
}

// NewLiveness constructs a Liveness tracker bound to conn.
func NewLiveness(conn *bus.Connection, selfMAC string, log logrus.FieldLogger) *Liveness {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Liveness{conn: conn, selfMAC: selfMAC, log: log}
}

// Connected reports whether the app is currently considered connected.
func (l *Liveness) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// Run subscribes to the connection-request topic and enforces the
// presence deadline until ctx is cancelled.
func (l *Liveness) Run(ctx context.Context) {
	sub := l.conn.Subscribe(bus.T(l.selfMAC, "connection_request"))
	defer l.conn.Unsubscribe(sub)

	ticker := time.NewTicker(presenceCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.Channel():
			l.handle(msg.Payload)
		case <-ticker.C:
			l.checkDeadline()
		}
	}
}

func (l *Liveness) handle(payload any) {
	s, _ := payload.(string)
	switch s {
	case "Connect":
		l.mu.Lock()
		l.connected = true
		l.lastPresent = time.Now()
		l.mu.Unlock()
		l.conn.Publish(l.conn.NewMessage(bus.T(l.selfMAC, "connection_response"), "Connected", false))
	case "Present":
		l.mu.Lock()
		l.lastPresent = time.Now()
		l.mu.Unlock()
	case "Disconnect":
		l.disconnect()
	}
}

func (l *Liveness) checkDeadline() {
	l.mu.Lock()
	expired := l.connected && time.Since(l.lastPresent) > PresenceTimeout
	l.mu.Unlock()
	if expired {
		l.disconnect()
	}
}

func (l *Liveness) disconnect() {
	l.mu.Lock()
	was := l.connected
	l.connected = false
	l.mu.Unlock()
	if was {
		l.conn.Publish(l.conn.NewMessage(bus.T(l.selfMAC, "connection_response"), "Disconnected", false))
		l.log.Info("monitoring app disconnected")
	}
}
