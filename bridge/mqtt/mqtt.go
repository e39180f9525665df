// Package mqtt bridges the internal bus to a real MQTT broker (§6.3):
// every topic is prefixed by the device's 12-uppercase-hex-char MAC, and
// the suffix table's direction decides which side of the bridge a given
// topic is mirrored from.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"laddercore/bus"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Config is the bridge's own configuration, analogous to the teacher's
// TransportConfig but naming a broker URL instead of a UART.
type Config struct {
	BrokerURL string
	ClientID  string
	SelfMAC   string // 12 uppercase hex chars
}

// inboundSuffixes are topics the bridge subscribes to on the real broker
// and republishes onto the internal bus (§6.3 "in"/"in/out" rows).
var inboundSuffixes = []string{
	"connection_request", "config_request", "config_device", "children_listener",
}

// outboundSuffixes are topics the bridge subscribes to on the internal
// bus and republishes to the real broker (§6.3 "out"/"in/out" rows).
// children_listener is handled separately since its outbound leg targets
// an arbitrary parent MAC, not SelfMAC.
var outboundSuffixes = []string{
	"connection_response", "config_response", "monitor", "one_wire",
}

// Service supervises a single MQTT client connection, reconnecting with
// backoff on drop, in the same shape as the teacher's link supervisor.
type Service struct {
	conn *bus.Connection
	cfg  Config
	log  logrus.FieldLogger
}

// New constructs a bridge service.
func New(conn *bus.Connection, cfg Config, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{conn: conn, cfg: cfg, log: log}
}

// Run dials the broker and supervises the link until ctx is cancelled,
// reconnecting with an exponential backoff on drop.
func (s *Service) Run(ctx context.Context) {
	backoff := backoffSeq(250*time.Millisecond, 5*time.Second)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		client, err := s.dial(ctx)
		if err != nil {
			delay := backoff()
			s.log.WithError(err).WithField("retry_in", delay).Warn("mqtt dial failed")
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		s.log.Info("mqtt link established")
		<-ctx.Done()
		client.Disconnect(250)
		return
	}
}

func (s *Service) dial(ctx context.Context) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.BrokerURL).
		SetClientID(s.cfg.ClientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt: connect timed out")
	}
	if err := tok.Error(); err != nil {
		return nil, err
	}

	for _, suffix := range inboundSuffixes {
		s.subscribeInbound(client, suffix)
	}
	s.subscribeChildrenListenerInbound(client)

	busUnsub := make([]*bus.Subscription, 0, len(outboundSuffixes)+1)
	for _, suffix := range outboundSuffixes {
		busUnsub = append(busUnsub, s.forwardOutbound(ctx, client, suffix))
	}
	busUnsub = append(busUnsub, s.forwardChildrenListenerOutbound(ctx, client))

	go func() {
		<-ctx.Done()
		for _, sub := range busUnsub {
			s.conn.Unsubscribe(sub)
		}
	}()

	return client, nil
}

func (s *Service) subscribeInbound(client mqtt.Client, suffix string) {
	topic := s.cfg.SelfMAC + "/" + suffix
	client.Subscribe(topic, 0, func(_ mqtt.Client, m mqtt.Message) {
		var payload any
		if suffix == "config_device" {
			// Each chunk is an opaque byte fragment, not necessarily
			// valid JSON on its own; pass the raw bytes through rather
			// than risk decodePayload's JSON-then-string fallback
			// mangling it.
			raw := m.Payload()
			cp := make([]byte, len(raw))
			copy(cp, raw)
			payload = cp
		} else {
			payload = decodePayload(m.Payload())
		}
		s.conn.Publish(s.conn.NewMessage(bus.T(s.cfg.SelfMAC, suffix), payload, false))
	})
}

func (s *Service) subscribeChildrenListenerInbound(client mqtt.Client) {
	topic := s.cfg.SelfMAC + "/children_listener"
	client.Subscribe(topic, 0, func(_ mqtt.Client, m mqtt.Message) {
		s.conn.Publish(s.conn.NewMessage(bus.T(s.cfg.SelfMAC, "children_listener"), decodePayload(m.Payload()), false))
	})
}

func (s *Service) forwardOutbound(ctx context.Context, client mqtt.Client, suffix string) *bus.Subscription {
	sub := s.conn.Subscribe(bus.T(s.cfg.SelfMAC, suffix))
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				client.Publish(s.cfg.SelfMAC+"/"+suffix, 0, false, encodePayload(msg.Payload))
			}
		}
	}()
	return sub
}

// forwardChildrenListenerOutbound mirrors every {parent_mac}/children_listener
// publish this device makes (Parent Sync publishes once per configured
// parent, per §4.F) onto the real broker under that same parent's topic.
func (s *Service) forwardChildrenListenerOutbound(ctx context.Context, client mqtt.Client) *bus.Subscription {
	sub := s.conn.Subscribe(bus.T("+", "children_listener"))
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				if msg.Topic.Len() != 2 {
					continue
				}
				mac := msg.Topic.At(0)
				if fmt.Sprint(mac) == s.cfg.SelfMAC {
					// Inbound traffic republished by subscribeChildrenListenerInbound.
					continue
				}
				client.Publish(fmt.Sprintf("%v/children_listener", mac), 0, false, encodePayload(msg.Payload))
			}
		}
	}()
	return sub
}

func decodePayload(raw []byte) any {
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw) // plain-string payloads like "Connect"/"Present"
}

func encodePayload(v any) []byte {
	switch p := v.(type) {
	case string:
		return []byte(p)
	case []byte:
		return p
	case json.RawMessage:
		return p
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func backoffSeq(start, max time.Duration) func() time.Duration {
	cur := start
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
