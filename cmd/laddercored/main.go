// Command laddercored boots the ladder-logic core: the variable store,
// element library, wire scheduler, config ingestor, persistence,
// parent sync, monitor snapshot/liveness, and the MQTT bridge.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"laddercore/bridge/mqtt"
	"laddercore/bus"
	"laddercore/engine"
	"laddercore/ingest"
	"laddercore/monitor"
	"laddercore/parentsync"
	"laddercore/persistence"
	"laddercore/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "laddercored",
		Short: "Run the ladder-logic execution core",
		RunE:  runDaemon,
	}

	cmd.Flags().String("config-file", "", "process config file (ambient process config, not the ladder program)")
	cmd.Flags().String("mac", "AABBCCDDEEFF", "device MAC, 12 uppercase hex chars, used as the bus topic prefix")
	cmd.Flags().String("data-dir", "./data", "base directory for persisted state")
	cmd.Flags().String("mqtt-broker", "tcp://localhost:1883", "MQTT broker URL")
	cmd.Flags().Bool("mqtt-enabled", true, "bridge the internal bus to the MQTT broker")
	cmd.Flags().String("log-level", "info", "logrus level")

	viper.BindPFlags(cmd.Flags())
	viper.SetEnvPrefix("laddercored")
	viper.AutomaticEnv()

	return cmd
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if cfgFile := viper.GetString("config-file"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read process config: %w", err)
		}
	}

	log := logrus.New()
	if lvl, err := logrus.ParseLevel(viper.GetString("log-level")); err == nil {
		log.SetLevel(lvl)
	}

	mac := viper.GetString("mac")
	dataDir := viper.GetString("data-dir")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	driver := store.NopDriver{} // replaced by a board-specific driverio binding in a real deployment
	st := store.New(driver, log.WithField("component", "store"))
	eng := engine.New(st, log.WithField("component", "engine"))

	persist := persistence.New(dataDir)

	ingestor := ingest.New(ingest.Target{Store: st, Engine: eng, Persist: persist}, log.WithField("component", "ingest"))
	defer ingestor.Close()

	if raw, ok, err := persist.LoadConfig(); err != nil {
		log.WithError(err).Error("failed to read persisted config")
	} else if ok {
		log.Info("replaying persisted config")
		ingestor.LoadFromStorage(raw)
	}

	b := bus.NewBus(8)
	conn := b.NewConnection("core")

	go runConfigPorts(ctx, conn, persist, mac, ingestor, log.WithField("component", "config_ports"))

	live := monitor.NewLiveness(conn, mac, log.WithField("component", "liveness"))
	go live.Run(ctx)

	mon := monitor.New(conn, st, ingestor.Device, nil, live, mac, log.WithField("component", "monitor"))
	go mon.Run(ctx)

	ps := parentsync.New(conn, st, mac, log.WithField("component", "parentsync"))
	ps.Connected = live.Connected
	ps.Parents = func() []string { return ingestor.Device().ParentDevices }
	go ps.Run(ctx)

	if viper.GetBool("mqtt-enabled") {
		bridge := mqtt.New(conn, mqtt.Config{
			BrokerURL: viper.GetString("mqtt-broker"),
			ClientID:  "laddercored-" + mac,
			SelfMAC:   mac,
		}, log.WithField("component", "bridge.mqtt"))
		go bridge.Run(ctx)
	}

	// A real deployment additionally constructs driverio feeds (AHT20Feed,
	// LTC4015Feed, ...) here, bound to the chip drivers the board exposes,
	// and runs them alongside the goroutines above.

	log.WithField("mac", mac).Info("laddercored running")
	<-ctx.Done()
	log.Info("shutting down")
	time.Sleep(100 * time.Millisecond) // let goroutines observe ctx.Done() before process exit
	return nil
}

// runConfigPorts wires the two config-ingress ports left unassigned by
// any single package (§6.3): incoming config_device chunks feed the
// ingestor, and a config_request triggers a republish of the persisted
// document on config_response.
func runConfigPorts(ctx context.Context, conn *bus.Connection, persist *persistence.Store, mac string, ingestor *ingest.Ingestor, log logrus.FieldLogger) {
	chunks := conn.Subscribe(bus.T(mac, "config_device"))
	defer chunks.Unsubscribe()

	requests := conn.Subscribe(bus.T(mac, "config_request"))
	defer requests.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-chunks.Channel():
			if msg == nil {
				return
			}
			if raw, ok := msg.Payload.([]byte); ok {
				ingestor.Chunk(raw)
			}
		case msg := <-requests.Channel():
			if msg == nil {
				return
			}
			raw, ok, err := persist.LoadConfig()
			if err != nil {
				log.WithError(err).Error("failed to read persisted config for config_request reply")
				continue
			}
			if !ok {
				continue
			}
			conn.Publish(conn.NewMessage(bus.T(mac, "config_response"), raw, true))
		}
	}
}
