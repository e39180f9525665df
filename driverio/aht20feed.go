// Package driverio adapts physical sensor/actuator chip drivers into the
// ladder-core variable model: each feed owns a chip driver and a ticker,
// and writes sampled values into named Number variables the wire program
// reads like any other scalar.
package driverio

import (
	"context"
	"time"

	"laddercore/drivers/aht20"
	"laddercore/store"

	"github.com/sirupsen/logrus"
)

// AHT20Feed periodically samples an AHT20 temperature/humidity sensor
// and writes Celsius/RelHumidity into two Number variables.
type AHT20Feed struct {
	dev          aht20.Device
	store        *store.Store
	tempVar      string
	humidityVar  string
	pollInterval time.Duration
	log          logrus.FieldLogger
}

// NewAHT20Feed binds dev to tempVar/humidityVar, two pre-existing Number
// variables in st. A variable name left empty is not written.
func NewAHT20Feed(dev aht20.Device, st *store.Store, tempVar, humidityVar string, pollInterval time.Duration, log logrus.FieldLogger) *AHT20Feed {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AHT20Feed{dev: dev, store: st, tempVar: tempVar, humidityVar: humidityVar, pollInterval: pollInterval, log: log}
}

// Run samples the sensor on every tick until ctx is cancelled.
func (f *AHT20Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.sample()
		}
	}
}

func (f *AHT20Feed) sample() {
	if err := f.dev.Read(); err != nil {
		f.log.WithError(err).Warn("aht20: sample read failed")
		return
	}
	if f.tempVar != "" {
		f.store.WriteNum(f.tempVar, float64(f.dev.Celsius()))
	}
	if f.humidityVar != "" {
		f.store.WriteNum(f.humidityVar, float64(f.dev.RelHumidity()))
	}
}
