package driverio

import (
	"context"
	"time"

	"laddercore/drivers/ltc4015"
	"laddercore/store"

	"github.com/sirupsen/logrus"
)

// LTC4015Feed periodically samples a battery-charger telemetry chip and
// publishes a subset of its Snapshot into Number variables, so a ladder
// program can branch on pack voltage/current the same way it branches
// on any other Number.
type LTC4015Feed struct {
	dev          *ltc4015.Device
	store        *store.Store
	vbatVar      string
	ibatVar      string
	vinVar       string
	pollInterval time.Duration
	log          logrus.FieldLogger
}

// NewLTC4015Feed binds dev's telemetry to Number variables in st. Any
// variable name left empty is skipped.
func NewLTC4015Feed(dev *ltc4015.Device, st *store.Store, vbatVar, ibatVar, vinVar string, pollInterval time.Duration, log logrus.FieldLogger) *LTC4015Feed {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LTC4015Feed{dev: dev, store: st, vbatVar: vbatVar, ibatVar: ibatVar, vinVar: vinVar, pollInterval: pollInterval, log: log}
}

// Run samples the charger on every tick until ctx is cancelled.
func (f *LTC4015Feed) Run(ctx context.Context) {
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

func (f *LTC4015Feed) sample() {
	if f.vbatVar != "" {
		if mv, err := f.dev.Battery_mVPack(); err != nil {
			f.log.WithError(err).Warn("ltc4015: vbat read failed")
		} else {
			f.store.WriteNum(f.vbatVar, float64(mv)/1000)
		}
	}
	if f.ibatVar != "" {
		if ma, err := f.dev.Ibat_mA(); err != nil {
			f.log.WithError(err).Warn("ltc4015: ibat read failed")
		} else {
			f.store.WriteNum(f.ibatVar, float64(ma))
		}
	}
	if f.vinVar != "" {
		if mv, err := f.dev.Vin_mV(); err != nil {
			f.log.WithError(err).Warn("ltc4015: vin read failed")
		} else {
			f.store.WriteNum(f.vinVar, float64(mv)/1000)
		}
	}
}
