// Package ingest implements the config ingestor (§4.D): it assembles
// chunked JSON delivered over BLE writes or an MQTT config topic into a
// complete document, and on successful parse atomically swaps the live
// device descriptor, variable store, and wire program.
package ingest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"laddercore/configdoc"
	"laddercore/engine"
	"laddercore/errcode"
	"laddercore/persistence"
	"laddercore/store"

	"github.com/sirupsen/logrus"
)

// ChunkTimeout is the one-shot deadline restarted on every chunk (§4.D).
const ChunkTimeout = 10 * time.Second

// Per-wire-task overhead budget used by the heap guard before a bulk
// spawn (§4.D.f). These are conservative constants, not measurements —
// see DESIGN.md for why a byte-budget check is the idiomatic Go stand-in
// for the source's free-RTOS-heap headroom check.
const (
	taskOverheadBytes = 2048
	perWireSlackBytes = 4096
	guardFloorBytes   = 1024
)

// Target bundles the live components a successful apply reconfigures.
type Target struct {
	Store   *store.Store
	Engine  *engine.Engine
	Persist *persistence.Store
}

// Ingestor assembles chunked JSON and drives config apply.
type Ingestor struct {
	mu     sync.Mutex
	buffer []byte
	timer  *time.Timer

	target Target
	log    logrus.FieldLogger

	deviceMu sync.RWMutex
	device   configdoc.Device

	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs an Ingestor bound to target. The returned Ingestor owns
// a background context used to run spawned wire tasks; call Close to
// tear everything down.
func New(target Target, log logrus.FieldLogger) *Ingestor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Ingestor{target: target, log: log, ctx: ctx, cancel: cancel}
}

// Close tears down the currently running program.
func (i *Ingestor) Close() {
	i.cancel()
	i.target.Engine.Teardown()
}

// Device returns the currently active device descriptor.
func (i *Ingestor) Device() configdoc.Device {
	i.deviceMu.RLock()
	defer i.deviceMu.RUnlock()
	return i.device
}

// Chunk feeds one BLE-write or MQTT-payload chunk into the assembler
// (§4.D steps 1-5). Each call restarts the 10s deadline, appends the
// bytes, and attempts a parse; a parse failure just means "wait for more
// bytes", never an error returned to the caller.
func (i *Ingestor) Chunk(data []byte) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.restartTimerLocked()
	i.buffer = append(i.buffer, data...)

	v, perr := configdoc.ParseJSON(i.buffer)
	if perr != nil {
		// Incomplete (or not yet valid) JSON: keep buffering.
		return
	}

	i.applyLocked(v, i.buffer, false)
}

// LoadFromStorage replays a previously persisted configuration at boot,
// suppressing the re-persist step (§4.E).
func (i *Ingestor) LoadFromStorage(raw []byte) {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, perr := configdoc.ParseJSON(raw)
	if perr != nil {
		i.log.WithError(perr).Error("persisted configuration is not valid JSON")
		return
	}
	i.applyLocked(v, raw, true)
}

func (i *Ingestor) restartTimerLocked() {
	if i.timer != nil {
		i.timer.Stop()
	}
	i.timer = time.AfterFunc(ChunkTimeout, i.onTimeout)
}

func (i *Ingestor) stopTimerLocked() {
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
}

func (i *Ingestor) onTimeout() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.buffer) == 0 {
		return
	}
	i.log.WithField("bytes_buffered", len(i.buffer)).Warn("config chunk assembly timed out, discarding buffer")
	i.buffer = nil
}

// applyLocked is the apply point (§4.D step 5); i.mu is already held.
func (i *Ingestor) applyLocked(v any, raw []byte, loadedFromStorage bool) {
	i.stopTimerLocked()

	doc, warnings, derr := configdoc.Decode(v)
	if derr != nil {
		i.log.WithError(derr).Error("configuration document rejected, retaining previous program")
		i.buffer = nil
		return
	}
	for _, w := range warnings {
		i.log.WithField("path", w.Path).Warn("config ingest: " + w.Detail)
	}

	if verr := doc.Validate(); verr != nil {
		i.log.WithError(verr).Error("configuration document fails cross-reference validation, retaining previous program")
		i.buffer = nil
		return
	}

	if !loadedFromStorage {
		if err := i.target.Persist.DeleteConfig(); err != nil {
			i.log.WithError(err).Warn("failed to delete prior persisted config")
		}
		if err := i.target.Persist.SaveConfig(raw); err != nil {
			i.log.WithError(errcode.New(errcode.StorageFailed, "ingest.apply", "save config", err)).
				Error("failed to persist accepted config")
		}
	}

	if err := i.target.Store.Load(doc.Variables); err != nil {
		i.log.WithError(err).Error("variable store rebuild failed, retaining previous program")
		i.buffer = nil
		return
	}

	i.deviceMu.Lock()
	i.device = doc.Device
	i.deviceMu.Unlock()

	if !hasHeadroom(len(doc.Wires)) {
		i.log.WithField("wire_count", len(doc.Wires)).
			Error("insufficient headroom to spawn wire tasks, aborting program activation")
		i.buffer = nil
		return
	}

	i.target.Engine.Rebuild(i.ctx, doc.Wires)
	i.buffer = nil
}

// hasHeadroom is the idiomatic Go stand-in for the source's free-heap
// guard (§4.D.f): it checks runtime.MemStats rather than a bump
// allocator's free-list, since Go's heap has no such direct accounting.
func hasHeadroom(wireCount int) bool {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	need := uint64(wireCount)*(taskOverheadBytes+perWireSlackBytes) + guardFloorBytes
	var free uint64
	if ms.Sys > ms.HeapInuse {
		free = ms.Sys - ms.HeapInuse
	}
	return free >= need
}
