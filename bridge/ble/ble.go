// Package ble implements the BLE GATT bridge (§6.4): one service with
// four characteristics for chunked configuration write, configuration
// read, monitor read, and one-wire read.
package ble

import (
	"context"
	"fmt"

	"laddercore/bus"
)

// ServiceUUID and characteristic UUIDs (§6.4).
const (
	ServiceUUID            = 0x1234
	CharReadConfiguration  = 0xFFF1
	CharWriteConfiguration = 0xFFF2
	CharReadMonitor        = 0xFFF3
	CharReadOneWire        = 0xFFF4
)

// Adapter is the boundary to a real BLE GATT stack. A production build
// wires this to tinygo.org/x/bluetooth (or the board's vendor stack);
// tests use a host-side Fake.
type Adapter interface {
	// SetDeviceName sets the advertised name, e.g. "ESP_A1B2C3".
	SetDeviceName(name string) error
	// OnWrite registers onWrite to run whenever the write-config
	// characteristic receives a chunk.
	OnWrite(onWrite func(chunk []byte)) error
	// Advertise starts advertising the service until ctx is cancelled.
	Advertise(ctx context.Context) error
}

// ChunkedReader produces the bytes behind a long-read characteristic,
// split into MTU-3-sized chunks, as required by §6.4 ("Long reads are
// chunked ... an empty response terminates a multi-read transfer").
type ChunkedReader struct {
	mtu int
}

// NewChunkedReader builds a reader chunking into mtu-3 byte pieces.
func NewChunkedReader(mtu int) *ChunkedReader {
	if mtu < 4 {
		mtu = 23 // BLE's default ATT MTU
	}
	return &ChunkedReader{mtu: mtu}
}

// Chunks splits data into MTU-3 byte pieces, with a trailing empty
// chunk signaling end-of-transfer.
func (r *ChunkedReader) Chunks(data []byte) [][]byte {
	size := r.mtu - 3
	var out [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		out = append(out, data[:n])
		data = data[n:]
	}
	out = append(out, nil)
	return out
}

// DeviceName derives "ESP_XXYYZZ" from the first three MAC bytes (§6.4).
func DeviceName(macBytes [3]byte) string {
	return fmt.Sprintf("ESP_%02X%02X%02X", macBytes[0], macBytes[1], macBytes[2])
}

// Bridge wires an Adapter's write-configuration characteristic to
// onChunk: writes arrive as config-document chunks. It does not serve
// the three read characteristics; conn and selfMAC are stored but not
// used by Run.
type Bridge struct {
	adapter Adapter
	conn    *bus.Connection
	selfMAC string

	onChunk func(chunk []byte)
}

// New constructs a BLE bridge. onChunk is invoked for every chunk
// received on the write-configuration characteristic (normally
// ingest.Ingestor.Chunk).
func New(adapter Adapter, conn *bus.Connection, selfMAC string, onChunk func(chunk []byte)) *Bridge {
	return &Bridge{adapter: adapter, conn: conn, selfMAC: selfMAC, onChunk: onChunk}
}

// Run configures the adapter's callbacks and advertises until ctx is
// cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.adapter.OnWrite(func(chunk []byte) {
		if b.onChunk != nil {
			b.onChunk(chunk)
		}
	}); err != nil {
		return err
	}
	return b.adapter.Advertise(ctx)
}

// FakeAdapter is an in-process Adapter for host tests: writes loop back
// through onWrite synchronously, and reads are served from whatever was
// last set via SetConfig/SetMonitor/SetOneWire.
type FakeAdapter struct {
	name    string
	onWrite func([]byte)

	config  []byte
	monitor []byte
	onewire []byte
}

func NewFakeAdapter() *FakeAdapter { return &FakeAdapter{} }

func (f *FakeAdapter) SetDeviceName(name string) error { f.name = name; return nil }

func (f *FakeAdapter) OnWrite(onWrite func(chunk []byte)) error {
	f.onWrite = onWrite
	return nil
}

func (f *FakeAdapter) Advertise(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// DeliverWrite simulates a central writing a chunk to 0xFFF2.
func (f *FakeAdapter) DeliverWrite(chunk []byte) {
	if f.onWrite != nil {
		f.onWrite(chunk)
	}
}

func (f *FakeAdapter) SetConfig(raw []byte)  { f.config = append([]byte(nil), raw...) }
func (f *FakeAdapter) SetMonitor(raw []byte) { f.monitor = append([]byte(nil), raw...) }
func (f *FakeAdapter) SetOneWire(raw []byte) { f.onewire = append([]byte(nil), raw...) }

// ReadConfig, ReadMonitor, and ReadOneWire simulate a central reading
// 0xFFF1/0xFFF3/0xFFF4 in MTU-sized chunks via a ChunkedReader.
func (f *FakeAdapter) ReadConfig(mtu int) [][]byte  { return NewChunkedReader(mtu).Chunks(f.config) }
func (f *FakeAdapter) ReadMonitor(mtu int) [][]byte { return NewChunkedReader(mtu).Chunks(f.monitor) }
func (f *FakeAdapter) ReadOneWire(mtu int) [][]byte { return NewChunkedReader(mtu).Chunks(f.onewire) }
