package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestDecodePayloadParsesJSON(t *testing.T) {
	got := decodePayload([]byte(`{"a":1}`))
	m, ok := got.(map[string]any)
	if !ok || m["a"] != 1.0 {
		t.Fatalf("expected a decoded JSON object, got %#v", got)
	}
}

func TestDecodePayloadFallsBackToPlainString(t *testing.T) {
	got := decodePayload([]byte("Connect"))
	if got != "Connect" {
		t.Fatalf("expected a non-JSON payload to decode as its raw string, got %#v", got)
	}
}

func TestEncodePayloadString(t *testing.T) {
	if got := string(encodePayload("Present")); got != "Present" {
		t.Fatalf("expected a string payload to encode verbatim, got %q", got)
	}
}

func TestEncodePayloadBytesPassThrough(t *testing.T) {
	raw := []byte{1, 2, 3}
	got := encodePayload(raw)
	if string(got) != string(raw) {
		t.Fatalf("expected a []byte payload to pass through unchanged, got %v", got)
	}
}

func TestEncodePayloadRawMessagePassThrough(t *testing.T) {
	raw := json.RawMessage(`{"x":1}`)
	got := encodePayload(raw)
	if string(got) != string(raw) {
		t.Fatalf("expected a json.RawMessage payload to pass through unchanged, got %q", got)
	}
}

func TestEncodePayloadMarshalsOtherTypes(t *testing.T) {
	got := encodePayload(map[string]any{"a": 1.0})
	var v map[string]any
	if err := json.Unmarshal(got, &v); err != nil {
		t.Fatalf("expected a marshaled JSON object, got %q: %v", got, err)
	}
	if v["a"] != 1.0 {
		t.Fatalf("expected a=1, got %+v", v)
	}
}

func TestBackoffSeqDoublesUntilCap(t *testing.T) {
	next := backoffSeq(100*time.Millisecond, 500*time.Millisecond)
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond}
	for i, w := range want {
		if got := next(); got != w {
			t.Fatalf("step %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestSleepReturnsTrueOnElapsedDuration(t *testing.T) {
	if !sleep(context.Background(), time.Millisecond) {
		t.Fatal("expected sleep to return true once the duration elapses")
	}
}

func TestSleepReturnsFalseOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleep(ctx, time.Second) {
		t.Fatal("expected sleep to return false immediately on a cancelled context")
	}
}
