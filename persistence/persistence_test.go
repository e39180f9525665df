package persistence

import (
	"bytes"
	"testing"
)

func TestLoadConfigMissingReturnsNotOk(t *testing.T) {
	s := New(t.TempDir())
	raw, ok, err := s.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || raw != nil {
		t.Fatalf("expected no config on a fresh store, got ok=%v raw=%v", ok, raw)
	}
}

func TestSaveAndLoadConfigRoundTrips(t *testing.T) {
	s := New(t.TempDir())
	want := []byte(`{"Device":{"device_name":"rig"}}`)
	if err := s.SaveConfig(want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, ok, err := s.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true after SaveConfig")
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected round-tripped bytes to match, got %q want %q", got, want)
	}
}

func TestSaveConfigOverwritesPrior(t *testing.T) {
	s := New(t.TempDir())
	if err := s.SaveConfig([]byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveConfig([]byte("second")); err != nil {
		t.Fatal(err)
	}
	got, _, err := s.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("expected the later save to win, got %q", got)
	}
}

func TestDeleteConfigRemovesBlob(t *testing.T) {
	s := New(t.TempDir())
	if err := s.SaveConfig([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteConfig(); err != nil {
		t.Fatalf("DeleteConfig: %v", err)
	}
	_, ok, err := s.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no config after DeleteConfig")
	}
}

func TestDeleteConfigOnEmptyStoreIsNotAnError(t *testing.T) {
	s := New(t.TempDir())
	if err := s.DeleteConfig(); err != nil {
		t.Fatalf("expected deleting an absent config to be a no-op, got %v", err)
	}
}
