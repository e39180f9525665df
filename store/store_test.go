package store

import "testing"

import "laddercore/configdoc"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(NopDriver{}, nil)
}

func TestLoadAllOrNothing(t *testing.T) {
	s := newTestStore(t)

	good := []configdoc.Variable{{Name: "a", Kind: configdoc.KindBoolean}}
	if err := s.Load(good); err != nil {
		t.Fatalf("unexpected error loading valid variables: %v", err)
	}

	dup := []configdoc.Variable{
		{Name: "b", Kind: configdoc.KindNumber},
		{Name: "b", Kind: configdoc.KindNumber},
	}
	if err := s.Load(dup); err == nil {
		t.Fatal("expected an error for duplicate variable names")
	}

	// A rejected Load must not disturb the previously loaded program.
	if _, ok := s.Find("a"); !ok {
		t.Fatal("previous program was discarded after a failed Load")
	}
	if _, ok := s.Find("b"); ok {
		t.Fatal("rejected Load's variables leaked into the store")
	}
}

func TestBooleanReadWrite(t *testing.T) {
	s := newTestStore(t)
	if err := s.Load([]configdoc.Variable{{Name: "flag", Kind: configdoc.KindBoolean}}); err != nil {
		t.Fatal(err)
	}
	s.WriteBool("flag", true)
	if !s.ReadBool("flag") {
		t.Fatal("expected flag to read back true")
	}
}

func TestCounterDottedSuffixes(t *testing.T) {
	s := newTestStore(t)
	if err := s.Load([]configdoc.Variable{{Name: "c1", Kind: configdoc.KindCounter, PV: 3}}); err != nil {
		t.Fatal(err)
	}
	s.WriteNum("c1.CV", 3)
	if !s.ReadBool("c1.QU") {
		t.Fatal("expected QU set once CV reaches PV")
	}
	if s.ReadBool("c1.QD") {
		t.Fatal("QD should not be set while CV > 0")
	}
}

func TestUnknownVariableReadsAreSilentlyFalse(t *testing.T) {
	s := newTestStore(t)
	if s.ReadBool("nope") {
		t.Fatal("expected false for an unknown boolean read")
	}
	if s.ReadNum("nope") != 0 {
		t.Fatal("expected 0 for an unknown numeric read")
	}
}

func TestDigitalIOAnalogWriteClamps(t *testing.T) {
	s := newTestStore(t)
	fake := &clampingDriver{}
	s.SetDriver(fake)
	if err := s.Load([]configdoc.Variable{{Name: "dac", Kind: configdoc.KindDigitalIO, PinName: "p1", Dir: DirOutput, IsAnalog: true}}); err != nil {
		t.Fatal(err)
	}
	s.WriteNum("dac", 1000)
	if fake.last != 255 {
		t.Fatalf("expected analog write to clamp to 255, got %d", fake.last)
	}
	s.WriteNum("dac", -10)
	if fake.last != 0 {
		t.Fatalf("expected analog write to clamp to 0, got %d", fake.last)
	}
}

type clampingDriver struct {
	NopDriver
	last uint8
}

func (d *clampingDriver) WriteAnalog(pin string, v uint8) error {
	d.last = v
	return nil
}
