package bmff

import "testing"

func TestSampleFlagsKeyFrame(t *testing.T) {
	f := NewSampleFlags(0, 2 /* depends on none */, 0, 0, 0, false, 0)
	if uint32(f) != 0x02000000 {
		t.Fatalf("raw word = %#x, want %#x", uint32(f), 0x02000000)
	}
	if !f.IsSync() {
		t.Error("expected IsSync")
	}
	if !f.IsIndependent() {
		t.Error("expected IsIndependent")
	}
	if f.IsDependedUpon() {
		t.Error("expected !IsDependedUpon")
	}
}

func TestSampleFlagsRoundTripBits(t *testing.T) {
	f := NewSampleFlags(1, 1, 1, 2, 3, true, 500)
	got := SampleFlags(uint32(f))
	if got != f {
		t.Fatalf("SampleFlags round trip: got %#x, want %#x", uint32(got), uint32(f))
	}
}

func TestTrunGOPRoundTrip(t *testing.T) {
	const flags = TrunDataOffsetPresent | TrunSampleDurationPresent | TrunSampleSizePresent | TrunSampleFlagsPresent
	if flags != 0x000701 {
		t.Fatalf("flags constant mismatch: %#x", flags)
	}

	sync := NewSampleFlags(0, 2, 1, 0, 0, false, 0)
	dependedUpon := NewSampleFlags(0, 1, 1, 0, 0, true, 0)
	nonSync := NewSampleFlags(0, 1, 0, 0, 0, true, 0)

	samples := []TrunSample{
		{Duration: 3000, Size: 50000, Flags: sync},
		{Duration: 3000, Size: 5000, Flags: nonSync},
		{Duration: 3000, Size: 5000, Flags: nonSync},
		{Duration: 3000, Size: 10000, Flags: dependedUpon},
		{Duration: 3000, Size: 10000, Flags: dependedUpon},
	}

	w := NewWriter(make([]byte, 0, 256))
	w.WriteTrun(0, flags, 64, 0, samples)
	buf := w.Bytes()

	r := NewReader(buf)
	if !r.Next() || r.Type() != TypeTrun {
		t.Fatal("expected a trun box")
	}
	it, err := NewTrunIter(r.Data(), r.Flags(), r.Version())
	if err != nil {
		t.Fatalf("NewTrunIter: %v", err)
	}
	if off, ok := it.DataOffset(); !ok || off != 64 {
		t.Fatalf("DataOffset = %d,%v want 64,true", off, ok)
	}

	var decoded []TrunSample
	for {
		s, ok := it.Next()
		if !ok {
			break
		}
		decoded = append(decoded, s)
	}
	if len(decoded) != 5 {
		t.Fatalf("decoded %d samples, want 5", len(decoded))
	}
	if !decoded[0].Flags.IsSync() || !decoded[0].Flags.IsIndependent() {
		t.Error("first sample should be sync and independent")
	}
	if !decoded[3].Flags.IsDependedUpon() || !decoded[4].Flags.IsDependedUpon() {
		t.Error("last two samples should be depended upon")
	}
	for i, s := range decoded {
		if s.Size != samples[i].Size {
			t.Errorf("sample %d size = %d, want %d", i, s.Size, samples[i].Size)
		}
	}
}

func TestTfhdOptionalFieldsOnlyPresentWhenFlagged(t *testing.T) {
	w := NewWriter(make([]byte, 0, 64))
	w.WriteTfhd(TfhdDefaultSampleDurationPresent, 1, TfhdFields{DefaultSampleDuration: 1024})
	buf := w.Bytes()

	r := NewReader(buf)
	if !r.Next() || r.Type() != TypeTfhd {
		t.Fatal("expected tfhd")
	}
	trackID, fields, err := r.ReadTfhd()
	if err != nil {
		t.Fatalf("ReadTfhd: %v", err)
	}
	if trackID != 1 {
		t.Fatalf("trackID = %d, want 1", trackID)
	}
	if fields.DefaultSampleDuration != 1024 {
		t.Fatalf("DefaultSampleDuration = %d, want 1024", fields.DefaultSampleDuration)
	}
	if fields.DefaultSampleSize != 0 {
		t.Fatalf("DefaultSampleSize should be zero-value, an unset field")
	}
}

func TestTfdtAlwaysEncodesVersion1ButDecodesBoth(t *testing.T) {
	w := NewWriter(make([]byte, 0, 32))
	w.WriteTfdt(1 << 40)
	buf := w.Bytes()

	r := NewReader(buf)
	if !r.Next() || r.Type() != TypeTfdt {
		t.Fatal("expected tfdt")
	}
	if r.Version() != 1 {
		t.Fatalf("version = %d, want 1 (encoder always emits v1)", r.Version())
	}
	got, err := r.ReadTfdt()
	if err != nil {
		t.Fatalf("ReadTfdt: %v", err)
	}
	if got != 1<<40 {
		t.Fatalf("baseMediaDecodeTime = %d, want %d", got, uint64(1)<<40)
	}

	// A version-0 tfdt carries a 32-bit base_media_decode_time (here 1000).
	v0 := []byte{0, 0, 0, 16, 't', 'f', 'd', 't', 0, 0, 0, 0, 0, 0, 0x03, 0xE8}
	r0 := NewReader(v0)
	if !r0.Next() || r0.Type() != TypeTfdt {
		t.Fatal("expected version-0 tfdt")
	}
	if r0.Version() != 0 {
		t.Fatalf("version = %d, want 0", r0.Version())
	}
	got0, err := r0.ReadTfdt()
	if err != nil {
		t.Fatalf("ReadTfdt v0: %v", err)
	}
	if got0 != 1000 {
		t.Fatalf("v0 baseMediaDecodeTime = %d, want 1000", got0)
	}
}

func TestTrunVersion1NegativeCompositionOffset(t *testing.T) {
	samples := []TrunSample{{CompositionTimeOffset: -500}}
	w := NewWriter(make([]byte, 0, 32))
	w.WriteTrun(1, TrunSampleCompositionTimeOffsetPresent, 0, 0, samples)
	buf := w.Bytes()

	r := NewReader(buf)
	if !r.Next() || r.Type() != TypeTrun {
		t.Fatal("expected trun")
	}
	it, err := NewTrunIter(r.Data(), r.Flags(), r.Version())
	if err != nil {
		t.Fatalf("NewTrunIter: %v", err)
	}
	s, ok := it.Next()
	if !ok {
		t.Fatal("expected one sample")
	}
	if s.CompositionTimeOffset != -500 {
		t.Fatalf("CompositionTimeOffset = %d, want -500", s.CompositionTimeOffset)
	}
}
