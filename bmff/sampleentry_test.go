package bmff

import (
	"bytes"
	"testing"
)

func TestVisualSampleEntryRoundTrip(t *testing.T) {
	codecConfig := []byte{0x01, 0x42, 0xC0, 0x1E}
	w := NewWriter(make([]byte, 0, 128))
	w.WriteVisualSampleEntry(TypeAvc1, 1280, 720, codecConfig)
	buf := w.Bytes()

	entry, err := ReadVisualSampleEntry(buf)
	if err != nil {
		t.Fatalf("ReadVisualSampleEntry: %v", err)
	}
	if entry.Width != 1280 || entry.Height != 720 {
		t.Fatalf("unexpected dims: %+v", entry)
	}
	if !bytes.Equal(entry.CodecConfig, codecConfig) {
		t.Fatalf("CodecConfig = %v, want %v", entry.CodecConfig, codecConfig)
	}
}

func TestAudioSampleEntryRoundTrip(t *testing.T) {
	codecConfig := []byte{0xAA, 0xBB}
	w := NewWriter(make([]byte, 0, 128))
	w.WriteAudioSampleEntry(TypeMp4a, 2, 16, 48000, codecConfig)
	buf := w.Bytes()

	entry, err := ReadAudioSampleEntry(buf)
	if err != nil {
		t.Fatalf("ReadAudioSampleEntry: %v", err)
	}
	if entry.ChannelCount != 2 || entry.SampleRate != 48000 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if !bytes.Equal(entry.CodecConfig, codecConfig) {
		t.Fatalf("CodecConfig = %v, want %v", entry.CodecConfig, codecConfig)
	}
}

func TestReadStsdEntryDispatchesByFamily(t *testing.T) {
	w := NewWriter(make([]byte, 0, 128))
	w.WriteVisualSampleEntry(TypeHev1, 640, 360, nil)
	visual := w.Bytes()

	decoded, err := ReadStsdEntry(visual)
	if err != nil {
		t.Fatalf("ReadStsdEntry: %v", err)
	}
	if _, ok := decoded.(VisualSampleEntry); !ok {
		t.Fatalf("expected VisualSampleEntry, got %T", decoded)
	}

	w2 := NewWriter(make([]byte, 0, 32))
	w2.WriteGenericSampleEntry(BoxType{'t', 'x', '3', 'g'}, []byte{1})
	generic := w2.Bytes()

	decoded2, err := ReadStsdEntry(generic)
	if err != nil {
		t.Fatalf("ReadStsdEntry: %v", err)
	}
	if _, ok := decoded2.(GenericSampleEntry); !ok {
		t.Fatalf("expected GenericSampleEntry, got %T", decoded2)
	}
}
