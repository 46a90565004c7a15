package loc_test

import (
	"bytes"
	"testing"

	"github.com/tetsuo/moq/loc"
)

func TestLocIndependentVideoFrameScenario(t *testing.T) {
	payload := make([]byte, 8192)
	for i := range payload {
		payload[i] = byte(i)
	}
	obj := loc.LocObject{
		Kind:    loc.MediaVideo,
		Payload: payload,
		Extensions: []loc.HeaderExtension{
			loc.CaptureTimestamp{Microseconds: 1_234_567_890_000},
			loc.VideoFrameMarking{Independent: true, Discardable: false, BaseLayerSync: true, TemporalLayerID: 0, SpatialLayerID: 0},
			loc.VideoConfig{Bytes: []byte{0x01, 0x42, 0xC0, 0x1E}},
		},
	}

	headers, payloadOut, err := loc.EncodeLocSplit(obj)
	if err != nil {
		t.Fatalf("EncodeLocSplit: %v", err)
	}
	got, err := loc.DecodeLocSplit(loc.MediaVideo, headers, payloadOut)
	if err != nil {
		t.Fatalf("DecodeLocSplit: %v", err)
	}

	if !got.IsIndependentFrame() {
		t.Error("expected IsIndependentFrame() == true")
	}
	vc, ok := got.HasExtension(13)
	if !ok {
		t.Fatal("expected a VideoConfig extension")
	}
	cfg, ok := vc.(loc.VideoConfig)
	if !ok {
		t.Fatalf("expected VideoConfig, got %T", vc)
	}
	if !bytes.Equal(cfg.Bytes, []byte{0x01, 0x42, 0xC0, 0x1E}) {
		t.Fatalf("VideoConfig.Bytes = %v", cfg.Bytes)
	}
	if !bytes.Equal(got.Payload, payload) {
		t.Fatal("payload did not round trip byte-for-byte")
	}
}

func TestLocAudioLevelExactBytes(t *testing.T) {
	ext := loc.AudioLevel{VoiceActivity: true, Level: 45}
	buf, err := loc.EncodeHeaders([]loc.HeaderExtension{ext})
	if err != nil {
		t.Fatalf("EncodeHeaders: %v", err)
	}

	want := []byte{0x06, 0x5B}
	if !bytes.Equal(buf, want) {
		t.Fatalf("encoded bytes = %v, want %v", buf, want)
	}

	decoded, _, err := loc.DecodeHeaders(buf)
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("got %d extensions, want 1", len(decoded))
	}
	al, ok := decoded[0].(loc.AudioLevel)
	if !ok {
		t.Fatalf("expected AudioLevel, got %T", decoded[0])
	}
	if !al.VoiceActivity || al.Level != 45 {
		t.Fatalf("unexpected AudioLevel: %+v", al)
	}
}

func TestLocConcatenatedRoundTrip(t *testing.T) {
	obj := loc.LocObject{
		Kind:    loc.MediaAudio,
		Payload: []byte{1, 2, 3},
		Extensions: []loc.HeaderExtension{
			loc.AudioLevel{VoiceActivity: false, Level: 10},
		},
	}
	headers, _, err := loc.EncodeLocSplit(obj)
	if err != nil {
		t.Fatalf("EncodeLocSplit: %v", err)
	}
	concat, err := loc.EncodeLocConcat(obj)
	if err != nil {
		t.Fatalf("EncodeLocConcat: %v", err)
	}

	got, err := loc.DecodeLocConcat(loc.MediaAudio, concat, len(headers))
	if err != nil {
		t.Fatalf("DecodeLocConcat: %v", err)
	}
	if !bytes.Equal(got.Payload, obj.Payload) {
		t.Fatalf("Payload = %v, want %v", got.Payload, obj.Payload)
	}
}

func TestLocUnknownEvenExtensionPreservesSingleVarint(t *testing.T) {
	buf := []byte{0x08, 0x2A} // ID 8 (unknown, even), value 42
	decoded, warnings, err := loc.DecodeHeaders(buf)
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	u, ok := decoded[0].(loc.Unknown)
	if !ok {
		t.Fatalf("expected Unknown, got %T", decoded[0])
	}
	if u.IDValue != 8 || u.Varint != 42 {
		t.Fatalf("unexpected Unknown: %+v", u)
	}
}

func TestLocUnknownOddExtensionPreservesBytes(t *testing.T) {
	buf, err := loc.EncodeHeaders([]loc.HeaderExtension{
		loc.Unknown{IDValue: 99, Odd: true, RawBytes: []byte{0xAA, 0xBB, 0xCC}},
	})
	if err != nil {
		t.Fatalf("EncodeHeaders: %v", err)
	}
	decoded, warnings, err := loc.DecodeHeaders(buf)
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	u, ok := decoded[0].(loc.Unknown)
	if !ok || !bytes.Equal(u.RawBytes, []byte{0xAA, 0xBB, 0xCC}) {
		t.Fatalf("unexpected Unknown: %+v", decoded[0])
	}
}

func TestLocEmptyHeaderBlock(t *testing.T) {
	decoded, warnings, err := loc.DecodeHeaders(nil)
	if err != nil {
		t.Fatalf("DecodeHeaders: %v", err)
	}
	if len(decoded) != 0 || len(warnings) != 0 {
		t.Fatalf("expected no extensions or warnings, got %d/%d", len(decoded), len(warnings))
	}
}
