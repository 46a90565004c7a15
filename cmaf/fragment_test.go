package cmaf_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tetsuo/moq/bmff"
	"github.com/tetsuo/moq/cmaf"
)

func minimalVideoFragment(t *testing.T) (cmaf.Fragment, []byte) {
	t.Helper()
	payload := bytes.Repeat([]byte{0x00, 0x01, 0xFE, 0xFF}, 256) // 1024 bytes
	frag := cmaf.Fragment{
		Styp: bmff.FtypBox{
			MajorBrand:       bmff.BoxType{'c', 'm', 'f', '2'},
			CompatibleBrands: []bmff.BoxType{{'c', 'm', 'f', 'c'}, {'i', 's', 'o', '6'}},
		},
		Moof: cmaf.MoofBox{
			SequenceNumber: 42,
			Trafs: []cmaf.TrafBox{{
				TrackID:             1,
				TfhdFlags:           0,
				HasTfdt:             true,
				BaseMediaDecodeTime: 42000,
			}},
		},
		Mdat: payload,
	}
	return frag, payload
}

func TestMinimalVideoFragmentScenario(t *testing.T) {
	frag, payload := minimalVideoFragment(t)
	buf := cmaf.EncodeFragment(frag)

	got, err := cmaf.DecodeFragment(buf)
	if err != nil {
		t.Fatalf("DecodeFragment: %v", err)
	}
	if got.SequenceNumber() != 42 {
		t.Errorf("SequenceNumber() = %d, want 42", got.SequenceNumber())
	}
	if got.BaseMediaDecodeTime() != 42000 {
		t.Errorf("BaseMediaDecodeTime() = %d, want 42000", got.BaseMediaDecodeTime())
	}
	if len(got.Mdat) != len(payload) {
		t.Errorf("Mdat len = %d, want %d", len(got.Mdat), len(payload))
	}
}

func TestEncodeFragmentLengthInvariant(t *testing.T) {
	frag, _ := minimalVideoFragment(t)
	buf := cmaf.EncodeFragment(frag)

	r := bmff.NewReader(buf)
	var sizes uint64
	for r.Next() {
		sizes += r.Size()
	}
	if err := r.Err(); err != nil {
		t.Fatalf("walking encoded fragment: %v", err)
	}
	if uint64(len(buf)) != sizes {
		t.Fatalf("encoded length = %d, want sum of box sizes %d", len(buf), sizes)
	}
}

func TestFragmentRoundTripIsByteStable(t *testing.T) {
	frag, _ := minimalVideoFragment(t)
	buf1 := cmaf.EncodeFragment(frag)

	decoded, err := cmaf.DecodeFragment(buf1)
	if err != nil {
		t.Fatalf("DecodeFragment: %v", err)
	}
	buf2 := cmaf.EncodeFragment(decoded)

	if diff := cmp.Diff(buf1, buf2); diff != "" {
		t.Fatalf("re-encoded fragment differs (-want +got):\n%s", diff)
	}
}

func TestValidateFragmentRejectsEmptyTraf(t *testing.T) {
	frag, _ := minimalVideoFragment(t)
	frag.Moof.Trafs = nil

	ok, reason := cmaf.ValidateFragment(frag)
	if ok {
		t.Fatal("expected validation to fail for an empty traf list")
	}
	if reason == "" {
		t.Fatal("expected a structured reason")
	}
}

func TestDecodeFragmentMissingMdatIsInvariantViolation(t *testing.T) {
	w := bmff.NewWriter(make([]byte, 0, 64))
	w.WriteStyp(bmff.BoxType{'c', 'm', 'f', '2'}, 0, nil)
	w.StartBox(bmff.TypeMoof)
	w.WriteMfhd(1)
	w.StartBox(bmff.TypeTraf)
	w.WriteTfhd(0, 1, bmff.TfhdFields{})
	w.EndBox()
	w.EndBox()
	buf := w.Bytes()

	_, err := cmaf.DecodeFragment(buf)
	if err == nil {
		t.Fatal("expected an error for a fragment missing mdat")
	}
	bErr, ok := err.(*bmff.Error)
	if !ok || bErr.Kind != bmff.InvariantViolation {
		t.Fatalf("expected InvariantViolation, got %v", err)
	}
}

func TestDecodeFragmentEmptyMdatRoundTrips(t *testing.T) {
	frag, _ := minimalVideoFragment(t)
	frag.Mdat = []byte{}
	buf := cmaf.EncodeFragment(frag)

	got, err := cmaf.DecodeFragment(buf)
	if err != nil {
		t.Fatalf("DecodeFragment: %v", err)
	}
	if len(got.Mdat) != 0 {
		t.Fatalf("Mdat len = %d, want 0", len(got.Mdat))
	}
}
