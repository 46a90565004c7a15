package bmff

import "testing"

func TestFtypRoundTrip(t *testing.T) {
	major := BoxType{'c', 'm', 'f', '2'}
	compat := []BoxType{{'c', 'm', 'f', 'c'}, {'i', 's', 'o', '6'}}

	w := NewWriter(make([]byte, 0, 32))
	w.WriteStyp(major, 0, compat)
	buf := w.Bytes()

	r := NewReader(buf)
	if !r.Next() || r.Type() != TypeStyp {
		t.Fatal("expected styp")
	}
	got, err := r.ReadFtyp()
	if err != nil {
		t.Fatalf("ReadFtyp: %v", err)
	}
	if got.MajorBrand != major {
		t.Fatalf("MajorBrand = %s, want %s", got.MajorBrand, major)
	}
	if len(got.CompatibleBrands) != 2 || got.CompatibleBrands[1] != compat[1] {
		t.Fatalf("CompatibleBrands = %v", got.CompatibleBrands)
	}
}

func TestLanguagePackUnpackRoundTrip(t *testing.T) {
	lang := [3]byte{'e', 'n', 'g'}
	got := unpackLanguage(packLanguage(lang))
	if got != lang {
		t.Fatalf("language round trip = %s, want %s", got, lang)
	}
}

func TestMdhdRoundTrip(t *testing.T) {
	w := NewWriter(make([]byte, 0, 32))
	w.WriteMdhd(90000, 180000, [3]byte{'e', 'n', 'g'})
	buf := w.Bytes()

	r := NewReader(buf)
	if !r.Next() || r.Type() != TypeMdhd {
		t.Fatal("expected mdhd")
	}
	got, err := r.ReadMdhd()
	if err != nil {
		t.Fatalf("ReadMdhd: %v", err)
	}
	if got.Timescale != 90000 || got.Duration != 180000 || got.Language != [3]byte{'e', 'n', 'g'} {
		t.Fatalf("unexpected mdhd: %+v", got)
	}
}

func TestHdlrRoundTrip(t *testing.T) {
	w := NewWriter(make([]byte, 0, 32))
	w.WriteHdlr(BoxType{'v', 'i', 'd', 'e'}, "VideoHandler")
	buf := w.Bytes()

	r := NewReader(buf)
	if !r.Next() || r.Type() != TypeHdlr {
		t.Fatal("expected hdlr")
	}
	got, err := r.ReadHdlr()
	if err != nil {
		t.Fatalf("ReadHdlr: %v", err)
	}
	if got.HandlerType != (BoxType{'v', 'i', 'd', 'e'}) || got.Name != "VideoHandler" {
		t.Fatalf("unexpected hdlr: %+v", got)
	}
}

func TestMdatEmptyPayloadRoundTrip(t *testing.T) {
	w := NewWriter(make([]byte, 0, 16))
	w.WriteMdat([]byte{})
	buf := w.Bytes()

	r := NewReader(buf)
	if !r.Next() || r.Type() != TypeMdat {
		t.Fatal("expected mdat")
	}
	if got := r.ReadMdat(); len(got) != 0 {
		t.Fatalf("empty mdat round trip, got %d bytes", len(got))
	}
}

func TestMdatLargePayloadRoundTrip(t *testing.T) {
	payload := make([]byte, 1<<20)
	for i := range payload {
		payload[i] = byte(i)
	}
	w := NewWriter(make([]byte, 0, len(payload)+16))
	w.WriteMdat(payload)
	buf := w.Bytes()

	r := NewReader(buf)
	if !r.Next() || r.Type() != TypeMdat {
		t.Fatal("expected mdat")
	}
	got := r.ReadMdat()
	if len(got) != len(payload) {
		t.Fatalf("len = %d, want %d", len(got), len(payload))
	}
	for i := range got {
		if got[i] != payload[i] {
			t.Fatalf("byte %d mismatch", i)
		}
	}
}
