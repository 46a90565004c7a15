// Package cmaf implements the fragment- and initialization-segment-level
// codec: assembling/decoding the styp+moof+mdat triad and the ftyp+moov
// hierarchy out of the box-level primitives in bmff, plus the validator
// and multi-fragment stream splitter built on top of them.
package cmaf

import "github.com/tetsuo/moq/bmff"

// Fragment is a decoded styp+moof+mdat triad (§3 of the source spec).
type Fragment struct {
	Styp bmff.FtypBox
	Moof MoofBox
	Mdat []byte // borrows the decode buffer; copy if retained past its lifetime

	Warnings []bmff.Warning
}

// MoofBox is a decoded moof: exactly one mfhd, at least one traf.
type MoofBox struct {
	SequenceNumber uint32
	Trafs          []TrafBox
}

// TrafBox is a decoded traf: one tfhd, at most one tfdt, zero or more trun.
type TrafBox struct {
	TrackID             uint32
	Tfhd                bmff.TfhdFields
	TfhdFlags           uint32
	HasTfdt             bool
	BaseMediaDecodeTime uint64
	Truns               []TrunBox
}

// TrunBox is a decoded trun.
type TrunBox struct {
	Version          uint8
	Flags            uint32
	DataOffset       int32
	HasDataOffset    bool
	FirstSampleFlags bmff.SampleFlags
	HasFirstSampleFlags bool
	Samples          []bmff.TrunSample
}

// SequenceNumber is the derived accessor mfhd.sequence_number.
func (f Fragment) SequenceNumber() uint32 { return f.Moof.SequenceNumber }

// BaseMediaDecodeTime is the derived accessor trafs[0].tfdt.base_media_decode_time,
// or -1 if the first traf has no tfdt.
func (f Fragment) BaseMediaDecodeTime() int64 {
	if len(f.Moof.Trafs) == 0 || !f.Moof.Trafs[0].HasTfdt {
		return -1
	}
	return int64(f.Moof.Trafs[0].BaseMediaDecodeTime)
}

// DecodeFragment box-walks buf, requiring exactly one each of styp, moof,
// mdat at the top level. The order of the three is not checked, here or by
// ValidateFragment. Unknown top-level boxes are skipped and recorded as
// warnings.
func DecodeFragment(buf []byte) (Fragment, error) {
	var frag Fragment
	var haveStyp, haveMoof, haveMdat bool

	r := bmff.NewReader(buf)
	for r.Next() {
		switch r.Type() {
		case bmff.TypeStyp:
			if haveStyp {
				return Fragment{}, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "fragment has more than one styp"}
			}
			styp, err := r.ReadFtyp()
			if err != nil {
				return Fragment{}, err
			}
			frag.Styp = styp
			haveStyp = true

		case bmff.TypeMoof:
			if haveMoof {
				return Fragment{}, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "fragment has more than one moof"}
			}
			moof, warnings, err := decodeMoof(&r)
			if err != nil {
				return Fragment{}, err
			}
			frag.Moof = moof
			frag.Warnings = append(frag.Warnings, warnings...)
			haveMoof = true

		case bmff.TypeMdat:
			if haveMdat {
				return Fragment{}, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "fragment has more than one mdat"}
			}
			frag.Mdat = r.ReadMdat()
			haveMdat = true

		default:
			frag.Warnings = append(frag.Warnings, bmff.Warning{Type: r.Type(), Msg: "unrecognised top-level box, skipped"})
		}
	}
	if err := r.Err(); err != nil {
		return Fragment{}, err
	}
	if !haveStyp || !haveMoof || !haveMdat {
		return Fragment{}, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "fragment missing styp, moof, or mdat"}
	}
	return frag, nil
}

func decodeMoof(r *bmff.Reader) (MoofBox, []bmff.Warning, error) {
	var moof MoofBox
	var haveMfhd bool

	warnings := r.CollectUnknownChildren(bmff.MoofChildOrder)

	r.Enter()
	defer r.Exit()
	for r.Next() {
		switch r.Type() {
		case bmff.TypeMfhd:
			seq, err := r.ReadMfhd()
			if err != nil {
				return MoofBox{}, nil, err
			}
			moof.SequenceNumber = seq
			haveMfhd = true

		case bmff.TypeTraf:
			traf, tw, err := decodeTraf(r)
			if err != nil {
				return MoofBox{}, nil, err
			}
			moof.Trafs = append(moof.Trafs, traf)
			warnings = append(warnings, tw...)
		}
	}
	if !haveMfhd {
		return MoofBox{}, nil, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "moof missing mfhd"}
	}
	return moof, warnings, nil
}

func decodeTraf(r *bmff.Reader) (TrafBox, []bmff.Warning, error) {
	var traf TrafBox
	var haveTfhd bool

	warnings := r.CollectUnknownChildren(bmff.TrafChildOrder)

	r.Enter()
	defer r.Exit()
	for r.Next() {
		switch r.Type() {
		case bmff.TypeTfhd:
			trackID, fields, err := r.ReadTfhd()
			if err != nil {
				return TrafBox{}, nil, err
			}
			traf.TrackID = trackID
			traf.Tfhd = fields
			traf.TfhdFlags = r.Flags()
			haveTfhd = true

		case bmff.TypeTfdt:
			bmdt, err := r.ReadTfdt()
			if err != nil {
				return TrafBox{}, nil, err
			}
			traf.HasTfdt = true
			traf.BaseMediaDecodeTime = bmdt

		case bmff.TypeTrun:
			trun, err := decodeTrun(r)
			if err != nil {
				return TrafBox{}, nil, err
			}
			traf.Truns = append(traf.Truns, trun)
		}
	}
	if !haveTfhd {
		return TrafBox{}, nil, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "traf missing tfhd"}
	}
	return traf, warnings, nil
}

func decodeTrun(r *bmff.Reader) (TrunBox, error) {
	flags := r.Flags()
	version := r.Version()
	it, err := bmff.NewTrunIter(r.Data(), flags, version)
	if err != nil {
		return TrunBox{}, err
	}
	trun := TrunBox{Version: version, Flags: flags}
	if off, ok := it.DataOffset(); ok {
		trun.DataOffset = off
		trun.HasDataOffset = true
	}
	if fsf, ok := it.FirstSampleFlags(); ok {
		trun.FirstSampleFlags = fsf
		trun.HasFirstSampleFlags = true
	}
	for {
		s, ok := it.Next()
		if !ok {
			break
		}
		if flags&bmff.TrunSampleFlagsPresent == 0 {
			if len(trun.Samples) == 0 && trun.HasFirstSampleFlags {
				s.Flags = trun.FirstSampleFlags
			}
		}
		trun.Samples = append(trun.Samples, s)
	}
	if len(trun.Samples) != it.Count() {
		return TrunBox{}, &bmff.Error{Kind: bmff.Malformed, Msg: "trun sample_count does not match decoded entries"}
	}
	return trun, nil
}

// EncodeFragment serializes frag as styp ‖ moof ‖ mdat, in canonical
// order, using version 1 tfdt and shortest-form field layout throughout.
func EncodeFragment(frag Fragment) []byte {
	w := bmff.NewWriter(make([]byte, 0, 4096+len(frag.Mdat)))

	w.WriteStyp(bmff.BoxType{'c', 'm', 'f', '2'}, 0, []bmff.BoxType{
		{'c', 'm', 'f', 'c'}, {'i', 's', 'o', '6'},
	})

	w.StartBox(bmff.TypeMoof)
	w.WriteMfhd(frag.Moof.SequenceNumber)
	for _, traf := range frag.Moof.Trafs {
		encodeTraf(&w, traf)
	}
	w.EndBox()

	w.WriteMdat(frag.Mdat)

	return w.Bytes()
}

func encodeTraf(w *bmff.Writer, traf TrafBox) {
	w.StartBox(bmff.TypeTraf)
	w.WriteTfhd(traf.TfhdFlags, traf.TrackID, traf.Tfhd)
	if traf.HasTfdt {
		w.WriteTfdt(traf.BaseMediaDecodeTime)
	}
	for _, trun := range traf.Truns {
		var firstFlags bmff.SampleFlags
		if trun.HasFirstSampleFlags {
			firstFlags = trun.FirstSampleFlags
		}
		w.WriteTrun(trun.Version, trun.Flags, trun.DataOffset, firstFlags, trun.Samples)
	}
	w.EndBox()
}
