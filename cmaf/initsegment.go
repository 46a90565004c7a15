package cmaf

import "github.com/tetsuo/moq/bmff"

// InitSegment is a decoded ftyp+moov pair: one ftyp, one moov with one
// mvhd and at least one trak.
type InitSegment struct {
	Ftyp bmff.FtypBox
	Mvhd bmff.MvhdBox
	Traks []Trak

	Warnings []bmff.Warning
}

// Trak is a decoded trak: tkhd, mdia (mdhd+hdlr+minf), with minf carrying
// either vmhd (video) or smhd (audio) and a one-or-more-entry stsd.
type Trak struct {
	Tkhd bmff.TkhdBox
	Mdhd bmff.MdhdBox
	Hdlr bmff.HdlrBox
	IsVideo bool // true => minf carries vmhd, false => smhd
	SampleEntries []any // bmff.VisualSampleEntry | bmff.AudioSampleEntry | bmff.GenericSampleEntry
}

// DecodeInitSegment box-walks buf, requiring exactly one ftyp and one moov
// at the top level. The order of the two is not checked.
func DecodeInitSegment(buf []byte) (InitSegment, error) {
	var seg InitSegment
	var haveFtyp, haveMoov bool

	r := bmff.NewReader(buf)
	for r.Next() {
		switch r.Type() {
		case bmff.TypeFtyp:
			if haveFtyp {
				return InitSegment{}, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "init segment has more than one ftyp"}
			}
			ftyp, err := r.ReadFtyp()
			if err != nil {
				return InitSegment{}, err
			}
			seg.Ftyp = ftyp
			haveFtyp = true

		case bmff.TypeMoov:
			if haveMoov {
				return InitSegment{}, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "init segment has more than one moov"}
			}
			mvhd, traks, warnings, err := decodeMoov(&r)
			if err != nil {
				return InitSegment{}, err
			}
			seg.Mvhd = mvhd
			seg.Traks = traks
			seg.Warnings = append(seg.Warnings, warnings...)
			haveMoov = true

		default:
			seg.Warnings = append(seg.Warnings, bmff.Warning{Type: r.Type(), Msg: "unrecognised top-level box, skipped"})
		}
	}
	if err := r.Err(); err != nil {
		return InitSegment{}, err
	}
	if !haveFtyp || !haveMoov {
		return InitSegment{}, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "init segment missing ftyp or moov"}
	}
	if len(seg.Traks) == 0 {
		return InitSegment{}, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "moov has no trak"}
	}
	return seg, nil
}

func decodeMoov(r *bmff.Reader) (bmff.MvhdBox, []Trak, []bmff.Warning, error) {
	var mvhd bmff.MvhdBox
	var traks []Trak
	var haveMvhd bool

	warnings := r.CollectUnknownChildren(bmff.MoovChildOrder)

	r.Enter()
	defer r.Exit()
	for r.Next() {
		switch r.Type() {
		case bmff.TypeMvhd:
			var err error
			mvhd, err = r.ReadMvhd()
			if err != nil {
				return bmff.MvhdBox{}, nil, nil, err
			}
			haveMvhd = true

		case bmff.TypeTrak:
			trak, tw, err := decodeTrak(r)
			if err != nil {
				return bmff.MvhdBox{}, nil, nil, err
			}
			traks = append(traks, trak)
			warnings = append(warnings, tw...)
		}
	}
	if !haveMvhd {
		return bmff.MvhdBox{}, nil, nil, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "moov missing mvhd"}
	}
	return mvhd, traks, warnings, nil
}

func decodeTrak(r *bmff.Reader) (Trak, []bmff.Warning, error) {
	var trak Trak
	var haveTkhd bool

	warnings := r.CollectUnknownChildren(bmff.TrakChildOrder)

	r.Enter()
	defer r.Exit()
	for r.Next() {
		switch r.Type() {
		case bmff.TypeTkhd:
			tkhd, err := r.ReadTkhd()
			if err != nil {
				return Trak{}, nil, err
			}
			trak.Tkhd = tkhd
			haveTkhd = true

		case bmff.TypeMdia:
			mdhd, hdlr, isVideo, entries, mw, err := decodeMdia(r)
			if err != nil {
				return Trak{}, nil, err
			}
			trak.Mdhd = mdhd
			trak.Hdlr = hdlr
			trak.IsVideo = isVideo
			trak.SampleEntries = entries
			warnings = append(warnings, mw...)
		}
	}
	if !haveTkhd {
		return Trak{}, nil, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "trak missing tkhd"}
	}
	return trak, warnings, nil
}

func decodeMdia(r *bmff.Reader) (bmff.MdhdBox, bmff.HdlrBox, bool, []any, []bmff.Warning, error) {
	var mdhd bmff.MdhdBox
	var hdlr bmff.HdlrBox
	var isVideo bool
	var entries []any
	var haveMdhd, haveHdlr bool

	warnings := r.CollectUnknownChildren(bmff.MdiaChildOrder)

	r.Enter()
	defer r.Exit()
	for r.Next() {
		switch r.Type() {
		case bmff.TypeMdhd:
			var err error
			mdhd, err = r.ReadMdhd()
			if err != nil {
				return bmff.MdhdBox{}, bmff.HdlrBox{}, false, nil, nil, err
			}
			haveMdhd = true

		case bmff.TypeHdlr:
			var err error
			hdlr, err = r.ReadHdlr()
			if err != nil {
				return bmff.MdhdBox{}, bmff.HdlrBox{}, false, nil, nil, err
			}
			haveHdlr = true

		case bmff.TypeMinf:
			var mw []bmff.Warning
			var err error
			isVideo, entries, mw, err = decodeMinf(r)
			if err != nil {
				return bmff.MdhdBox{}, bmff.HdlrBox{}, false, nil, nil, err
			}
			warnings = append(warnings, mw...)
		}
	}
	if !haveMdhd || !haveHdlr {
		return bmff.MdhdBox{}, bmff.HdlrBox{}, false, nil, nil, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "mdia missing mdhd or hdlr"}
	}
	return mdhd, hdlr, isVideo, entries, warnings, nil
}

func decodeMinf(r *bmff.Reader) (bool, []any, []bmff.Warning, error) {
	var isVideo bool
	var entries []any

	warnings := r.CollectUnknownChildren(bmff.MinfChildOrder)

	r.Enter()
	defer r.Exit()
	for r.Next() {
		switch r.Type() {
		case bmff.TypeVmhd:
			isVideo = true
		case bmff.TypeSmhd:
			isVideo = false
		case bmff.TypeDinf:
			// dref contents aren't surfaced; only unrecognised entries are flagged.
			warnings = append(warnings, r.CollectUnknownChildren(bmff.DinfChildOrder)...)
		case bmff.TypeStbl:
			e, sw, err := decodeStbl(r)
			if err != nil {
				return false, nil, nil, err
			}
			entries = e
			warnings = append(warnings, sw...)
		}
	}
	return isVideo, entries, warnings, nil
}

func decodeStbl(r *bmff.Reader) ([]any, []bmff.Warning, error) {
	var entries []any

	warnings := r.CollectUnknownChildren(bmff.StblChildOrder)

	if _, found := r.ChildOf(bmff.TypeStsd); !found {
		return nil, nil, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "stbl missing stsd"}
	}

	r.Enter()
	defer r.Exit()
	for r.Next() {
		if r.Type() != bmff.TypeStsd {
			continue
		}
		count := r.EntryCount()
		r.Enter()
		r.Skip(4) // entry_count already consumed by EntryCount
		for i := uint32(0); i < count && r.Next(); i++ {
			entry, err := bmff.ReadStsdEntry(r.RawBox())
			if err != nil {
				r.Exit()
				return nil, nil, err
			}
			entries = append(entries, entry)
		}
		r.Exit()
	}
	if len(entries) == 0 {
		return nil, nil, &bmff.Error{Kind: bmff.InvariantViolation, Msg: "stsd has no sample entries"}
	}
	return entries, warnings, nil
}

// EncodeInitSegment serializes seg as ftyp ‖ moov.
func EncodeInitSegment(seg InitSegment) []byte {
	w := bmff.NewWriter(make([]byte, 0, 1024))

	w.WriteFtyp(bmff.BoxType{'i', 's', 'o', '6'}, 0, []bmff.BoxType{
		{'i', 's', 'o', '6'}, {'c', 'm', 'f', 'c'},
	})

	w.StartBox(bmff.TypeMoov)
	w.WriteMvhd(0, 0, uint32(seg.Mvhd.Duration), seg.Mvhd.Timescale, seg.Mvhd.NextTrackID)
	for _, trak := range seg.Traks {
		encodeTrak(&w, trak)
	}
	w.EndBox()

	return w.Bytes()
}

func encodeTrak(w *bmff.Writer, trak Trak) {
	w.StartBox(bmff.TypeTrak)
	w.WriteTkhd(trak.Tkhd.Flags, trak.Tkhd.TrackID, uint32(trak.Tkhd.Duration), trak.Tkhd.Width, trak.Tkhd.Height)

	w.StartBox(bmff.TypeMdia)
	w.WriteMdhd(trak.Mdhd.Timescale, uint32(trak.Mdhd.Duration), trak.Mdhd.Language)
	w.WriteHdlr(trak.Hdlr.HandlerType, trak.Hdlr.Name)

	w.StartBox(bmff.TypeMinf)
	if trak.IsVideo {
		w.WriteVmhd()
	} else {
		w.WriteSmhd()
	}
	w.StartBox(bmff.TypeDinf)
	w.WriteDref()
	w.EndBox()

	w.StartBox(bmff.TypeStbl)
	w.WriteStsdHeader(uint32(len(trak.SampleEntries)))
	for _, e := range trak.SampleEntries {
		writeSampleEntry(w, e)
	}
	w.EndBox() // stsd
	w.WriteEmptyStts()
	w.WriteEmptyStsc()
	w.WriteEmptyStsz()
	w.WriteEmptyStco()
	w.EndBox() // stbl

	w.EndBox() // minf
	w.EndBox() // mdia
	w.EndBox() // trak
}

func writeSampleEntry(w *bmff.Writer, e any) {
	switch se := e.(type) {
	case bmff.VisualSampleEntry:
		w.WriteVisualSampleEntry(se.Type, se.Width, se.Height, se.CodecConfig)
	case bmff.AudioSampleEntry:
		w.WriteAudioSampleEntry(se.Type, se.ChannelCount, se.SampleSizeBits, se.SampleRate, se.CodecConfig)
	case bmff.GenericSampleEntry:
		w.WriteGenericSampleEntry(se.Type, se.CodecConfig)
	}
}
