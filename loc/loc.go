// Package loc implements the draft-ietf-moq-loc per-object envelope: a
// varint-tagged header-extension block plus an opaque codec payload.
// MoQ transport identifiers (group/object/subgroup) travel alongside a
// LocObject as plain metadata — they are never part of the LOC wire
// format itself.
package loc

import "github.com/tetsuo/moq/bmff"

// MediaKind distinguishes an object's payload family. The wire format
// carries no explicit media kind tag; callers supply it out of band
// (from MoQ track metadata) when decoding.
type MediaKind int

const (
	MediaUnknown MediaKind = iota
	MediaAudio
	MediaVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaAudio:
		return "audio"
	case MediaVideo:
		return "video"
	default:
		return "unknown"
	}
}

// LocObject is a decoded media envelope.
type LocObject struct {
	Kind    MediaKind
	Payload []byte // the opaque codec elementary-stream chunk; aliases the decode buffer
	Extensions []HeaderExtension

	// Transport identifiers. Not part of the LOC wire format; carried here
	// for callers that keep LocObject as their unit of MoQ delivery.
	GroupID    uint64
	ObjectID   uint64
	SubgroupID uint64

	Warnings []bmff.Warning
}

// HasExtension reports whether o.Extensions contains an extension with the given
// ID, and returns it.
func (o LocObject) HasExtension(id uint64) (HeaderExtension, bool) {
	for _, e := range o.Extensions {
		if e.ID() == id {
			return e, true
		}
	}
	return nil, false
}

// IsIndependentFrame reports whether o carries a VideoFrameMarking
// extension with its independent bit set. False if no such extension is
// present.
func (o LocObject) IsIndependentFrame() bool {
	e, ok := o.HasExtension(extVideoFrameMarking)
	if !ok {
		return false
	}
	vfm, ok := e.(VideoFrameMarking)
	return ok && vfm.Independent
}
