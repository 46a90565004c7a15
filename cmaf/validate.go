package cmaf

import "github.com/tetsuo/moq/bmff"

// ValidateFragment reports whether frag satisfies the structural
// invariants DecodeFragment can't already enforce itself — mdat present
// and non-nil, at least one traf, and every traf carrying a nonzero
// track_id — and, if not, the first reason it fails. styp/moof/mfhd
// presence is checked by DecodeFragment; a Fragment that reached here
// already has them.
func ValidateFragment(frag Fragment) (bool, string) {
	if frag.Mdat == nil {
		return false, "mdat is missing"
	}
	if len(frag.Moof.Trafs) == 0 {
		return false, "moof.traf list is empty"
	}
	for _, traf := range frag.Moof.Trafs {
		if traf.TrackID == 0 {
			return false, "traf tfhd.track_id is zero"
		}
	}
	return true, ""
}

// ValidateFragmentErr is ValidateFragment expressed as an *bmff.Error for
// callers that want the structured InvariantViolation kind rather than a
// bare bool/string pair.
func ValidateFragmentErr(frag Fragment) error {
	ok, reason := ValidateFragment(frag)
	if ok {
		return nil
	}
	return &bmff.Error{Kind: bmff.InvariantViolation, Msg: reason}
}
