package bmff

// Prescribed child order for the composite boxes this library produces.
// Decoders do not enforce these orderings (ISO BMFF readers are expected
// to tolerate reordering of optional boxes); encoders always emit them in
// this order, and a validator can use them to flag nonconformant input.
var (
	MoofChildOrder = []BoxType{TypeMfhd, TypeTraf}
	TrafChildOrder = []BoxType{TypeTfhd, TypeTfdt, TypeTrun}
	MoovChildOrder = []BoxType{TypeMvhd, TypeTrak}
	TrakChildOrder = []BoxType{TypeTkhd, TypeMdia}
	MdiaChildOrder = []BoxType{TypeMdhd, TypeHdlr, TypeMinf}
	MinfChildOrder = []BoxType{TypeVmhd, TypeSmhd, TypeDinf, TypeStbl}
	StblChildOrder = []BoxType{TypeStsd, TypeStts, TypeStsc, TypeStsz, TypeStco}
	DinfChildOrder = []BoxType{TypeDref}
)

// ChildOf walks the children of the box r is currently positioned on
// (which must be a container, see IsContainerBox) and returns the Entry
// (type, size, header length) of the first child matching typ, or
// found=false if none exists.
// r's cursor is restored to the container level on return.
func (r *Reader) ChildOf(typ BoxType) (child Entry, found bool) {
	r.Enter()
	defer r.Exit()
	for r.Next() {
		if r.Type() == typ {
			return Entry{Type: r.Type(), Size: r.Size(), HeaderLen: r.curHeaderLen}, true
		}
	}
	return Entry{}, false
}

// CollectUnknownChildren walks the children of the box r is currently
// positioned on and returns a Warning for every child whose type isn't in
// known. Used by composite decoders to surface unrecognised boxes without
// treating them as fatal, per the Unknown error policy.
func (r *Reader) CollectUnknownChildren(known []BoxType) []Warning {
	var warnings []Warning
	r.Enter()
	defer r.Exit()
	iterations := 0
	for r.Next() {
		iterations++
		if iterations > maxChildIterations {
			warnings = append(warnings, Warning{Offset: r.curStart, Type: r.curType, Msg: "child iteration cap reached, remaining children not scanned"})
			break
		}
		isKnown := false
		for _, k := range known {
			if r.Type() == k {
				isKnown = true
				break
			}
		}
		if !isKnown {
			warnings = append(warnings, Warning{Offset: r.curStart, Type: r.curType, Msg: "unrecognised child box, skipped"})
		}
	}
	return warnings
}
