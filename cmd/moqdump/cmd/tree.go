package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tetsuo/moq/bmff"
)

// Format selects moqdump's output rendering.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

func parseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown format %q: want text or json", s)
	}
}

// BoxNode is one node of a dumped box tree.
type BoxNode struct {
	Type       string         `json:"type"`
	Size       uint64         `json:"size"`
	Version    *uint8         `json:"version,omitempty"`
	Flags      *uint32        `json:"flags,omitempty"`
	Info       map[string]any `json:"info,omitempty"`
	DataLength *int           `json:"dataLength,omitempty"`
	Children   []BoxNode      `json:"children,omitempty"`
}

// buildTree walks r's current nesting level and returns one BoxNode per
// sibling box, recursing into containers.
func buildTree(r *bmff.Reader) []BoxNode {
	var nodes []BoxNode
	for r.Next() {
		nodes = append(nodes, buildNode(r))
	}
	return nodes
}

func buildNode(r *bmff.Reader) BoxNode {
	node := BoxNode{Type: r.Type().String(), Size: r.Size()}

	if bmff.IsFullBox(r.Type()) {
		v := r.Version()
		f := r.Flags()
		node.Version = &v
		node.Flags = &f
	}

	node.Info = collectBoxInfo(r)

	switch {
	case bmff.IsContainerBox(r.Type()):
		r.Enter()
		node.Children = buildTree(r)
		r.Exit()
	case r.Type() == bmff.TypeMdat:
		n := len(r.ReadMdat())
		node.DataLength = &n
	}

	return node
}

// collectBoxInfo decodes the fields moqdump knows how to show for r's
// current box type. Boxes with no specific decoder (including unknown
// ones) simply get no Info.
func collectBoxInfo(r *bmff.Reader) map[string]any {
	switch r.Type() {
	case bmff.TypeFtyp, bmff.TypeStyp:
		v, err := r.ReadFtyp()
		if err != nil {
			return errInfo(err)
		}
		brands := make([]string, len(v.CompatibleBrands))
		for i, b := range v.CompatibleBrands {
			brands[i] = b.String()
		}
		return map[string]any{"majorBrand": v.MajorBrand.String(), "minorVersion": v.MinorVersion, "compatibleBrands": brands}

	case bmff.TypeMvhd:
		v, err := r.ReadMvhd()
		if err != nil {
			return errInfo(err)
		}
		return map[string]any{"timescale": v.Timescale, "duration": v.Duration, "nextTrackID": v.NextTrackID}

	case bmff.TypeTkhd:
		v, err := r.ReadTkhd()
		if err != nil {
			return errInfo(err)
		}
		return map[string]any{"trackID": v.TrackID, "duration": v.Duration, "width": v.Width.Int(), "height": v.Height.Int()}

	case bmff.TypeMdhd:
		v, err := r.ReadMdhd()
		if err != nil {
			return errInfo(err)
		}
		return map[string]any{"timescale": v.Timescale, "duration": v.Duration, "language": string(v.Language[:])}

	case bmff.TypeHdlr:
		v, err := r.ReadHdlr()
		if err != nil {
			return errInfo(err)
		}
		return map[string]any{"handlerType": v.HandlerType.String(), "name": v.Name}

	case bmff.TypeMfhd:
		seq, err := r.ReadMfhd()
		if err != nil {
			return errInfo(err)
		}
		return map[string]any{"sequenceNumber": seq}

	case bmff.TypeTfhd:
		trackID, fields, err := r.ReadTfhd()
		if err != nil {
			return errInfo(err)
		}
		return map[string]any{"trackID": trackID, "defaultSampleDuration": fields.DefaultSampleDuration, "defaultSampleSize": fields.DefaultSampleSize}

	case bmff.TypeTfdt:
		bmdt, err := r.ReadTfdt()
		if err != nil {
			return errInfo(err)
		}
		return map[string]any{"baseMediaDecodeTime": bmdt}

	case bmff.TypeTrun:
		it, err := bmff.NewTrunIter(r.Data(), r.Flags(), r.Version())
		if err != nil {
			return errInfo(err)
		}
		var samples []map[string]any
		for {
			s, ok := it.Next()
			if !ok {
				break
			}
			samples = append(samples, map[string]any{
				"duration": s.Duration, "size": s.Size,
				"isSync": s.Flags.IsSync(), "isIndependent": s.Flags.IsIndependent(),
			})
		}
		return map[string]any{"sampleCount": it.Count(), "samples": samples}

	case bmff.TypeAvc1, bmff.TypeAvc3, bmff.TypeHev1, bmff.TypeHvc1, bmff.TypeVp09, bmff.TypeAv01:
		v, err := bmff.ReadVisualSampleEntry(r.RawBox())
		if err != nil {
			return errInfo(err)
		}
		return map[string]any{"width": v.Width, "height": v.Height, "codecConfigLen": len(v.CodecConfig)}

	case bmff.TypeMp4a, bmff.TypeOpus, bmff.TypeAc3, bmff.TypeEc3:
		v, err := bmff.ReadAudioSampleEntry(r.RawBox())
		if err != nil {
			return errInfo(err)
		}
		return map[string]any{"channelCount": v.ChannelCount, "sampleRate": v.SampleRate}

	default:
		return nil
	}
}

func errInfo(err error) map[string]any { return map[string]any{"error": err.Error()} }

func printTree(nodes []BoxNode, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(outWriter)
		enc.SetIndent("", "  ")
		return enc.Encode(nodes)
	}
	for _, n := range nodes {
		printNodeText(n, 0)
	}
	return nil
}

func printNodeText(n BoxNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(outWriter, "%s%s size=%d", indent, n.Type, n.Size)
	if n.Version != nil {
		fmt.Fprintf(outWriter, " version=%d flags=0x%06x", *n.Version, *n.Flags)
	}
	if n.DataLength != nil {
		fmt.Fprintf(outWriter, " dataLength=%d", *n.DataLength)
	}
	fmt.Fprintln(outWriter)
	for k, v := range n.Info {
		fmt.Fprintf(outWriter, "%s  %s: %v\n", indent, k, v)
	}
	for _, c := range n.Children {
		printNodeText(c, depth+1)
	}
}
