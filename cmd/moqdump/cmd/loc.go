package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tetsuo/moq/loc"
)

var (
	locHeadersPath string
	locPayloadPath string
	locConcatPath  string
	locHeaderLen   int
	locKind        string
)

var locCmd = &cobra.Command{
	Use:   "loc",
	Short: "Decode a LOC object's header extensions and payload",
	RunE: func(_ *cobra.Command, _ []string) error {
		kind := loc.MediaUnknown
		switch locKind {
		case "audio":
			kind = loc.MediaAudio
		case "video":
			kind = loc.MediaVideo
		}

		var obj loc.LocObject
		var err error
		switch {
		case locConcatPath != "":
			buf, rerr := os.ReadFile(locConcatPath)
			if rerr != nil {
				return fmt.Errorf("reading %s: %w", locConcatPath, rerr)
			}
			obj, err = loc.DecodeLocConcat(kind, buf, locHeaderLen)
		case locHeadersPath != "" && locPayloadPath != "":
			headers, rerr := os.ReadFile(locHeadersPath)
			if rerr != nil {
				return fmt.Errorf("reading %s: %w", locHeadersPath, rerr)
			}
			payload, rerr := os.ReadFile(locPayloadPath)
			if rerr != nil {
				return fmt.Errorf("reading %s: %w", locPayloadPath, rerr)
			}
			obj, err = loc.DecodeLocSplit(kind, headers, payload)
		default:
			return fmt.Errorf("either --concat with --header-len, or both --headers and --payload, must be given")
		}
		if err != nil {
			return fmt.Errorf("decoding LOC object: %w", err)
		}

		fmt.Fprintf(outWriter, "kind=%s payloadLen=%d extensions=%d\n", obj.Kind, len(obj.Payload), len(obj.Extensions))
		for _, e := range obj.Extensions {
			fmt.Fprintf(outWriter, "  id=%d %#v\n", e.ID(), e)
		}
		for _, w := range obj.Warnings {
			logger.Warn("decode warning", "msg", w.Msg)
		}
		return nil
	},
}

func init() {
	locCmd.Flags().StringVar(&locConcatPath, "concat", "", "path to a concatenated headers+payload buffer")
	locCmd.Flags().IntVar(&locHeaderLen, "header-len", 0, "byte length of the header-extension block within --concat")
	locCmd.Flags().StringVar(&locHeadersPath, "headers", "", "path to the header-extension block")
	locCmd.Flags().StringVar(&locPayloadPath, "payload", "", "path to the payload")
	locCmd.Flags().StringVar(&locKind, "kind", "video", "media kind: audio or video")
	rootCmd.AddCommand(locCmd)
}
