package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tetsuo/moq/cmaf"
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Split a concatenated blob into CMAF fragments and summarize each",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		buf, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		frags := cmaf.ScanFragments(buf)
		logger.Info("scanned buffer for fragments", "file", args[0], "count", len(frags))

		for i, raw := range frags {
			frag, err := cmaf.DecodeFragment(raw)
			if err != nil {
				fmt.Fprintf(outWriter, "fragment %d: decode error: %v\n", i, err)
				continue
			}
			ok, reason := cmaf.ValidateFragment(frag)
			fmt.Fprintf(outWriter, "fragment %d: %d bytes, sequence=%d baseMediaDecodeTime=%d valid=%v",
				i, len(raw), frag.SequenceNumber(), frag.BaseMediaDecodeTime(), ok)
			if !ok {
				fmt.Fprintf(outWriter, " (%s)", reason)
			}
			fmt.Fprintln(outWriter)
			for _, w := range frag.Warnings {
				logger.Warn("decode warning", "fragment", i, "offset", w.Offset, "type", w.Type.String(), "msg", w.Msg)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
