package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tetsuo/moq/bmff"
)

var fragmentFormat string

var fragmentCmd = &cobra.Command{
	Use:   "fragment <file>",
	Short: "Dump a CMAF fragment's styp/moof/mdat box tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		format, err := parseFormat(fragmentFormat)
		if err != nil {
			return err
		}
		buf, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		r := bmff.NewReader(buf)
		nodes := buildTree(&r)
		if err := r.Err(); err != nil {
			return fmt.Errorf("decoding %s: %w", args[0], err)
		}

		logger.Debug("decoded fragment box tree", "file", args[0], "topLevelBoxes", len(nodes))
		return printTree(nodes, format)
	},
}

func init() {
	fragmentCmd.Flags().StringVar(&fragmentFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(fragmentCmd)
}
