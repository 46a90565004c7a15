package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tetsuo/moq/bmff"
)

var initFormat string

var initCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Dump an initialization segment's ftyp/moov box tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		format, err := parseFormat(initFormat)
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

		logger.Debug("decoded init segment box tree", "file", args[0], "topLevelBoxes", len(nodes))
		return printTree(nodes, format)
	},
}

func init() {
	initCmd.Flags().StringVar(&initFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(initCmd)
}
