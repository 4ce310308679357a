package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/detect"
)

var detectCmd = &cobra.Command{
	Use:   "detect <file>",
	Short: "Detect the container format of a file",
	Long: `Detect reports the container format of a file and whether it is a
Factur-X / ZUGFeRD hybrid PDF or a standalone CII invoice.

Examples:
  facturx detect invoice.pdf
  facturx detect mystery-file`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]interface{}{
		"format":      detect.DetectFormat(data).String(),
		"is_zugferd":  detect.IsZUGFeRD(data),
		"is_xinvoice": detect.IsXInvoice(data),
		"size":        len(data),
	}, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = os.Stdout.Write(out)
	return err
}
