package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/pdf"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <invoice.pdf>",
	Short: "Extract the embedded XML from a hybrid PDF",
	Long: `Extract pulls the invoice XML attachment out of a Factur-X /
ZUGFeRD PDF without parsing or validating it.

Examples:
  facturx extract invoice.pdf
  facturx extract invoice.pdf -o factur-x.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file (default: stdout)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	xml, err := pdf.Extract(data)
	if err != nil {
		return err
	}
	return writeOutput(xml, extractOutput)
}
