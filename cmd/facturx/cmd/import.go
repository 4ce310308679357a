package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/pkg/facturx"
)

var importOutput string

var importCmd = &cobra.Command{
	Use:   "import <invoice.pdf|invoice.xml>",
	Short: "Read an electronic invoice back into canonical JSON",
	Long: `Import detects the container format, extracts the XML from hybrid
PDFs, classifies the document profile and parses it into the canonical
model. Recoverable issues are reported as warnings alongside the result.

Examples:
  facturx import invoice.pdf
  facturx import invoice.xml -o invoice.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "Output file (default: stdout)")
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	validator, err := facturx.NewValidator()
	if err != nil {
		return err
	}
	defer validator.Close()
	importer := facturx.NewImporter(validator)

	result, err := importer.Import(data)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		printVerbose("Warning: %s\n", w)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	return writeOutput(out, importOutput)
}
