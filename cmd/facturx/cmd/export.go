package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/pkg/facturx"
)

var (
	exportOutput string
	exportPDF    string
)

var exportCmd = &cobra.Command{
	Use:   "export <invoice.json>",
	Short: "Render a canonical invoice as validated CII XML or a hybrid PDF",
	Long: `Export derives the invoice totals, renders EN 16931 CII XML and
validates it against the embedded schema. With --pdf the XML is embedded
into the given PDF/A-3 instead of being written standalone.

A rejected invoice produces no output file.

Examples:
  facturx export invoice.json -o invoice.xml
  facturx export invoice.json --pdf base.pdf -o invoice.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout for XML)")
	exportCmd.Flags().StringVar(&exportPDF, "pdf", "", "Base PDF/A-3 to embed the XML into")
}

func runExport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var inv facturx.Invoice
	if err := json.Unmarshal(raw, &inv); err != nil {
		return fmt.Errorf("invalid invoice JSON: %w", err)
	}

	validator, err := facturx.NewValidator()
	if err != nil {
		return err
	}
	defer validator.Close()
	exporter := facturx.NewExporter(validator)

	if exportPDF != "" {
		if exportOutput == "" {
			return fmt.Errorf("--pdf requires -o")
		}
		printVerbose("Embedding into %s\n", exportPDF)
		return exporter.ExportPDF(&inv, exportPDF, exportOutput)
	}

	data, err := exporter.BuildXML(&inv)
	if err != nil {
		return err
	}
	printVerbose("Rendered %d bytes of schema-valid XML\n", len(data))
	return writeOutput(data, exportOutput)
}
