package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "facturx",
	Short: "Read and write Factur-X / ZUGFeRD electronic invoices",
	Long: `facturx converts between canonical invoice JSON and EN 16931
electronic invoices: standalone CII XML (XRechnung) or hybrid PDFs with
the XML embedded (Factur-X / ZUGFeRD).

Examples:
  # Render an invoice as validated CII XML
  facturx export invoice.json -o invoice.xml

  # Embed the XML into an existing PDF/A-3
  facturx export invoice.json --pdf base.pdf -o invoice.pdf

  # Read a hybrid PDF back into canonical JSON
  facturx import invoice.pdf

  # Pull the raw XML out of a hybrid PDF
  facturx extract invoice.pdf

  # Validate against the EN 16931 schema
  facturx validate invoice.xml`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
