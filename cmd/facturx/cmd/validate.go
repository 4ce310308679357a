package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx/internal/detect"
	"github.com/rezonia/facturx/internal/pdf"
	"github.com/rezonia/facturx/pkg/facturx"
)

var validateCmd = &cobra.Command{
	Use:   "validate <invoice.xml|invoice.pdf>",
	Short: "Validate an invoice against the EN 16931 schema",
	Long: `Validate checks the invoice XML against the EN 16931 schema
profile. Hybrid PDFs are unwrapped first. The exit code is non-zero for
invalid documents; violations are listed on stderr.

Examples:
  facturx validate invoice.xml
  facturx validate invoice.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	xml := data
	if detect.DetectFormat(data) == detect.FormatPDF {
		xml, err = pdf.Extract(data)
		if err != nil {
			return err
		}
	}

	validator, err := facturx.NewValidator()
	if err != nil {
		return err
	}
	defer validator.Close()

	if err := validator.Validate(xml); err != nil {
		var schemaErr *facturx.SchemaInvalidError
		if errors.As(err, &schemaErr) {
			for _, v := range schemaErr.Violations {
				fmt.Fprintf(os.Stderr, "violation: %s\n", v.Message)
			}
			return fmt.Errorf("%s: %d schema violations", args[0], len(schemaErr.Violations))
		}
		return err
	}

	fmt.Printf("%s: valid (%s)\n", args[0], facturx.ProfileEN16931)
	return nil
}
