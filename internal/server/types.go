package server

import (
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/pkg/facturx"
)

// ImportResponse is the response for the import endpoint
type ImportResponse struct {
	Invoice  *model.Invoice  `json:"invoice"`
	Profile  string          `json:"profile"`
	Format   string          `json:"format"`
	Warnings []model.Warning `json:"warnings,omitempty"`
}

// ValidationResponse is the response for the validate endpoint
type ValidationResponse struct {
	Valid      bool              `json:"valid"`
	Profile    string            `json:"profile,omitempty"`
	Violations []model.Violation `json:"violations,omitempty"`
}

// DetectResponse is the response for the detect endpoint
type DetectResponse struct {
	Format     string `json:"format"`
	IsZUGFeRD  bool   `json:"is_zugferd"`
	IsXInvoice bool   `json:"is_xinvoice"`
	Size       int    `json:"size"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error      string            `json:"error"`
	Violations []model.Violation `json:"violations,omitempty"`
}

func newImportResponse(r *facturx.Result) ImportResponse {
	return ImportResponse{
		Invoice:  r.Invoice,
		Profile:  string(r.Profile),
		Format:   r.Format.String(),
		Warnings: r.Warnings,
	}
}
