package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezonia/facturx/internal/detect"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected detect.Format
	}{
		{
			name:     "XML with declaration",
			data:     []byte(`<?xml version="1.0"?><Invoice/>`),
			expected: detect.FormatXML,
		},
		{
			name:     "XML without declaration",
			data:     []byte(`<CrossIndustryInvoice/>`),
			expected: detect.FormatXML,
		},
		{
			name:     "XML with leading whitespace",
			data:     []byte("\n  <Invoice/>"),
			expected: detect.FormatXML,
		},
		{
			name:     "PDF",
			data:     []byte("%PDF-1.7\n%some content"),
			expected: detect.FormatPDF,
		},
		{
			name:     "Unknown format",
			data:     []byte("some random text"),
			expected: detect.FormatUnknown,
		},
		{
			name:     "Empty data",
			data:     []byte{},
			expected: detect.FormatUnknown,
		},
		{
			name:     "Nil data",
			data:     nil,
			expected: detect.FormatUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detect.DetectFormat(tt.data))
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "pdf", detect.FormatPDF.String())
	assert.Equal(t, "xml", detect.FormatXML.String())
	assert.Equal(t, "unknown", detect.FormatUnknown.String())
}

// The predicates must be total: any input yields an answer.
func TestPredicatesNeverPanic(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("%PDF-"),
		[]byte("%PDF-1.7 truncated garbage"),
		[]byte("<broken"),
		[]byte{0x00, 0x01, 0x02},
	}

	for _, data := range inputs {
		assert.False(t, detect.IsZUGFeRD(data))
		assert.False(t, detect.IsXInvoice(data))
	}
}

func TestIsXInvoice(t *testing.T) {
	cii := []byte(`<rsm:CrossIndustryInvoice xmlns:rsm="urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"/>`)
	assert.True(t, detect.IsXInvoice(cii))
	assert.False(t, detect.IsXInvoice([]byte("<Invoice/>")))
}
