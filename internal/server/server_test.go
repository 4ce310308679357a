package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/facturx/internal/cii"
	"github.com/rezonia/facturx/internal/model"
	"github.com/rezonia/facturx/internal/money"
	"github.com/rezonia/facturx/internal/server"
	"github.com/rezonia/facturx/internal/totals"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	srv, err := server.NewServer(&server.Config{Address: ":0"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

func sampleInvoice() *model.Invoice {
	return &model.Invoice{
		Number:       "RE-2026-010",
		IssueDate:    model.NewDate(2026, time.April, 2),
		CurrencyCode: "EUR",
		Seller: model.TradeParty{
			Name:  "Muster GmbH",
			VATID: "DE123456789",
			Address: model.Address{
				Line1:       "Musterstr. 1",
				Postcode:    "10115",
				City:        "Berlin",
				CountryCode: "DE",
			},
		},
		Buyer: model.TradeParty{
			Name: "Kunde AG",
			Address: model.Address{
				Line1:       "Kundenweg 2",
				Postcode:    "80331",
				City:        "Muenchen",
				CountryCode: "DE",
			},
		},
		Items: []model.LineItem{{
			Name:         "Consulting",
			Quantity:     money.MustFromString("10"),
			QuantityUnit: "HUR",
			NetUnitPrice: money.MustFromString("100"),
			VATRate:      money.MustFromString("19"),
			VATCode:      "S",
		}},
	}
}

func sampleXML(t *testing.T) []byte {
	t.Helper()
	data, err := cii.Render(totals.Derive(sampleInvoice()))
	require.NoError(t, err)
	return data
}

func do(srv *server.Server, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestExportXMLEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body, err := json.Marshal(sampleInvoice())
	require.NoError(t, err)

	w := do(srv, http.MethodPost, "/api/v1/export/xml", "application/json", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "CrossIndustryInvoice")
	assert.Contains(t, w.Body.String(), "RE-2026-010")
}

func TestExportXMLEndpointBadJSON(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodPost, "/api/v1/export/xml", "application/json", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportXMLEndpointSchemaInvalid(t *testing.T) {
	srv := newTestServer(t)

	inv := sampleInvoice()
	inv.Seller.Name = ""
	body, err := json.Marshal(inv)
	require.NoError(t, err)

	w := do(srv, http.MethodPost, "/api/v1/export/xml", "application/json", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Violations)
}

func TestImportEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodPost, "/api/v1/import", "application/xml", sampleXML(t))
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "EN16931", resp.Profile)
	assert.Equal(t, "xml", resp.Format)
	require.NotNil(t, resp.Invoice)
	assert.Equal(t, "RE-2026-010", resp.Invoice.Number)
}

func TestImportEndpointEmptyBody(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodPost, "/api/v1/import", "application/xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportEndpointUnknownFormat(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodPost, "/api/v1/import", "text/plain", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateEndpointValid(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodPost, "/api/v1/validate", "application/xml", sampleXML(t))
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, "EN16931", resp.Profile)
}

func TestValidateEndpointViolations(t *testing.T) {
	srv := newTestServer(t)

	inv := sampleInvoice()
	inv.Seller.Name = ""
	data, err := cii.Render(totals.Derive(inv))
	require.NoError(t, err)

	w := do(srv, http.MethodPost, "/api/v1/validate", "application/xml", data)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Equal(t, "EXTENDED", resp.Profile)
	assert.NotEmpty(t, resp.Violations)
}

func TestDetectEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := do(srv, http.MethodPost, "/api/v1/detect", "application/xml", sampleXML(t))
	require.Equal(t, http.StatusOK, w.Code)

	var resp server.DetectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "xml", resp.Format)
	assert.True(t, resp.IsXInvoice)
	assert.False(t, resp.IsZUGFeRD)
	assert.Positive(t, resp.Size)
}
