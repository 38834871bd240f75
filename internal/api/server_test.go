package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/policy-sync/internal/analytics"
	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/reconcile"
	"github.com/Veraticus/policy-sync/internal/rowparse"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/Veraticus/policy-sync/internal/testutil"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operator = "agent-1"

const policyCSV = `Poliçe No,Sigorta Şirketi,Poliçe Türü,Başlangıç Tarihi,Bitiş Tarihi,Prim,Müşteri Adı,TC Kimlik No
P-1,ABC Sigorta,Kasko,01.01.2025,01.01.2026,1000,Ayşe Yılmaz,11111111111
P-2,Nonexistent Co,Kasko,01.01.2025,01.01.2026,500,Ayşe Yılmaz,11111111111
`

type envelope[T any] struct {
	Data    T      `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func newTestServer(t *testing.T) (*Server, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t, "ABC Sigorta", "Türkiye Sigorta")
	srv, err := NewServer(db.Storage, reconcile.Options{
		Now: func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) },
	}, nil)
	require.NoError(t, err)
	return srv, db
}

func uploadRequest(t *testing.T, kind, filename, content, operatorID string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports/"+kind, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if operatorID != "" {
		req.Header.Set(OperatorHeader, operatorID)
	}
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestImport(t *testing.T) {
	srv, db := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "policies", "policies.csv", policyCSV, operator))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode[reconcile.Outcome](t, rec)
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, 1, env.Data.Inserted)
	assert.Equal(t, 1, env.Data.Failed)
	assert.Equal(t, []string{`row 3: company "Nonexistent Co" not found`}, env.Data.Errors)
	assert.Equal(t, "policies.csv", env.Data.Source)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/policies", nil)
	req.Header.Set(OperatorHeader, operator)
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	policies := decode[[]model.Policy](t, rec)
	require.Len(t, policies.Data, 1)
	assert.Equal(t, "P-1", policies.Data[0].PolicyNumber)
	assert.Equal(t, db.Company("ABC Sigorta").ID, policies.Data[0].CompanyID)
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		filename string
		operator string
		message  string
		status   int
	}{
		{
			name: "no operator", kind: "policies", filename: "p.csv",
			status: http.StatusUnauthorized, message: "cannot import without a signed-in operator",
		},
		{
			name: "unsupported format", kind: "policies", filename: "p.pdf", operator: operator,
			status: http.StatusBadRequest, message: "unsupported file format: p.pdf",
		},
		{
			name: "missing file", kind: "claims", operator: operator,
			status: http.StatusBadRequest, message: `bad request: multipart field "file" is required`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, uploadRequest(t, tt.kind, tt.filename, policyCSV, tt.operator))

			assert.Equal(t, tt.status, rec.Code)
			env := decode[json.RawMessage](t, rec)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestImport_UnknownKind(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "vendors", "v.csv", policyCSV, operator))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompanies(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/companies", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode[[]model.Company](t, rec)
	require.Len(t, env.Data, 2)
	assert.Equal(t, "ABC Sigorta", env.Data[0].Name)
}

func TestTemplate(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates/claims", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "claims-template.xlsx")

	table, err := tabular.Decode("template.xlsx", rec.Body)
	require.NoError(t, err)
	assert.Equal(t, rowparse.ClaimAliases.TemplateHeaders(), table.Headers)
	assert.Len(t, table.Rows, 1)
}

func TestLossRatio(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "policies", "policies.csv", policyCSV, operator))
	require.Equal(t, http.StatusOK, rec.Code)

	get := func(query string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/reports/loss-ratio?"+query, nil)
		req.Header.Set(OperatorHeader, operator)
		srv.ServeHTTP(rec, req)
		return rec
	}

	rec = get("from=01.01.2025&to=31.12.2025")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode[analytics.Report](t, rec)
	assert.Equal(t, "1000", env.Data.Total.EarnedPremium.String())
	assert.Equal(t, 1, env.Data.Total.Policies)

	rec = get("from=2025-12-31&to=2025-01-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get("from=31.02.2025")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decode[json.RawMessage](t, rec).Message, "bad request: from"))
}

func TestParsePeriod_Defaults(t *testing.T) {
	p, err := parsePeriod("", "15.06.2025")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), p.To)
}
