package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "immofin-backend/internal/domain/dossier"
	"immofin-backend/internal/finance"
	"immofin-backend/internal/report"
	"immofin-backend/internal/score"
	"immofin-backend/internal/store"
	uc "immofin-backend/internal/usecase/dossier"
)

func newTestServer() *echo.Echo {
	st := store.New(store.NewMemoryBackend(), store.NewMemoryBus(), "test:v1", zerolog.Nop())
	u := uc.NewUsecase(st, score.NewEngine(score.DefaultConfig()), finance.DefaultThresholds(), report.JSONExporter{}, zerolog.Nop())

	e := echo.New()
	e.Validator = NewValidator()

	dh := NewDossierHandler(u)
	mh := NewModuleHandler(u)
	rh := NewReportHandler(u)
	e.GET("/health", NewHealthHandler("immofin-banque").Health)
	e.POST("/dossiers", dh.Create)
	e.GET("/dossiers/active", dh.Get)
	e.GET("/snapshot", dh.Snapshot)
	e.PUT("/dossiers", dh.Save)
	e.DELETE("/dossiers/:dossier_id", dh.Delete)
	e.PUT("/modules/committee", mh.PatchCommittee)
	e.PUT("/modules/guarantees", mh.PatchGuarantees)
	e.POST("/analysis/rentabilite", rh.ComputeRentabilite)
	e.GET("/guarantees/coverage", rh.GuaranteeCoverage)
	e.POST("/report", rh.Generate)
	e.GET("/report/export", rh.Export)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := newTestServer()
	rec := doJSON(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"service":"immofin-banque"`)
}

func TestCreateDossier(t *testing.T) {
	e := newTestServer()
	rec := doJSON(e, http.MethodPost, "/dossiers", `{"label":"Op. Horizon"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var d domain.Dossier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Len(t, d.ID, 32)
	assert.Equal(t, "Op. Horizon", d.Label)
	assert.Equal(t, domain.StatusBrouillon, d.Status)
}

func TestGetActive_NoDossierIs409(t *testing.T) {
	e := newTestServer()
	rec := doJSON(e, http.MethodGet, "/dossiers/active", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "no active dossier")
}

func TestSaveDossier_ValidationAndMerge(t *testing.T) {
	e := newTestServer()
	rec := doJSON(e, http.MethodPost, "/dossiers", `{"label":"Op. Horizon"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var d domain.Dossier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))

	// malformed id is rejected before it reaches the store
	rec = doJSON(e, http.MethodPut, "/dossiers", `{"dossier_id":"xyz","patch":{}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "lowercase hex")

	body := `{"dossier_id":"` + d.ID + `","patch":{"origination":{"loan_ask":{"amount":200000,"duration_months":12}}}}`
	rec = doJSON(e, http.MethodPut, "/dossiers", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var saved domain.Dossier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, domain.StatusOrigination, saved.Status)
	require.NotNil(t, saved.Origination.LoanAsk)
	assert.Equal(t, 200000.0, saved.Origination.LoanAsk.Amount)
	assert.Equal(t, "Op. Horizon", saved.Label, "label untouched by a loan-ask save")
}

func TestPatchCommittee_DrivesDecision(t *testing.T) {
	e := newTestServer()
	rec := doJSON(e, http.MethodPost, "/dossiers", `{}`)
	var d domain.Dossier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))

	rec = doJSON(e, http.MethodPut, "/modules/committee", `{"dossier_id":"`+d.ID+`","verdict":"favorable"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap store.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, domain.VerdictFavorable, snap.Committee.Verdict)
	assert.Equal(t, domain.StatusDecision, snap.Dossier.Status)
	assert.NotNil(t, snap.Dossier.DecidedAt)
}

func TestPatchModule_BadIDRejected(t *testing.T) {
	e := newTestServer()
	rec := doJSON(e, http.MethodPut, "/modules/guarantees", `{"dossier_id":"nope","items":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestComputeRentabilite_NoDossierIs409(t *testing.T) {
	e := newTestServer()
	rec := doJSON(e, http.MethodPost, "/analysis/rentabilite", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReportFlow(t *testing.T) {
	e := newTestServer()
	rec := doJSON(e, http.MethodPost, "/dossiers", `{"label":"Op. Flux"}`)
	var d domain.Dossier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))

	body := `{"dossier_id":"` + d.ID + `","patch":{"analysis":{"budget":{"purchase_price":"200 000","notary_fee_pct":"8","works_budget":"30 000","misc_fees":"5 000","duration_months":"12","target_resale_price":"310 000"}}}}`
	rec = doJSON(e, http.MethodPut, "/dossiers", body)
	require.Equal(t, http.StatusOK, rec.Code)

	// export before generation: the stored report is nil
	rec = doJSON(e, http.MethodGet, "/report/export", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(e, http.MethodPost, "/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep domain.StructuredReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, d.ID, rep.Meta.DossierID)

	rec = doJSON(e, http.MethodGet, "/report/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")
}

func TestDeleteDossier(t *testing.T) {
	e := newTestServer()
	rec := doJSON(e, http.MethodPost, "/dossiers", `{}`)
	var d domain.Dossier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))

	rec = doJSON(e, http.MethodDelete, "/dossiers/not-hex", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodDelete, "/dossiers/"+d.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/dossiers/active", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGuaranteeCoverageEndpoint(t *testing.T) {
	e := newTestServer()
	rec := doJSON(e, http.MethodPost, "/dossiers", `{}`)
	var d domain.Dossier
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))

	body := `{"dossier_id":"` + d.ID + `","patch":{"origination":{"loan_ask":{"amount":200000}}}}`
	rec = doJSON(e, http.MethodPut, "/dossiers", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPut, "/modules/guarantees",
		`{"dossier_id":"`+d.ID+`","items":[{"id":"g1","kind":"hypotheque","label":"Hyp.","value":300000,"rank":1}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/guarantees/coverage", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var sum uc.CoverageSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 300000.0, sum.TotalValue)
	assert.InDelta(t, 150, sum.CoveragePct, 1e-9)
}
