package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certichain/internal/allocator"
	"certichain/internal/certificate"
	"certichain/internal/history"
	"certichain/internal/issue"
	jwttoken "certichain/internal/jwt_token"
	"certichain/internal/ratelimit"
	"certichain/internal/registry/memory"
	"certichain/internal/verify"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

type fixture struct {
	router   http.Handler
	registry *memory.Registry
	jwt      *jwttoken.JWTService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := memory.New()
	hist := history.NewMemory()
	logger := testLogger()

	issuer := issue.NewService(allocator.New(), reg, hist, nil, nil, logger)
	engine := verify.NewEngine(reg, nil, nil, logger)
	jwt := jwttoken.NewJWTService("test-signing-key", "certichain")

	certs := NewCertificateHandler(issuer, engine, hist, logger, "http://localhost:8080")
	auth := NewAuthHandler(jwt, "issuer-api-key", logger)
	limits := ratelimit.NewMiddleware(ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 1000), logger)

	return &fixture{
		router:   NewRouter(certs, auth, jwt, limits, logger),
		registry: reg,
		jwt:      jwt,
	}
}

func (f *fixture) bearer(t *testing.T) string {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken("registrar@mit.edu", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *fixture) seed(t *testing.T, tokenID uint64) {
	t.Helper()
	_, err := f.registry.Submit(context.Background(), tokenID, "0xA1", certificate.Fields{
		Name:      "Alice Smith",
		Course:    "CS101",
		Issuer:    "MIT",
		IssueDate: "30-10-2025",
	})
	require.NoError(t, err)
}

func TestIssueRequiresAuth(t *testing.T) {
	f := newFixture(t)

	body := bytes.NewBufferString(`{"recipient":"0xA1","name":"Alice Smith","course":"CS101","issuer":"MIT","issue_date":"30-10-2025"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIssueHappyPath(t *testing.T) {
	f := newFixture(t)

	body := bytes.NewBufferString(`{"recipient":"0xA1","name":"Alice Smith","course":"CS101","issuer":"MIT","issue_date":"30-10-2025"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.bearer(t))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		TokenID uint64 `json:"token_id"`
		TxHash  string `json:"tx_hash"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.TokenID)
	assert.NotEmpty(t, resp.TxHash)

	stored, err := f.registry.Fetch(context.Background(), resp.TokenID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", stored.Name)
}

func TestIssueRejectsMissingFields(t *testing.T) {
	f := newFixture(t)

	body := bytes.NewBufferString(`{"recipient":"0xA1","name":"Alice Smith"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.bearer(t))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyAuthentic(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42)

	body := bytes.NewBufferString(`{"name":"Alice Smith","course":"CS101"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/42/verify", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result certificate.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, certificate.VerdictAuthentic, result.Verdict)
	assert.Len(t, result.Comparisons, 2)
}

func TestVerifyMismatchIsFake(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42)

	body := bytes.NewBufferString(`{"name":"alice smith"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/42/verify", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result certificate.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, certificate.VerdictFake, result.Verdict)
}

func TestVerifyUnknownTokenIsStillHTTPOK(t *testing.T) {
	f := newFixture(t)

	body := bytes.NewBufferString(`{"name":"Alice Smith"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/999/verify", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result certificate.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, certificate.VerdictUnknown, result.Verdict)
}

func TestVerifyWithEmptyBodyIsDisplayedOnly(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/42/verify", nil)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result certificate.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, certificate.VerdictDisplayedOnly, result.Verdict)
	require.NotNil(t, result.Record)
	assert.Equal(t, "Alice Smith", result.Record.Name)
}

func TestVerifyComparesClaimsOnChunkedRequest(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42)

	body := bytes.NewBufferString(`{"name":"NOT ALICE"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/42/verify", body)
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result certificate.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, certificate.VerdictFake, result.Verdict, "claims on a chunked request must still be compared")
}

func TestVerifyRejectsMalformedBody(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42)

	body := bytes.NewBufferString(`{"name":`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/42/verify", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyMalformedTokenID(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates/abc/verify", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCertificate(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/42", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var record certificate.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "CS101", record.Course)
}

func TestGetMissingCertificateIs404(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/999", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQRCodeEndpointReturnsPNG(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 42)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/42/qrcode", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestAuthTokenExchange(t *testing.T) {
	f := newFixture(t)

	body := bytes.NewBufferString(`{"api_key":"issuer-api-key","subject":"registrar@mit.edu"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	claims, err := f.jwt.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "registrar@mit.edu", claims.Subject)
}

func TestAuthTokenRejectsWrongKey(t *testing.T) {
	f := newFixture(t)

	body := bytes.NewBufferString(`{"api_key":"nope","subject":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListIssuancesRequiresAuth(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/issuances", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListIssuancesAfterIssue(t *testing.T) {
	f := newFixture(t)

	issueBody := bytes.NewBufferString(`{"recipient":"0xA1","name":"Alice Smith","course":"CS101","issuer":"MIT","issue_date":"30-10-2025"}`)
	issueReq := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", issueBody)
	issueReq.Header.Set("Content-Type", "application/json")
	issueReq.Header.Set("Authorization", f.bearer(t))
	issueRec := httptest.NewRecorder()
	f.router.ServeHTTP(issueRec, issueReq)
	require.Equal(t, http.StatusCreated, issueRec.Code)

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/issuances", nil)
	listReq.Header.Set("Authorization", f.bearer(t))
	listRec := httptest.NewRecorder()
	f.router.ServeHTTP(listRec, listReq)
	require.Equal(t, http.StatusOK, listRec.Code)

	var resp struct {
		Issuances []history.Entry `json:"issuances"`
	}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &resp))
	require.Len(t, resp.Issuances, 1)
	assert.Equal(t, "Alice Smith", resp.Issuances[0].Name)
}

func TestVerifyRateLimited(t *testing.T) {
	reg := memory.New()
	hist := history.NewMemory()
	logger := testLogger()
	issuer := issue.NewService(allocator.New(), reg, hist, nil, nil, logger)
	engine := verify.NewEngine(reg, nil, nil, logger)
	jwt := jwttoken.NewJWTService("k", "certichain")
	certs := NewCertificateHandler(issuer, engine, hist, logger, "http://localhost:8080")
	auth := NewAuthHandler(jwt, "key", logger)
	limits := ratelimit.NewMiddleware(ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 1), logger)
	router := NewRouter(certs, auth, jwt, limits, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/certificates/42", nil)
	req.RemoteAddr = "7.7.7.7:1000"

	first := httptest.NewRecorder()
	router.ServeHTTP(first, req)
	assert.NotEqual(t, http.StatusTooManyRequests, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
