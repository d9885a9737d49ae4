package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"certichain/internal/certificate"
	"certichain/internal/history"
	"certichain/internal/issue"
	"certichain/internal/platform/middleware"
	dErrors "certichain/pkg/domain-errors"
)

// Issuer runs the issuance workflow.
type Issuer interface {
	Issue(ctx context.Context, req issue.Request) (*issue.Outcome, error)
}

// Verifier computes verdicts.
type Verifier interface {
	Verify(ctx context.Context, req *certificate.VerificationRequest) (*certificate.VerificationResult, error)
}

// CertificateHandler is the thin HTTP layer over the issue and verify
// workflows. It delegates without embedding business logic so transport
// concerns remain isolated.
type CertificateHandler struct {
	issuer        Issuer
	verifier      Verifier
	history       history.Store
	logger        *slog.Logger
	publicBaseURL string
}

func NewCertificateHandler(
	issuer Issuer,
	verifier Verifier,
	hist history.Store,
	logger *slog.Logger,
	publicBaseURL string,
) *CertificateHandler {
	return &CertificateHandler{
		issuer:        issuer,
		verifier:      verifier,
		history:       hist,
		logger:        logger,
		publicBaseURL: publicBaseURL,
	}
}

type issueRequest struct {
	Recipient string `json:"recipient"`
	Name      string `json:"name"`
	Course    string `json:"course"`
	Issuer    string `json:"issuer"`
	IssueDate string `json:"issue_date"`
}

type issueResponse struct {
	TokenID     uint64 `json:"token_id"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

func (h *CertificateHandler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	outcome, err := h.issuer.Issue(ctx, issue.Request{
		Recipient: req.Recipient,
		Fields: certificate.Fields{
			Name:      req.Name,
			Course:    req.Course,
			Issuer:    req.Issuer,
			IssueDate: req.IssueDate,
		},
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "issuance failed",
			"request_id", middleware.GetRequestID(ctx),
			"subject", middleware.GetSubject(ctx),
			"error", err,
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, issueResponse{
		TokenID:     outcome.TokenID,
		TxHash:      outcome.Receipt.TxHash,
		BlockNumber: outcome.Receipt.BlockNumber,
	})
}

type verifyRequest struct {
	Name      *string `json:"name"`
	Course    *string `json:"course"`
	Issuer    *string `json:"issuer"`
	IssueDate *string `json:"issue_date"`
}

func (h *CertificateHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenID, err := tokenIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// An absent body means zero claims; the content length is unreliable
	// for chunked requests, so only a clean EOF counts as absent.
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	result, err := h.verifier.Verify(ctx, &certificate.VerificationRequest{
		TokenID:   tokenID,
		Name:      req.Name,
		Course:    req.Course,
		Issuer:    req.Issuer,
		IssueDate: req.IssueDate,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"token_id", tokenID,
			"error", err,
		)
		writeError(w, err)
		return
	}

	// UNKNOWN is a verdict, not a transport failure.
	writeJSON(w, http.StatusOK, result)
}

func (h *CertificateHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenID, err := tokenIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.verifier.Verify(ctx, &certificate.VerificationRequest{TokenID: tokenID})
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Verdict == certificate.VerdictUnknown {
		writeError(w, dErrors.Newf(dErrors.CodeNotFound, "no certificate under token id %d", tokenID))
		return
	}
	writeJSON(w, http.StatusOK, result.Record)
}

func (h *CertificateHandler) handleQRCode(w http.ResponseWriter, r *http.Request) {
	tokenID, err := tokenIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	verifyURL := fmt.Sprintf("%s/api/v1/certificates/%d", h.publicBaseURL, tokenID)
	png, err := qrcode.Encode(verifyURL, qrcode.Medium, 256)
	if err != nil {
		writeError(w, dErrors.Wrap(dErrors.CodeInternal, "generate qr code", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *CertificateHandler) handleListIssuances(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"issuances": entries})
}

func tokenIDParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "tokenID")
	tokenID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || tokenID == 0 {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "malformed token id %q", raw)
	}
	return tokenID, nil
}
