package httptransport

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	jwttoken "certichain/internal/jwt_token"
	dErrors "certichain/pkg/domain-errors"
)

// AuthHandler exchanges a configured issuer API key for a short-lived
// access token. Key management beyond the single configured key is out of
// scope; institutions integrate through this one credential.
type AuthHandler struct {
	jwt          *jwttoken.JWTService
	issuerAPIKey string
	logger       *slog.Logger
}

func NewAuthHandler(jwt *jwttoken.JWTService, issuerAPIKey string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{jwt: jwt, issuerAPIKey: issuerAPIKey, logger: logger}
}

type tokenRequest struct {
	APIKey  string `json:"api_key"`
	Subject string `json:"subject"`
}

func (h *AuthHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if req.Subject == "" {
		writeError(w, dErrors.New(dErrors.CodeInvalidInput, "subject is required"))
		return
	}
	if h.issuerAPIKey == "" ||
		subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.issuerAPIKey)) != 1 {
		writeError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid api key"))
		return
	}

	token, err := h.jwt.GenerateAccessToken(req.Subject, time.Hour)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(time.Hour.Seconds()),
	})
}
