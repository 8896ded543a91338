package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"vidver/internal/domain"
	"vidver/internal/infra"
	"vidver/internal/infra/geoip"
	"vidver/internal/middleware"
	"vidver/internal/orchestrator"
	"vidver/internal/storage"
)

// JobSubmitter runs one generation request to a terminal state.
type JobSubmitter interface {
	Submit(ctx context.Context, userID string, req orchestrator.SubmitRequest) (*orchestrator.Result, error)
}

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	SQL          infra.SQLExecutor
	Logger       infra.Logger
	Config       *infra.Config
	Orchestrator JobSubmitter
	Wallets      domain.WalletStore
	Store        *storage.FileStore
	Geo          geoip.CountryResolver
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// domainError maps a sentinel error to its HTTP status and a user-facing
// message in the negotiated locale.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		a.error(w, http.StatusBadRequest, "bad_request", reasonOf(err, localized(locale, "invalid request", "yanlış sorğu")))
	case errors.Is(err, domain.ErrEmailTaken):
		a.error(w, http.StatusBadRequest, "email_taken", localized(locale, "email already registered", "bu email artıq qeydiyyatdan keçib"))
	case errors.Is(err, domain.ErrInsufficientTokens):
		a.error(w, http.StatusPaymentRequired, "insufficient_tokens", localized(locale, "not enough tokens", "balansınızda kifayət qədər token yoxdur"))
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", localized(locale, "not allowed", "icazə yoxdur"))
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", localized(locale, "not found", "tapılmadı"))
	case errors.Is(err, domain.ErrGenerationTimeout):
		a.error(w, http.StatusInternalServerError, "generation_timeout", localized(locale, "generation timed out", "generasiya vaxtı bitdi"))
	case errors.Is(err, domain.ErrGatewayUnavailable), errors.Is(err, domain.ErrGenerationFailed):
		a.error(w, http.StatusInternalServerError, "generation_failed", localized(locale, "generation failed", "generasiya alınmadı"))
	default:
		a.Logger.Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", localized(locale, "internal error", "daxili xəta"))
	}
}

func localized(locale, en, az string) string {
	if locale == "az" {
		return az
	}
	return en
}

// reasonOf surfaces the wrapping detail of a validation error when present.
func reasonOf(err error, fallback string) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "+domain.ErrInvalidRequest.Error()); idx > 0 {
		return msg[:idx]
	}
	return fallback
}

// assetURL turns a storage key into a client-reachable URL. Provider-hosted
// results already carry an absolute URL and pass through unchanged.
func (a *App) assetURL(storageKey string) string {
	key := strings.TrimSpace(storageKey)
	lower := strings.ToLower(key)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return key
	}
	base := strings.TrimRight(a.Config.PublicBaseURL, "/")
	return base + "/static/" + strings.TrimLeft(key, "/")
}
