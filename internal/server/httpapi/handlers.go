package httpapi

import (
	"context"
	"errors"
	"math"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/sentinel/internal/common"
	"github.com/dmitrijs2005/sentinel/internal/server/metrics"
	"github.com/dmitrijs2005/sentinel/internal/server/models"
)

const transportName = "http"

const (
	detailInvalidCredentials = "Invalid credentials"
	detailNotAuthenticated   = "Not authenticated"
	detailInternal           = "Internal server error"
)

type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type statusResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFromContext returns the Identity attached by requireBearer.
func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*models.Identity)
	return id, ok && id != nil
}

func (s *HTTPServer) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000000")
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "SentinelStack Backend", "status": "running"})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "healthy", Timestamp: s.timestamp()})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "not_ready", Timestamp: s.timestamp()})
		return
	}
	if s.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.check(ctx); err != nil {
			s.logger.Warn(r.Context(), "readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "not_ready", Timestamp: s.timestamp()})
			return
		}
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ready", Timestamp: s.timestamp()})
}

func (s *HTTPServer) handleTest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API test successful"})
}

// readCredentials accepts an OAuth2 password form
// (application/x-www-form-urlencoded or multipart) or a JSON object.
// Both fields must be present; empty values are passed through.
func readCredentials(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var req loginRequest
		if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
			return "", "", false
		}
		if req.Username == nil || req.Password == nil {
			return "", "", false
		}
		return *req.Username, *req.Password, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return "", "", false
		}
	} else if err := r.ParseForm(); err != nil {
		return "", "", false
	}

	if !r.PostForm.Has("username") || !r.PostForm.Has("password") {
		return "", "", false
	}
	return r.PostForm.Get("username"), r.PostForm.Get("password"), true
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, ok := readCredentials(w, r)
	if !ok {
		writeDetail(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	tokens, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			s.metrics.ObserveLogin(transportName, metrics.ResultFailure)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, detailInvalidCredentials)
			return
		}
		s.metrics.ObserveLogin(transportName, metrics.ResultError)
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, detailInternal)
		return
	}

	s.metrics.ObserveLogin(transportName, metrics.ResultSuccess)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: tokens.AccessToken,
		TokenType:   tokens.TokenType,
		ExpiresIn:   int64(math.Round(tokens.ExpiresAt.Sub(s.now()).Seconds())),
	})
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireBearer rejects requests without a valid access token. Every token
// failure gets the same 401 body; the failure kind is only logged.
func (s *HTTPServer) requireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reject := func() {
			s.metrics.ObserveAuthorization(transportName, metrics.ResultFailure)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, detailNotAuthenticated)
		}

		token := bearerToken(r)
		if token == "" {
			reject()
			return
		}

		identity, err := s.auth.Authorize(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) {
				reject()
				return
			}
			s.metrics.ObserveAuthorization(transportName, metrics.ResultError)
			s.logger.Error(r.Context(), "authorization failed", "error", err)
			writeDetail(w, http.StatusInternalServerError, detailInternal)
			return
		}

		s.metrics.ObserveAuthorization(transportName, metrics.ResultSuccess)
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	}
}
