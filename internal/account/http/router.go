package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/chat-accounts/internal/account/service"
	"github.com/AlibekovAA/chat-accounts/internal/common/constants"
	commonhttp "github.com/AlibekovAA/chat-accounts/internal/common/http"
	"github.com/AlibekovAA/chat-accounts/internal/common/jwtverify"
	"github.com/AlibekovAA/chat-accounts/internal/common/logger"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

type loginResponse struct {
	Status    string    `json:"status"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type meResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Handler struct {
	accounts *service.AccountService
	log      *logger.Logger
}

func NewHandler(
	accounts *service.AccountService,
	requestTimeout time.Duration,
	log *logger.Logger,
	checks map[string]commonhttp.HealthCheck,
) http.Handler {
	h := &Handler{accounts: accounts, log: log}
	post := commonhttp.RequireMethod(http.MethodPost)
	get := commonhttp.RequireMethod(http.MethodGet)
	withTimeout := commonhttp.WithTimeout(requestTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc(constants.RouteHealth, commonhttp.HealthHandler(log, checks))
	mux.HandleFunc(constants.RouteAccountSignup, post(withTimeout(h.signup)))
	mux.HandleFunc(constants.RouteAccountLogin, post(withTimeout(h.login)))
	mux.HandleFunc(constants.RouteAccountLogout, post(withTimeout(h.logout)))
	mux.Handle(constants.RouteAccountMe, jwtverify.Middleware(SessionVerifier(accounts), log)(get(h.me)))
	return mux
}

// SessionVerifier adapts AccountService.ValidateToken for bearer-protected
// routes, including the revocation check.
func SessionVerifier(accounts *service.AccountService) jwtverify.Verifier {
	return jwtverify.VerifierFunc(func(ctx context.Context, token string) (jwtverify.Claims, error) {
		result, err := accounts.ValidateToken(ctx, token)
		if err != nil {
			return jwtverify.Claims{}, err
		}
		return jwtverify.Claims{
			UserID:    string(result.Claims.UserID),
			Username:  result.Claims.Username,
			TokenID:   result.Claims.TokenID,
			ExpiresAt: result.Claims.ExpiresAt,
		}, nil
	})
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("signup failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}

	result, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, signupResponse{
		Status: string(result.Status),
		UserID: string(result.UserID),
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}

	result, err := h.accounts.Authenticate(r.Context(), service.AuthenticateInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, loginResponse{
		Status:    string(result.Status),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token, ok := commonhttp.BearerToken(r)
	if ok {
		if _, err := h.accounts.Logout(r.Context(), token); err != nil {
			commonhttp.HandleError(w, r, err, h.log)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "missing or invalid authorization", nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, meResponse{
		UserID:    claims.UserID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt,
	})
}
