package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/granjalink/farm-backend-go/internal/domain/auth"
	"github.com/granjalink/farm-backend-go/internal/handler/http/middleware"
	"github.com/granjalink/farm-backend-go/internal/handler/http/response"
	"github.com/granjalink/farm-backend-go/internal/pkg/jwt"
	"github.com/granjalink/farm-backend-go/internal/pkg/oauth"
	"github.com/granjalink/farm-backend-go/internal/pkg/sse"
)

const (
	oauthStateCookie  = "oauth_state"
	defaultNextPath   = "/dashboard"
	callbackErrorPath = "/login?error=auth_callback_error"
	sseKeepalive      = 30 * time.Second
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
}

// EventSubscriber is the read side of the session event hub.
type EventSubscriber interface {
	Subscribe(userID string) (<-chan sse.Event, func())
}

type AuthHandlerImpl struct {
	jwtService    jwt.Service
	authService   auth.AuthService
	googleService oauth.GoogleService
	events        EventSubscriber
	secureCookies bool
}

// NewAuthHandler builds the auth endpoints. googleService may be nil when Google login is not configured.
func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService, googleService oauth.GoogleService, events EventSubscriber, secureCookies bool) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:    jwtService,
		authService:   authService,
		googleService: googleService,
		events:        events,
		secureCookies: secureCookies,
	}
}

func sessionTracking(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{
		UserAgent: r.UserAgent(),
		IPAddress: r.RemoteAddr,
	}
}

func (a *AuthHandlerImpl) setSessionCookies(w http.ResponseWriter, tokens auth.TokenResponse) {
	for _, c := range a.jwtService.SessionCookies(tokens.AccessToken, tokens.RefreshToken) {
		http.SetCookie(w, c)
	}
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := loginReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tokenResponse, err := a.authService.Login(r.Context(), loginReq, sessionTracking(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	a.setSessionCookies(w, tokenResponse)
	response.SuccessWithMessage(w, "Login successful", tokenResponse)
}

// Logout implements AuthHandler. It always succeeds so that a stale client can clear its cookies.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	var body auth.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("Logout body ignored", "error", err)
	}

	refreshToken := body.RefreshToken
	if c, err := r.Cookie(jwt.RefreshTokenCookie); err == nil && c.Value != "" {
		refreshToken = c.Value
	}

	if err := a.authService.Logout(r.Context(), middleware.TokenFromRequest(r), refreshToken); err != nil {
		slog.Warn("Logout revoke error", "error", err)
	}

	for _, c := range a.jwtService.ClearSessionCookies() {
		http.SetCookie(w, c)
	}
	http.SetCookie(w, &http.Cookie{
		Name:   middleware.LastActivityCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	response.SuccessWithMessage(w, "Logged out", nil)
}

// RefreshToken implements AuthHandler. The refresh token comes from the cookie or the body.
func (a *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var refreshReq auth.RefreshTokenRequest
	if c, err := r.Cookie(jwt.RefreshTokenCookie); err == nil && c.Value != "" {
		refreshReq.RefreshToken = c.Value
	} else if err := json.NewDecoder(r.Body).Decode(&refreshReq); err != nil && !errors.Is(err, io.EOF) {
		slog.Error("RefreshToken decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if refreshReq.RefreshToken == "" {
		response.HandleError(w, auth.ErrRefreshTokenCookieNotFound)
		return
	}

	tokenResponse, err := a.authService.RefreshToken(r.Context(), refreshReq, sessionTracking(r))
	if err != nil {
		for _, c := range a.jwtService.ClearSessionCookies() {
			http.SetCookie(w, c)
		}
		response.HandleError(w, err)
		return
	}

	a.setSessionCookies(w, tokenResponse)
	response.Success(w, tokenResponse)
}

// Me implements AuthHandler.
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	me, err := a.authService.Me(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, me)
}

// Events streams session events (SIGNED_OUT, TOKEN_REFRESHED) for the authenticated user.
func (a *AuthHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := a.events.Subscribe(userID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", userID)
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data := []byte("{}")
			if event.Data != nil {
				encoded, err := json.Marshal(event.Data)
				if err != nil {
					slog.Error("Events encode error", "event", event.Event, "error", err)
					continue
				}
				data = encoded
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// ForgotPassword implements AuthHandler. Unknown emails get the same answer as known ones.
func (a *AuthHandlerImpl) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var forgotPasswordReq auth.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&forgotPasswordReq); err != nil {
		slog.Error("ForgotPassword decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := forgotPasswordReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ForgotPassword(r.Context(), forgotPasswordReq); err != nil {
		slog.Error("ForgotPassword service error", "error", err)
	}

	response.SuccessWithMessage(w, "If the email is registered, a reset link has been sent", nil)
}

// ResetPassword implements AuthHandler.
func (a *AuthHandlerImpl) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var resetPasswordReq auth.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&resetPasswordReq); err != nil {
		slog.Error("ResetPassword decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := resetPasswordReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ResetPassword(r.Context(), resetPasswordReq); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Password updated, sign in again", nil)
}

// LoginWithGoogle implements AuthHandler.
func (a *AuthHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	if a.googleService == nil {
		response.HandleError(w, auth.ErrOAuthNotConfigured)
		return
	}

	state, err := a.googleService.GenerateState(safeNext(r.URL.Query().Get("next")))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, a.googleService.RedirectURL(state), http.StatusTemporaryRedirect)
}

// OAuthCallbackGoogle exchanges the authorization code for a session and sends the
// browser to the requested page, or back to the login page on any failure.
func (a *AuthHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	fail := func(reason string, err error) {
		slog.Error("Google callback failed", "reason", reason, "error", err)
		http.Redirect(w, r, callbackErrorPath, http.StatusTemporaryRedirect)
	}

	if a.googleService == nil {
		fail("not_configured", auth.ErrOAuthNotConfigured)
		return
	}

	query := r.URL.Query()
	if query.Get("error") != "" {
		fail("denied", auth.ErrGoogleAccessDeniedByUser)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" {
		fail("state_cookie", auth.ErrStateCookieEmpty)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	state := query.Get("state")
	if state == "" {
		fail("state_param", auth.ErrStateParamEmpty)
		return
	}
	if state != stateCookie.Value {
		fail("state_mismatch", auth.ErrStateMismatch)
		return
	}

	code := query.Get("code")
	if code == "" {
		fail("code", auth.ErrCodeValueEmpty)
		return
	}

	token, err := a.googleService.Exchange(r.Context(), code)
	if err != nil {
		fail("exchange", err)
		return
	}

	info, err := a.googleService.VerifyUser(r.Context(), token)
	if err != nil {
		fail("verify", err)
		return
	}

	tokenResponse, err := a.authService.LoginWithGoogle(r.Context(), auth.GoogleIdentity{
		GoogleID: info.GoogleID,
		Email:    info.Email,
		FullName: info.Name,
	}, sessionTracking(r))
	if err != nil {
		fail("login", err)
		return
	}

	a.setSessionCookies(w, tokenResponse)
	http.Redirect(w, r, safeNext(a.googleService.NextFromState(state)), http.StatusTemporaryRedirect)
}

// safeNext keeps redirects on this origin.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return defaultNextPath
	}
	return next
}
