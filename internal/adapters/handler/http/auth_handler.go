package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/ports"
)

const accessTokenCookie = "access_token"

type AuthHandler struct {
	authService    ports.AdminAuthService
	cookieSameSite http.SameSite
}

func NewAuthHandler(authService ports.AdminAuthService, cookieSameSite http.SameSite) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		cookieSameSite: cookieSameSite,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login godoc
// @Summary      Admin login
// @Description  Exchanges the admin password for an access token cookie. The cookie authorizes `/api/results` and `/api/live`.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  loginResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/admin [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.authService.Enabled() {
		writeError(w, http.StatusNotFound, "admin login is disabled")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid password")
			return
		}
		writeDomainError(w, err)
		return
	}

	h.setAccessTokenCookie(w, token)
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// Logout godoc
// @Summary      Admin logout
// @Description  Clears the access token cookie
// @Tags         auth
// @Success      200
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: accessTokenCookie, MaxAge: -1, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RequireAdmin rejects requests without a valid admin token when admin auth is enabled.
func (h *AuthHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authService.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err := h.authService.Verify(token); err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AuthHandler) setAccessTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: h.cookieSameSite,
		MaxAge:   12 * 60 * 60, // 12 hours
	})
}

func bearerToken(r *http.Request) string {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
