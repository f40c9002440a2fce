// Package auth provides optional Google OAuth login for the dashboard,
// restricted to a single Google Workspace domain.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ignite/discount-generator/internal/config"
	"github.com/ignite/discount-generator/internal/pkg/httpretry"
	"github.com/ignite/discount-generator/internal/pkg/logger"
)

const (
	stateCookie = "oauth_state"
	userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleUserInfo represents the user info returned by Google
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	HD            string `json:"hd"` // Hosted domain (Workspace domain)
}

// Session represents an authenticated user session
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthManager handles Google OAuth authentication
type AuthManager struct {
	config       config.AuthConfig
	oauth2Config *oauth2.Config
	userInfoURL  string
	sessions     map[string]*Session
	sessionMu    sync.RWMutex
	now          func() time.Time
}

// NewAuthManager creates a new authentication manager. The callback is
// registered at baseURL + "/auth/callback".
func NewAuthManager(cfg config.AuthConfig) *AuthManager {
	oauth2Config := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  strings.TrimSuffix(cfg.BaseURL, "/") + "/auth/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &AuthManager{
		config:       cfg,
		oauth2Config: oauth2Config,
		userInfoURL:  userInfoURL,
		sessions:     make(map[string]*Session),
		now:          time.Now,
	}
}

// randomToken creates a random URL-safe string for OAuth state and session IDs
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HandleLogin initiates the Google OAuth flow
func (am *AuthManager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomToken()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in a cookie for verification
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300, // 5 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	opts := []oauth2.AuthCodeOption{oauth2.AccessTypeOnline}
	if am.config.AllowedDomain != "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", am.config.AllowedDomain))
	}
	http.Redirect(w, r, am.oauth2Config.AuthCodeURL(state, opts...), http.StatusTemporaryRedirect)
}

// HandleCallback processes the OAuth callback from Google
func (am *AuthManager) HandleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || r.URL.Query().Get("state") != cookie.Value {
		logger.Warn("auth: invalid oauth state")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		logger.Warn("auth: google returned error", "error", errMsg)
		http.Redirect(w, r, "/?error=access_denied", http.StatusTemporaryRedirect)
		return
	}

	token, err := am.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logger.Error("auth: failed to exchange code", "error", err)
		http.Redirect(w, r, "/?error=exchange_failed", http.StatusTemporaryRedirect)
		return
	}

	userInfo, err := am.getUserInfo(r.Context(), token)
	if err != nil {
		logger.Error("auth: failed to get user info", "error", err)
		http.Redirect(w, r, "/?error=userinfo_failed", http.StatusTemporaryRedirect)
		return
	}

	if !am.domainAllowed(userInfo.Email) {
		logger.Warn("auth: domain not allowed", "email", userInfo.Email, "allowed_domain", am.config.AllowedDomain)
		http.Redirect(w, r, "/?error=domain_not_allowed", http.StatusTemporaryRedirect)
		return
	}

	sessionID, err := randomToken()
	if err != nil {
		http.Redirect(w, r, "/?error=session_failed", http.StatusTemporaryRedirect)
		return
	}

	now := am.now()
	am.sessionMu.Lock()
	am.sessions[sessionID] = &Session{
		UserID:    userInfo.ID,
		Email:     userInfo.Email,
		Name:      userInfo.Name,
		Picture:   userInfo.Picture,
		Domain:    userInfo.HD,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(am.config.CookieMaxAge) * time.Second),
	}
	am.sessionMu.Unlock()

	logger.Info("auth: user logged in", "email", userInfo.Email)

	http.SetCookie(w, &http.Cookie{
		Name:     am.config.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   am.config.CookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

func (am *AuthManager) domainAllowed(email string) bool {
	if am.config.AllowedDomain == "" {
		return true
	}
	parts := strings.Split(email, "@")
	return len(parts) == 2 && strings.EqualFold(parts[1], am.config.AllowedDomain)
}

// HandleLogout logs out the user
func (am *AuthManager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(am.config.CookieName); err == nil {
		am.sessionMu.Lock()
		delete(am.sessions, cookie.Value)
		am.sessionMu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{Name: am.config.CookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleUserInfo returns the current user's info as JSON
func (am *AuthManager) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	session := am.GetSession(r)
	if session == nil {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"authenticated": false})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"authenticated": true,
		"user": map[string]string{
			"id":      session.UserID,
			"email":   session.Email,
			"name":    session.Name,
			"picture": session.Picture,
			"domain":  session.Domain,
		},
	})
}

// GetSession returns the session for the current request, or nil if not authenticated
func (am *AuthManager) GetSession(r *http.Request) *Session {
	cookie, err := r.Cookie(am.config.CookieName)
	if err != nil {
		return nil
	}

	am.sessionMu.RLock()
	session, exists := am.sessions[cookie.Value]
	am.sessionMu.RUnlock()
	if !exists {
		return nil
	}

	if am.now().After(session.ExpiresAt) {
		am.sessionMu.Lock()
		delete(am.sessions, cookie.Value)
		am.sessionMu.Unlock()
		return nil
	}
	return session
}

// IsAuthenticated checks if the request is from an authenticated user
func (am *AuthManager) IsAuthenticated(r *http.Request) bool {
	return am.GetSession(r) != nil
}

// RequireAuth rejects unauthenticated requests with 401.
func (am *AuthManager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !am.IsAuthenticated(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getUserInfo fetches the user's profile from Google
func (am *AuthManager) getUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, am.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	client := httpretry.NewRetryClient(am.oauth2Config.Client(ctx, token), 2)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API error (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &userInfo, nil
}

// CleanupExpiredSessions removes expired sessions every interval until ctx
// is done.
func (am *AuthManager) CleanupExpiredSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				am.sweep()
			}
		}
	}()
}

func (am *AuthManager) sweep() {
	am.sessionMu.Lock()
	defer am.sessionMu.Unlock()
	now := am.now()
	for id, session := range am.sessions {
		if now.After(session.ExpiresAt) {
			delete(am.sessions, id)
		}
	}
}
