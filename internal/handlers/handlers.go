package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/auth"
	"freelance-crm/internal/models"
	"freelance-crm/internal/receipts"
	"freelance-crm/internal/service"
	"freelance-crm/internal/storage"

	"go.uber.org/zap"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// SessionDuration is how long sessions last (30 days).
	SessionDuration = 30 * 24 * time.Hour
	// DefaultReceiptBytes caps receipt uploads unless WithReceipts sets another limit.
	DefaultReceiptBytes = 10 << 20
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	templateDir  string
	secureCookie bool

	log          *zap.Logger
	tracker      *service.TimeTracker
	invoicer     *service.Invoicer
	reports      *service.Reports
	tokens       *auth.TokenService
	receipts     receipts.Store
	receiptBytes int64
	loginLimiter *RateLimiter
}

// Option configures Handlers.
type Option func(*Handlers)

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(h *Handlers) { h.log = log }
}

// WithTimeTracker sets the tracker used by the timer endpoints.
func WithTimeTracker(t *service.TimeTracker) Option {
	return func(h *Handlers) { h.tracker = t }
}

// WithTokenService enables bearer tokens on the JSON API.
func WithTokenService(t *auth.TokenService) Option {
	return func(h *Handlers) { h.tokens = t }
}

// WithReceipts enables receipt uploads of at most maxBytes.
func WithReceipts(store receipts.Store, maxBytes int64) Option {
	return func(h *Handlers) {
		h.receipts = store
		if maxBytes > 0 {
			h.receiptBytes = maxBytes
		}
	}
}

// WithLoginLimiter throttles login and token requests per client IP.
func WithLoginLimiter(l *RateLimiter) Option {
	return func(h *Handlers) { h.loginLimiter = l }
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *storage.DB, templateDir string, secureCookie bool, opts ...Option) *Handlers {
	h := &Handlers{
		db:           db,
		templateDir:  templateDir,
		secureCookie: secureCookie,
		log:          zap.NewNop(),
		receiptBytes: DefaultReceiptBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.tracker == nil {
		h.tracker = service.NewTimeTracker(db, service.WithTimerLogger(h.log))
	}
	h.invoicer = service.NewInvoicer(db, h.log)
	h.reports = service.NewReports(db)
	return h
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

func withUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
}

// AuthMiddleware wraps handlers to require authentication.
// It also implements rolling sessions: if a session is past the halfway point
// of its lifetime, it automatically renews the session.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		sessionInfo, err := h.db.ValidateSessionWithInfo(r.Context(), cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		h.renewSession(w, r, cookie.Value, sessionInfo)
		next.ServeHTTP(w, withUser(r, sessionInfo.User))
	})
}

// renewSession extends a session that is in the second half of its lifetime.
func (h *Handlers) renewSession(w http.ResponseWriter, r *http.Request, token string, info *storage.SessionInfo) {
	now := time.Now()
	if info.ExpiresAt.Sub(now) >= SessionDuration/2 {
		return
	}
	if err := h.db.RenewSession(r.Context(), token, now.Add(SessionDuration)); err != nil {
		// If renewal fails, just continue with the current session
		h.log.Warn("failed to renew session", zap.Int64("user_id", info.User.ID), zap.Error(err))
		return
	}
	h.setSessionCookie(w, token)
}

// APIAuth accepts a bearer token or a session cookie and answers 401 JSON otherwise.
func (h *Handlers) APIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.apiUser(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, withUser(r, user))
	})
}

func (h *Handlers) apiUser(r *http.Request) (*models.User, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || h.tokens == nil {
			return nil, apperrors.Unauthorized("unsupported authorization header")
		}
		claims, err := h.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			return nil, err
		}
		user, err := h.db.GetUserByID(r.Context(), claims.UserID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid token")
		}
		return user, err
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return h.db.ValidateSession(r.Context(), cookie.Value)
	}
	return nil, apperrors.Unauthorized("authentication required")
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go to the dashboard
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.db.ValidateSession(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
	}
	h.render(w, r, "login.html", loginPage(""))
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", loginPage("Invalid form submission"))
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.render(w, r, "login.html", loginPage("Username and password are required"))
		return
	}

	user, err := h.authenticate(r.Context(), username, password)
	if err != nil {
		h.render(w, r, "login.html", loginPage("Invalid username or password"))
		return
	}

	// Generate session token
	token, err := auth.GenerateSessionToken()
	if err != nil {
		h.log.Error("failed to generate session token", zap.Error(err))
		h.render(w, r, "login.html", loginPage("An error occurred. Please try again."))
		return
	}

	// Create session in database
	if err := h.db.CreateSession(r.Context(), token, user.ID, time.Now().Add(SessionDuration)); err != nil {
		h.log.Error("failed to create session", zap.Error(err))
		h.render(w, r, "login.html", loginPage("An error occurred. Please try again."))
		return
	}

	h.setSessionCookie(w, token)
	h.log.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("request_id", RequestIDFromContext(r.Context())))
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func loginPage(errMsg string) Page {
	return Page{Title: "Sign in", Active: "login", Error: errMsg}
}

func (h *Handlers) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := h.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	return user, nil
}

// Logout handles user logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.db.DeleteSession(r.Context(), cookie.Value); err != nil {
			h.log.Warn("failed to delete session", zap.Error(err))
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// Health reports whether the database answers.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
