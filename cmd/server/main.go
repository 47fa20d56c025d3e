package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freelance-crm/internal/auth"
	"freelance-crm/internal/config"
	"freelance-crm/internal/handlers"
	"freelance-crm/internal/logger"
	"freelance-crm/internal/receipts"
	"freelance-crm/internal/service"
	"freelance-crm/internal/storage"

	"go.uber.org/zap"
)

const (
	sessionCleanupInterval = time.Hour
	limiterSweepInterval   = 10 * time.Minute
)

func main() {
	configPath := flag.String("config", "", "Path to an optional YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting freelance CRM",
		zap.String("env", cfg.Env),
		zap.String("db_driver", cfg.Database.Driver),
	)

	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	if err := bootstrapAdmin(ctx, db, cfg.Auth, log); err != nil {
		return err
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if secret, err = randomSecret(); err != nil {
			return err
		}
		log.Warn("JWT_SECRET is not set, API tokens will not survive a restart")
	}

	store, err := receipts.New(ctx, cfg.Receipts)
	if err != nil {
		return fmt.Errorf("init receipts: %w", err)
	}

	tracker := service.NewTimeTracker(db,
		service.WithPreemptPolicy(service.PreemptPolicy(cfg.Timer.Preempt)),
		service.WithTimerLogger(log),
	)
	limiter := handlers.NewRateLimiter(cfg.HTTP.LoginRatePerMinute, cfg.HTTP.LoginRatePerMinute)
	h := handlers.NewHandlers(db, cfg.HTTP.TemplateDir, cfg.HTTP.SecureCookie,
		handlers.WithLogger(log),
		handlers.WithTimeTracker(tracker),
		handlers.WithTokenService(auth.NewTokenService(secret, cfg.Auth.JWTTTL)),
		handlers.WithReceipts(store, cfg.Receipts.MaxBytes),
		handlers.WithLoginLimiter(limiter),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           setupRouter(h, cfg.HTTP.StaticDir),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go cleanSessions(ctx, db, log)
	go sweepLimiter(ctx, limiter, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// bootstrapAdmin creates the first user from ADMIN_USER/ADMIN_PASSWORD when
// the database has none.
func bootstrapAdmin(ctx context.Context, db *storage.DB, cfg config.AuthConfig, log *zap.Logger) error {
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return nil
	}
	count, err := db.UserCount(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user, err := db.CreateUser(ctx, cfg.AdminUser, "", hash)
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info("Created admin user", zap.String("username", user.Username), zap.Int64("user_id", user.ID))
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func cleanSessions(ctx context.Context, db *storage.DB, log *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.CleanExpiredSessions(ctx)
			if err != nil {
				log.Warn("Failed to clean expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("Cleaned expired sessions", zap.Int64("count", n))
			}
		}
	}
}

// sweepLimiter forgets login buckets that saw no traffic in the last interval.
func sweepLimiter(ctx context.Context, rl *handlers.RateLimiter, log *zap.Logger) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Sweep(limiterSweepInterval); n > 0 {
				log.Debug("Dropped idle login limiters", zap.Int("count", n))
			}
		}
	}
}

func setupRouter(h *handlers.Handlers, staticDir string) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	mux.HandleFunc("GET /healthz", h.Health)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Limit(h.Login))
	mux.HandleFunc("POST /logout", h.Logout)

	page := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.AuthMiddleware(fn))
	}
	page("GET /dashboard", h.Dashboard)

	page("GET /clients", h.ListClients)
	page("POST /clients", h.CreateClient)
	page("GET /clients/{id}", h.ShowClient)
	page("POST /clients/{id}", h.UpdateClient)
	page("POST /clients/{id}/delete", h.DeleteClient)

	page("GET /projects", h.ListProjects)
	page("POST /projects", h.CreateProject)
	page("GET /projects/{id}", h.ShowProject)
	page("POST /projects/{id}", h.UpdateProject)
	page("POST /projects/{id}/delete", h.DeleteProject)
	page("POST /projects/{id}/invoice-time", h.InvoiceProjectTime)
	page("POST /projects/{id}/invoice-expenses", h.InvoiceProjectExpenses)

	page("GET /time", h.ListTime)
	page("POST /time", h.CreateTimeEntry)
	page("POST /time/start", h.StartTimer)
	page("POST /time/{id}/stop", h.StopTimer)
	page("POST /time/{id}/delete", h.DeleteTimeEntry)

	page("GET /expenses", h.ListExpenses)
	page("POST /expenses", h.CreateExpense)
	page("GET /expenses/stats", h.Statistics)
	page("POST /expenses/{id}/delete", h.DeleteExpense)
	page("POST /expenses/{id}/receipt", h.UploadReceipt)
	page("GET /expenses/{id}/receipt", h.DownloadReceipt)

	page("GET /invoices", h.ListInvoices)
	page("POST /invoices", h.CreateInvoice)
	page("POST /invoices/{id}/status", h.UpdateInvoiceStatus)
	page("POST /invoices/{id}/delete", h.DeleteInvoice)

	page("GET /settings", h.Settings)
	page("POST /settings", h.UpdateSettings)

	mux.HandleFunc("POST /api/v1/token", h.Limit(h.APIToken))
	api := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.APIAuth(fn))
	}
	api("GET /api/v1/user", h.APIGetUser)
	api("PUT /api/v1/user", h.APIUpdateUser)
	api("GET /api/v1/dashboard", h.APIDashboard)

	api("GET /api/v1/clients", h.APIListClients)
	api("POST /api/v1/clients", h.APICreateClient)
	api("GET /api/v1/clients/{id}", h.APIGetClient)
	api("PATCH /api/v1/clients/{id}", h.APIUpdateClient)
	api("DELETE /api/v1/clients/{id}", h.APIDeleteClient)

	api("GET /api/v1/projects", h.APIListProjects)
	api("POST /api/v1/projects", h.APICreateProject)
	api("GET /api/v1/projects/{id}", h.APIGetProject)
	api("PATCH /api/v1/projects/{id}", h.APIUpdateProject)
	api("DELETE /api/v1/projects/{id}", h.APIDeleteProject)
	api("GET /api/v1/projects/{id}/profitability", h.APIProjectProfitability)
	api("GET /api/v1/projects/{id}/unbilled-time", h.APIProjectUnbilledTime)
	api("GET /api/v1/projects/{id}/billable-expenses", h.APIProjectBillableExpenses)
	api("GET /api/v1/projects/{id}/hours", h.APIProjectHours)
	api("GET /api/v1/projects/{id}/expenses", h.APIProjectExpenses)

	api("GET /api/v1/time-entries", h.APIListTimeEntries)
	api("POST /api/v1/time-entries", h.APICreateTimeEntry)
	api("GET /api/v1/time-entries/{id}", h.APIGetTimeEntry)
	api("PATCH /api/v1/time-entries/{id}", h.APIUpdateTimeEntry)
	api("DELETE /api/v1/time-entries/{id}", h.APIDeleteTimeEntry)
	api("GET /api/v1/timer", h.APIRunningTimer)
	api("POST /api/v1/timer/start", h.APIStartTimer)
	api("POST /api/v1/timer/{id}/stop", h.APIStopTimer)

	api("GET /api/v1/expenses", h.APIListExpenses)
	api("POST /api/v1/expenses", h.APICreateExpense)
	api("GET /api/v1/expenses/summary", h.APIExpenseSummary)
	api("GET /api/v1/expenses/{id}", h.APIGetExpense)
	api("PATCH /api/v1/expenses/{id}", h.APIUpdateExpense)
	api("DELETE /api/v1/expenses/{id}", h.APIDeleteExpense)
	api("PUT /api/v1/expenses/{id}/receipt", h.APIUploadReceipt)
	api("GET /api/v1/expenses/{id}/receipt", h.APIDownloadReceipt)

	api("GET /api/v1/invoices", h.APIListInvoices)
	api("POST /api/v1/invoices", h.APICreateInvoice)
	api("POST /api/v1/invoices/from-time", h.APIInvoiceFromTime)
	api("POST /api/v1/invoices/from-expenses", h.APIInvoiceFromExpenses)
	api("GET /api/v1/invoices/stats", h.APIInvoiceStats)
	api("GET /api/v1/invoices/{id}", h.APIGetInvoice)
	api("PATCH /api/v1/invoices/{id}", h.APIUpdateInvoice)
	api("PUT /api/v1/invoices/{id}/status", h.APIUpdateInvoiceStatus)
	api("DELETE /api/v1/invoices/{id}", h.APIDeleteInvoice)

	return h.Middleware(mux)
}
