package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/quietline/storefront/internal/domain/order"
	"github.com/quietline/storefront/internal/domain/reward"
	"github.com/quietline/storefront/internal/handler"
	"github.com/quietline/storefront/internal/storage/postgres"
	"github.com/quietline/storefront/pkg/health"
	"github.com/quietline/storefront/pkg/httpmiddleware"
	"github.com/quietline/storefront/pkg/refcode"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	variantRepo := postgres.NewVariantRepository(pool)
	memberRepo := postgres.NewMemberRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	rewardRepo := postgres.NewRewardRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	discountRepo := postgres.NewDiscountRepository(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)

	// Domain services.
	orderService := order.NewService(variantRepo, memberRepo, settingsRepo, orderRepo,
		func() string { return refcode.OrderNumber(time.Now()) },
	)
	rewardService := reward.NewService(rewardRepo, refcode.Voucher)

	// Hourly voucher expiry sweep.
	go expireVouchers(ctx, lg, rewardService)

	// HTTP handlers.
	h := handler.NewHandler(variantRepo, memberRepo, ledgerRepo, discountRepo, orderService, rewardService)
	sec := handler.NewSecurityHandler(apikeyRepo, []byte(cfg.APIKeyPepper))

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)

	mux.HandleFunc("GET /api/variants", h.ListVariants)
	mux.HandleFunc("GET /api/discount-codes/{code}", h.GetDiscountCode)
	mux.HandleFunc("GET /api/rewards", h.ListRewards)
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /api/rewards/redeem", h.Redeem)
	mux.HandleFunc("GET /api/members/{id}/orders", h.ListMemberOrders)
	mux.HandleFunc("GET /api/members/{id}/balance", h.MemberBalance)
	mux.HandleFunc("GET /api/members/{id}/ledger", h.MemberLedger)
	mux.HandleFunc("GET /api/members/{id}/vouchers", h.MemberVouchers)

	// Back-office routes are API-key gated.
	mux.Handle("PATCH /api/orders/{id}/status", sec.Require(http.HandlerFunc(h.UpdateOrderStatus)))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "api_key", "X-Member-ID"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// expireVouchers sweeps expired vouchers hourly until ctx is cancelled.
func expireVouchers(ctx context.Context, lg *zap.Logger, rewards *reward.Service) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := rewards.ExpireVouchers(ctx)
			if err != nil {
				lg.Error("Voucher expiry sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				lg.Info("Expired vouchers", zap.Int64("count", n))
			}
		}
	}
}
