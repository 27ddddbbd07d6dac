package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/merchkit/order-service/internal/domain/analytics"
	"github.com/merchkit/order-service/internal/domain/order"
	"github.com/merchkit/order-service/internal/handler"
	"github.com/merchkit/order-service/internal/peer"
	"github.com/merchkit/order-service/internal/storage/postgres"
	"github.com/merchkit/order-service/pkg/health"
	"github.com/merchkit/order-service/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	loc, err := time.LoadLocation(cfg.AnalyticsTimezone)
	if err != nil {
		return errors.Wrapf(err, "load analytics timezone %q", cfg.AnalyticsTimezone)
	}

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service. Peer probes gate readiness so the instance is
	// not routed traffic while its upstreams are unreachable.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	probeClient := &http.Client{Timeout: cfg.PeerTimeout}
	for name, base := range map[string]string{
		"identity": cfg.IdentityURL,
		"coupon":   cfg.CouponURL,
		"product":  cfg.ProductURL,
	} {
		if base == "" {
			continue
		}
		healthSvc.AddReadinessCheck(name, cfg.PeerTimeout, health.HTTPGetCheck(probeClient, base))
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories and peer clients.
	orderRepo := postgres.NewOrderRepository(pool)
	identityClient := peer.NewIdentityClient(cfg.IdentityURL, cfg.ServiceToken, cfg.PeerTimeout)
	couponClient := peer.NewCouponClient(cfg.CouponURL, cfg.ServiceToken, cfg.PeerTimeout)
	productClient := peer.NewProductClient(cfg.ProductURL, cfg.ServiceToken, cfg.PeerTimeout)

	// Domain services.
	enricher := order.NewEnricher(identityClient, couponClient, productClient, cfg.PeerTimeout)
	orderService := order.NewService(orderRepo, enricher)
	analyticsService := analytics.NewService(orderRepo, loc)

	// HTTP routes: health endpoints stay unauthenticated, everything under
	// /api requires a caller identity.
	h := handler.NewHandler(orderService, analyticsService)
	router := chi.NewRouter()
	router.Get("/livez", healthSvc.LiveEndpoint)
	router.Get("/readyz", healthSvc.ReadyEndpoint)
	router.Route("/api", func(r chi.Router) {
		r.Use(handler.Auth(cfg.ServiceToken))
		h.Routes(r)
	})

	wrapped := httpmiddleware.Wrap(router,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", "Authorization", "X-User"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.LogRequests(),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(wrapped, "order-api",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
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
