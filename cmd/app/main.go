package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"review-service/configs"
	"review-service/internal/content"
	"review-service/internal/feed"
	"review-service/internal/kafka"
	"review-service/internal/migrate"
	"review-service/internal/ratelimit"
	"review-service/internal/session"
	"review-service/internal/shared/db"
	"review-service/internal/shared/httpx"
	"review-service/internal/shared/jwt"
	"review-service/internal/shared/redisx"
	"review-service/internal/social"
	"review-service/internal/storage/s3"
	"review-service/internal/user"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"gorm.io/plugin/opentelemetry/tracing"
)

func initLogging(cfg *configs.Config) {
	if cfg.Env != "dev" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func initOTEL(ctx context.Context, cfg *configs.Config) func(context.Context) error {
	endpoint := cfg.OTEL.Endpoint
	if endpoint == "" {
		endpoint = "otel-collector:4318"
	}
	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		log.Fatalf("otel exporter: %v", err)
	}
	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.OTEL.ServiceName),
		attribute.String("deployment.environment", cfg.Env),
	))
	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.OTEL.SampleRatio))),
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown
}

func main() {
	cfg := configs.Load()
	initLogging(cfg)

	if cfg.JWT.Secret == "" {
		if cfg.Env != "dev" {
			log.Fatal("JWT_SECRET is required")
		}
		cfg.JWT.Secret = "dev-secret"
		log.Warn("JWT_SECRET not set, using the dev secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := initOTEL(ctx, cfg)
	defer func() {
		c, cc := context.WithTimeout(context.Background(), 5*time.Second)
		defer cc()
		_ = shutdown(c)
	}()

	store, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer store.Close()
	if err := store.Base.Use(tracing.NewPlugin()); err != nil {
		log.Warnf("gorm tracing: %v", err)
	}
	if cfg.AutoMigrate {
		if err := migrate.AutoMigrateAll(store); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	var (
		deny    session.Denylist
		limiter *ratelimit.Limiter
	)
	rdb := redisx.Open(cfg.Redis)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.WithError(err).Warn("redis unavailable: in-process sessions, no rate limits")
		deny = session.NewMemory()
	} else {
		deny = session.NewRedis(rdb)
		limiter = ratelimit.New(rdb)
	}

	events, err := kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		log.Fatalf("kafka writer: %v", err)
	}
	defer events.Close()

	images, err := s3.New(cfg.S3)
	if err != nil {
		log.Fatalf("s3: %v", err)
	}
	if err := images.EnsureBucket(ctx); err != nil {
		log.WithError(err).Warn("s3 bucket check failed")
	}

	tokens := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	guard := httpx.NewAuthGuard(tokens, deny)

	userRepo := user.NewRepository(store)
	userSvc := user.NewService(userRepo)

	socialSvc := social.NewService(social.NewRepository(store), userRepo)

	contentSvc := content.NewService(content.NewRepository(store), images, events)

	feedSvc := feed.NewService(contentSvc, socialSvc, userRepo)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /healthz", httpx.Wrap(func(w http.ResponseWriter, r *http.Request) error {
		c, cc := context.WithTimeout(r.Context(), 2*time.Second)
		defer cc()
		if err := store.Ping(c); err != nil {
			return err
		}
		httpx.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
		return nil
	}))

	anon := func(pattern string, h httpx.HandlerFunc) {
		var hh http.Handler = httpx.Wrap(h)
		if limiter != nil {
			hh = limiter.LimitHTTP("auth", cfg.RateLimit.AuthPerWindow, cfg.RateLimit.Window, httpx.ClientIP, hh)
		}
		mux.Handle(pattern, hh)
	}
	protect := func(pattern string, fn httpx.IdentityHandlerFunc) {
		mux.Handle(pattern, guard.Wrap(fn))
	}
	write := func(pattern string, fn httpx.IdentityHandlerFunc) {
		if limiter != nil {
			fn = limiter.LimitUser("write", cfg.RateLimit.WritePerWindow, cfg.RateLimit.Window, fn)
		}
		protect(pattern, fn)
	}

	uh := user.NewHandler(userSvc, tokens, guard)
	anon("POST /auth/register", uh.Register)
	anon("POST /auth/login", uh.Login)
	protect("POST /auth/logout", uh.Logout)
	protect("GET /whoami", uh.WhoAmI)

	fh := feed.NewHandler(feedSvc)
	protect("GET /feed", fh.Home)
	protect("GET /feed/all", fh.All)
	protect("GET /users/{username}/posts", fh.Posts)

	ch := content.NewHandler(contentSvc)
	write("POST /tickets", ch.CreateTicket)
	protect("GET /tickets/{ticket_id}", ch.GetTicket)
	write("PUT /tickets/{ticket_id}", ch.UpdateTicket)
	write("DELETE /tickets/{ticket_id}", ch.DeleteTicket)
	protect("GET /tickets/{ticket_id}/image", ch.TicketImage)
	protect("GET /tickets/{ticket_id}/reviews", ch.ListTicketReviews)
	write("POST /tickets/{ticket_id}/reviews", ch.CreateReview)
	write("POST /reviews", ch.CreateTicketAndReview)
	protect("GET /reviews/{review_id}", ch.GetReview)
	write("PUT /reviews/{review_id}", ch.UpdateReview)
	write("DELETE /reviews/{review_id}", ch.DeleteReview)

	sh := social.NewHandler(socialSvc)
	write("POST /follows", sh.Follow)
	write("DELETE /follows/{username}", sh.Unfollow)
	protect("GET /users/{username}/following", sh.ListFollowing)
	protect("GET /users/{username}/followers", sh.ListFollowers)

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           otelhttp.NewHandler(mux, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		log.Infof("review-service listening on %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutting down...")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
