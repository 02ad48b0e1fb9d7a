package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promopress/promopress/internal/clock"
	"github.com/promopress/promopress/internal/domain"
	"github.com/promopress/promopress/internal/mailer"
	"github.com/promopress/promopress/internal/pinetwork"
	"github.com/promopress/promopress/internal/pricing"
	"github.com/promopress/promopress/internal/repository"
	appvalidator "github.com/promopress/promopress/internal/validator"
	"github.com/promopress/promopress/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	mailer    mailer.Mailer
	clock     clock.Clock

	userRepo        domain.UserRepository
	articleRepo     domain.ArticleRepository
	categoryRepo    domain.CategoryRepository
	paymentRepo     domain.PaymentRepository
	sessionLinkRepo domain.SessionLinkRepository

	piVerifier  domain.PiVerifier
	priceSource pricing.Source

	// slotLocks serializes slot-check-then-grant per (plan, category) so two
	// concurrent completions cannot both take the last slot.
	slotLocks *keyedMutex

	wg sync.WaitGroup
}

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Auth             AuthConfig
	Pi               PiConfig
	Pricing          PricingConfig
	Sweeper          SweeperConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host             string
	Port             int
	Username         string
	Password         string
	Sender           string
	ContactRecipient string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type PiConfig struct {
	PlatformURL string
	Sandbox     bool
}

type PricingConfig struct {
	TickerURL string
	CacheTTL  time.Duration
}

type SweeperConfig struct {
	Interval    time.Duration
	GracePeriod time.Duration
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "PromoPress <no-reply@promopress.app>", "SMTP sender")
	flag.StringVar(&cfg.SMTP.ContactRecipient, "smtp-contact-recipient", "hello@promopress.app", "Contact form recipient")

	flag.StringVar(&cfg.Auth.JWTSecret, "jwt-secret", "", "HMAC secret for platform tokens")
	flag.DurationVar(&cfg.Auth.TokenTTL, "jwt-ttl", 24*time.Hour, "Platform token lifetime")

	flag.StringVar(&cfg.Pi.PlatformURL, "pi-platform-url", pinetwork.DefaultBaseURL, "Pi platform API base URL")
	flag.BoolVar(&cfg.Pi.Sandbox, "pi-sandbox", true, "Record payments as sandbox payments")

	flag.StringVar(&cfg.Pricing.TickerURL, "price-ticker-url", pricing.DefaultTickerURL, "PI-USD ticker endpoint")
	flag.DurationVar(&cfg.Pricing.CacheTTL, "price-cache-ttl", pricing.DefaultCacheTTL, "PI-USD price cache TTL")

	flag.DurationVar(&cfg.Sweeper.Interval, "sweeper-interval", 5*time.Minute, "How often to sweep stale payments and session links")
	flag.DurationVar(&cfg.Sweeper.GracePeriod, "sweeper-grace-period", 10*time.Minute, "Minimum age before a stale record is swept")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	smtpMailer := mailer.NewSMTPMailer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.Sender,
	)

	clk := clock.NewSystem()
	priceSource := pricing.NewCachedSource(pricing.NewOKXSource(cfg.Pricing.TickerURL), clk, cfg.Pricing.CacheTTL)
	piVerifier := pinetwork.NewVerifier(cfg.Pi.PlatformURL)

	app := NewApplication(cfg, logger, db, redisClient, smtpMailer, piVerifier, priceSource, clk)

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	// With a collector configured, logs fan out to stdout and OTLP.
	if cfg.OtelCollectorUrl != "" {
		app.logger = slog.New(NewMultiHandler(
			logger.Handler(),
			otelslog.NewHandler("promopress-api"),
		))
	}

	return app.serve()
}

// NewApplication wires repositories and services over already-open connections.
// Kept separate from Run so the integration tests can build an app against
// containers.
func NewApplication(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	appMailer mailer.Mailer,
	piVerifier domain.PiVerifier,
	priceSource pricing.Source,
	clk clock.Clock) *Application {

	return &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redisClient,
		validator:       appvalidator.NewValidator(),
		mailer:          appMailer,
		clock:           clk,
		userRepo:        repository.NewPostgresUserRepository(db),
		articleRepo:     repository.NewPostgresArticleRepository(db),
		categoryRepo:    repository.NewPostgresCategoryRepository(db),
		paymentRepo:     repository.NewPostgresPaymentRepository(db),
		sessionLinkRepo: repository.NewPostgresSessionLinkRepository(db),
		piVerifier:      piVerifier,
		priceSource:     priceSource,
		slotLocks:       newKeyedMutex(),
	}
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	app.startSweeper(sweeperCtx)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		stopSweeper()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		app.wg.Wait()
		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		stopSweeper()
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
