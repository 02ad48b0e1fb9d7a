package integration_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promopress/promopress/internal/app"
	"github.com/promopress/promopress/internal/clock"
	"github.com/promopress/promopress/internal/domain"
	"github.com/promopress/promopress/internal/mailer"
	"github.com/promopress/promopress/internal/mocks"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// testNow anchors the application clock for the whole suite so expiration
// stacking is exact. It is derived from wall time so platform tokens issued
// by the login handler are still valid when parsed.
var testNow = time.Now().UTC().Truncate(time.Second)

type TestApp struct {
	App         *app.Application
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	Mailer      *mailer.MockMailer
	Verifier    *StubPiVerifier
}

// StubPiVerifier stands in for the Pi platform API. Scenarios flip its fields
// to simulate valid tokens, rejections, and outages.
type StubPiVerifier struct {
	Identity *domain.PiIdentity
	Err      error
}

func (s *StubPiVerifier) VerifyAccessToken(ctx context.Context, accessToken string) (*domain.PiIdentity, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Identity, nil
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mockMailer := &mailer.MockMailer{}

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	verifier := &StubPiVerifier{
		Identity: &domain.PiIdentity{PiID: TestUserPiID, Username: TestUserName},
	}
	priceSource := &mocks.FixedPriceSource{Price: decimal.RequireFromString("0.5")}

	application := app.NewApplication(
		cfg,
		logger,
		db,
		redisClient,
		mockMailer,
		verifier,
		priceSource,
		clock.NewFixed(testNow),
	)

	return &TestApp{
		App:         application,
		DB:          db,
		RedisClient: redisClient,
		Mailer:      mockMailer,
		Verifier:    verifier,
	}, nil
}
