package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/surekeys/rentals/internal/auth"
	"github.com/surekeys/rentals/internal/config"
	"github.com/surekeys/rentals/internal/db"
	"github.com/surekeys/rentals/internal/email"
	"github.com/surekeys/rentals/internal/listing"
	"github.com/surekeys/rentals/internal/media"
	"github.com/surekeys/rentals/internal/messaging"
	"github.com/surekeys/rentals/internal/web"
)

const devJWTSecret = "rentals-dev-secret"

// app holds the backing services shared by serve, worker and migrate.
// Accounts always live in SQLite; listings follow the storage driver.
type app struct {
	cfg      config.Config
	db       *sql.DB
	mongo    *mongo.Client
	redis    *redis.Client
	events   messaging.Publisher
	limiter  auth.Limiter
	users    *auth.UserStore
	listings *listing.Service
	closers  []func() error
}

// openApp connects every configured backend. Redis and Kafka are optional.
func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}
	if err := a.open(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) open(ctx context.Context) error {
	cfg := a.cfg
	var err error

	a.db, err = openSQLite(cfg)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, a.db.Close)
	a.users = auth.NewUserStore(a.db)

	var repo listing.Repository
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		mr, err := a.openMongo(ctx)
		if err != nil {
			return err
		}
		repo = mr
	default:
		repo = listing.NewSQLiteRepository(a.db)
	}

	a.limiter = auth.NewMemoryLimiter(0, 0)
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, a.redis.Close)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		repo = listing.NewCachedRepository(repo, a.redis, cfg.Redis.CacheTTL)
		a.limiter = auth.NewRedisLimiter(a.redis, 0, 0)
		slog.Info("redis enabled", "addr", cfg.Redis.Addr, "cache_ttl", cfg.Redis.CacheTTL)
	}

	a.events = messaging.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		a.events = messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, a.events.Close)
		slog.Info("publishing events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	a.listings = listing.NewService(repo, a.events)
	return nil
}

// openSQLite opens the configured database, or the default path.
func openSQLite(cfg config.Config) (*sql.DB, error) {
	path := cfg.Storage.SQLitePath
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

func (a *app) openMongo(ctx context.Context) (*listing.MongoRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(a.cfg.Storage.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	a.mongo = client
	a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	repo := listing.NewMongoRepository(client.Database(a.cfg.Storage.MongoDB))
	if err := repo.EnsureIndexes(connectCtx); err != nil {
		return nil, err
	}
	slog.Info("mongo listing store", "db", a.cfg.Storage.MongoDB)
	return repo, nil
}

// server builds the HTTP API on top of the opened backends.
func (a *app) server(ctx context.Context) (*web.Server, error) {
	secret := a.cfg.Auth.JWTSecret
	if secret == "" && a.cfg.DevMode {
		slog.Warn("no JWT secret configured, using the development secret")
		secret = devJWTSecret
	}
	issuer, err := auth.NewIssuer(secret, a.cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("configuring tokens (set RENTALS_JWT_SECRET): %w", err)
	}

	sender := email.New(a.cfg.EmailSender())
	accounts := auth.NewService(a.users, issuer, email.NewOTPMailer(sender), a.limiter)

	store, uploads, err := a.mediaStore(ctx)
	if err != nil {
		return nil, err
	}

	return web.NewServer(web.Options{
		Listings:      a.listings,
		Accounts:      accounts,
		Authenticator: auth.NewAuthenticator(issuer, a.users),
		Media:         store,
		Uploads:       uploads,
		CORSOrigins:   a.cfg.CORSOrigins,
		Health:        a.health,
	}), nil
}

// mediaStore picks GCS when a bucket is configured, otherwise local disk
// served by the API itself.
func (a *app) mediaStore(ctx context.Context) (media.Store, http.Handler, error) {
	if bucket := a.cfg.Media.GCSBucket; bucket != "" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("creating storage client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		slog.Info("uploading images to GCS", "bucket", bucket)
		return media.NewGCSStore(client, bucket), nil, nil
	}

	store, err := media.NewDiskStore(a.cfg.Media.UploadDir, strings.TrimRight(a.cfg.BaseURL, "/")+"/uploads")
	if err != nil {
		return nil, nil, err
	}
	return store, store.Handler(), nil
}

// health pings every backend the server depends on.
func (a *app) health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var errs []error
	if err := a.db.PingContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("sqlite: %w", err))
	}
	if a.mongo != nil {
		if err := a.mongo.Ping(ctx, nil); err != nil {
			errs = append(errs, fmt.Errorf("mongo: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// close releases backends in reverse order of opening.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("closing backend", "error", err)
		}
	}
	a.closers = nil
}
