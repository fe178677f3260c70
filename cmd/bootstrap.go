package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tokoshop/internal/cache"
	"tokoshop/internal/config"
	"tokoshop/internal/database"
	"tokoshop/internal/events"
	"tokoshop/internal/handlers"
	"tokoshop/internal/logger"
	"tokoshop/internal/repositories"
	"tokoshop/internal/server"
	"tokoshop/internal/telemetry"
	"tokoshop/pkg/rabbitmq"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// deps holds the connections of one process.
type deps struct {
	cfg     *config.Config
	db      *gorm.DB
	mongo   *mongo.Database
	redis   *cache.Client
	mq      *rabbitmq.Client
	tracing *telemetry.Tracing
	closers []func(context.Context) error
}

type connectOptions struct {
	documentStore bool
	broker        bool
	optionalCache bool
}

// connect opens the relational database and whichever other backends opts asks
// for. Redis and the broker are best effort: the process runs without them.
func connect(ctx context.Context, cfg *config.Config, opts connectOptions) (*deps, error) {
	logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Service)

	d := &deps{cfg: cfg}
	tracing, err := telemetry.InitTracing(cfg.Tracing.JaegerEndpoint, "tokoshop-"+cfg.Service)
	if err != nil {
		return nil, err
	}
	d.tracing = tracing
	d.closers = append(d.closers, tracing.Shutdown)

	d.db, err = database.Open(ctx, cfg.DB)
	if err != nil {
		d.close(ctx)
		return nil, err
	}
	d.closers = append(d.closers, func(context.Context) error { return database.Close(d.db) })
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(d.db, cfg.DB.Driver); err != nil {
			d.close(ctx)
			return nil, err
		}
	}

	if opts.documentStore {
		db, disconnect, err := database.OpenMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			d.close(ctx)
			return nil, err
		}
		d.mongo = db
		d.closers = append(d.closers, disconnect)
	}

	if opts.optionalCache && cfg.Redis.Addr != "" {
		client, err := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("redis unavailable, running without cache", "addr", cfg.Redis.Addr, "error", err)
		} else {
			d.redis = client
			d.closers = append(d.closers, func(context.Context) error { return client.Close() })
		}
	}

	if opts.broker && cfg.RabbitMQ.URL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange})
		if err != nil {
			slog.Warn("rabbitmq unavailable, order events disabled", "error", err)
		} else {
			d.mq = client
			d.closers = append(d.closers, func(context.Context) error { return client.Close() })
		}
	}

	return d, nil
}

// stores builds the repositories on the open connections.
func (d *deps) stores(ctx context.Context) (server.Stores, error) {
	st := server.GORMStores(d.db)
	if d.mongo != nil {
		favorites := repositories.NewMongoFavoriteRepository(d.mongo)
		if err := favorites.EnsureIndexes(ctx); err != nil {
			return server.Stores{}, fmt.Errorf("failed to create favorite indexes: %w", err)
		}
		st.Favorites = favorites
		st.Contacts = repositories.NewMongoContactRepository(d.mongo)
		st.Activity = repositories.NewMongoActivityRepository(d.mongo)
	}
	if d.redis != nil {
		st.Cache = d.redis
	}
	st.Publisher = events.NopPublisher{}
	if d.mq != nil {
		st.Publisher = events.NewRabbitPublisher(d.mq)
	}
	return st, nil
}

// healthChecks probes every backend this process connected to.
func (d *deps) healthChecks() map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{
		"db": func(ctx context.Context) error { return database.Ping(ctx, d.db) },
	}
	if d.mongo != nil {
		checks["mongo"] = func(ctx context.Context) error { return database.PingMongo(ctx, d.mongo) }
	}
	if d.redis != nil {
		checks["redis"] = d.redis.Ping
	}
	if d.mq != nil {
		checks["rabbitmq"] = func(context.Context) error {
			if !d.mq.Healthy() {
				return errors.New("connection closed")
			}
			return nil
		}
	}
	return checks
}

// close releases connections in reverse order of opening.
func (d *deps) close(ctx context.Context) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			slog.Warn("failed to close dependency", "error", err)
		}
	}
	d.closers = nil
}
