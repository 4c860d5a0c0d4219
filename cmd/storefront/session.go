package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/kv"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storefront"
)

// storefrontSession is one kv scope with everything built on top of it.
type storefrontSession struct {
	store      kv.Store
	cart       *cart.Store
	menu       *catalog.Menu
	dispatcher *storefront.Dispatcher
	publisher  events.CartEventsPublisher

	closers []func() error
}

func (s *storefrontSession) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func openSession(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (*storefrontSession, error) {
	s := &storefrontSession{}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	s.store = store
	s.closers = append(s.closers, closeStore)

	menu, err := catalog.Default()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.menu = menu

	s.publisher, err = openPublisher(cfg, store, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.closers = append(s.closers, s.publisher.Close)

	s.cart = cart.Open(ctx, store,
		cart.WithLogger(logger),
		cart.WithCountListener(func(count int) {
			logger.Debugf("cart count: %d", count)
		}),
	)
	s.dispatcher = storefront.NewDispatcher(
		s.cart,
		session.NewVisits(store),
		session.NewLocations(store, session.WithDetectDelay(cfg.LocateDelay)),
		menu,
		s.publisher,
		storefront.WithLogger(logger),
		storefront.WithCartID(cfg.StoreScope),
	)
	return s, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (kv.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return kv.NewMemory(), func() error { return nil }, nil

	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if cfg.RunMigrations {
			if err := db.RunSQLiteMigrations(sqlDB, logger); err != nil {
				_ = sqlDB.Close()
				return nil, nil, fmt.Errorf("db migrate: %w", err)
			}
		}
		logger.Debugf("using sqlite store at %s", cfg.SQLitePath)
		return kv.NewSQLiteStore(sqlDB, cfg.StoreScope), sqlDB.Close, nil

	case config.DriverPostgres:
		if cfg.RunMigrations {
			if err := db.RunPostgresMigrations(cfg.DatabaseDSN, logger); err != nil {
				return nil, nil, fmt.Errorf("db migrate: %w", err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		return kv.NewPostgresStore(pool, cfg.StoreScope), func() error { pool.Close(); return nil }, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis connect: %w", err)
		}
		store := kv.NewRedisStore(client, cfg.StoreScope)
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openPublisher(cfg config.Config, store kv.Store, logger *zap.SugaredLogger) (events.CartEventsPublisher, error) {
	if cfg.RabbitMQURL == "" {
		return events.NopPublisher{Logger: logger}, nil
	}

	conn, err := events.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, err
	}
	pub, err := events.NewRabbitPublisher(conn, events.NewSequencer(store), logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &connPublisher{RabbitPublisher: pub, close: conn.Close}, nil
}

// connPublisher also closes the AMQP connection it owns.
type connPublisher struct {
	*events.RabbitPublisher
	close func() error
}

func (p *connPublisher) Close() error {
	chErr := p.RabbitPublisher.Close()
	if err := p.close(); err != nil {
		return err
	}
	return chErr
}
