package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alem-hub/student-insights/config"
	"github.com/alem-hub/student-insights/internal/application/query"
	"github.com/alem-hub/student-insights/internal/domain/student"
	"github.com/alem-hub/student-insights/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/student-insights/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/student-insights/internal/infrastructure/persistence/roster"
	"github.com/alem-hub/student-insights/pkg/logger"
)

// engine builds the roster source from config, loads it once and returns an
// Engine over the snapshot. cleanup releases the connections the source opened.
func (a *app) engine(ctx context.Context) (*query.Engine, func(), error) {
	source, cleanup, err := a.source(ctx)
	if err != nil {
		return nil, nil, err
	}

	loadCtx := ctx
	if a.cfg.Source.Kind == config.SourcePostgres && a.cfg.Database.QueryTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, a.cfg.Database.QueryTimeout)
		defer cancel()
	}

	engine, err := query.LoadEngine(loadCtx, source, a.log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return engine, cleanup, nil
}

func (a *app) source(ctx context.Context) (student.Source, func(), error) {
	var (
		source  student.Source
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch a.cfg.Source.Kind {
	case config.SourcePostgres:
		conn, err := a.connectPostgres(ctx)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, conn.Close)
		source = postgres.NewStudentRepository(conn, a.log)
	default:
		source = roster.NewFileSource(a.cfg.Source.File)
	}

	a.log.Debug("roster source selected", logger.Source(string(a.cfg.Source.Kind)))

	if !a.cfg.Redis.Enabled {
		return source, cleanup, nil
	}

	cache, err := a.connectRedis(ctx)
	if err != nil {
		// Running without the snapshot cache only costs a reload.
		a.log.Warn("redis unavailable, loading roster directly", logger.Err(err))
		return source, cleanup, nil
	}
	closers = append(closers, func() { _ = cache.Close() })

	return a.rosterCache(source, cache, a.cfg.Source.Kind), cleanup, nil
}

func (a *app) rosterCache(source student.Source, store redis.SnapshotStore, kind config.SourceKind) *redis.RosterCache {
	return redis.NewRosterCache(source, store, string(kind), a.cfg.Redis.CacheTTL, a.log)
}

func (a *app) connectPostgres(ctx context.Context) (*postgres.Connection, error) {
	if a.cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL is required for this command")
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = a.cfg.Database.URL
	pgCfg.MaxConns = int32(a.cfg.Database.MaxConns)

	conn, err := postgres.NewConnection(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.log.Info("connected to PostgreSQL", logger.Int("max_conns", a.cfg.Database.MaxConns))
	return conn, nil
}

func (a *app) connectRedis(ctx context.Context) (*redis.Cache, error) {
	redisCfg := redis.DefaultConfig()
	redisCfg.Host = a.cfg.Redis.Host
	redisCfg.Port = a.cfg.Redis.Port
	redisCfg.Password = a.cfg.Redis.Password
	redisCfg.DB = a.cfg.Redis.DB

	cache, err := redis.NewCache(ctx, redisCfg)
	if err != nil {
		return nil, err
	}
	a.log.Info("connected to Redis", logger.String("addr", redisCfg.Addr()))
	return cache, nil
}

// invalidateSnapshot drops the cached roster of source after its data changed.
func (a *app) invalidateSnapshot(ctx context.Context, source student.Source, kind config.SourceKind) {
	if !a.cfg.Redis.Enabled {
		return
	}
	cache, err := a.connectRedis(ctx)
	if err != nil {
		a.log.Warn("cannot invalidate roster snapshot", logger.Err(err))
		return
	}
	defer cache.Close()

	if err := a.rosterCache(source, cache, kind).Invalidate(ctx); err != nil {
		a.log.Warn("cannot invalidate roster snapshot", logger.Err(err))
		return
	}
	a.log.Info("roster snapshot invalidated", logger.Source(string(kind)))
}
