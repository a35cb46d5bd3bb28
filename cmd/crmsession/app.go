package main

import (
	"context"
	"io"

	"github.com/jrsteele09/go-crm-session/authclient"
	"github.com/jrsteele09/go-crm-session/fixture"
	"github.com/jrsteele09/go-crm-session/internal/config"
	"github.com/jrsteele09/go-crm-session/session"
	"github.com/jrsteele09/go-crm-session/settings"
	"github.com/jrsteele09/go-crm-session/storage"
	"github.com/jrsteele09/go-crm-session/storage/filestore"
	"github.com/jrsteele09/go-crm-session/storage/redisstore"
	storagefake "github.com/jrsteele09/go-crm-session/storage/repofake"
	"github.com/jrsteele09/go-crm-session/storage/sqlitestore"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// app is everything a command needs, wired from config.
type app struct {
	config  config.Config
	out     io.Writer
	store   storage.Repo
	backend session.Backend
	manager *session.Manager
	editor  *settings.Editor
	closers []func() error
}

func newApp(ctx context.Context, c config.Config, out io.Writer) (*app, error) {
	a := &app{config: c, out: out}

	store, err := a.newStore(ctx)
	if err != nil {
		return nil, err
	}
	a.store = store

	backend, err := newBackend(c)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.backend = backend

	m, err := session.New(backend, store,
		session.WithLogger(log.Logger),
		session.WithRequestTimeout(c.GetAPITimeout()),
		session.WithRefreshLeeway(c.GetRefreshLeeway()),
		session.WithNavigator(session.NavigatorFunc(func() {
			log.Info().Msg("not signed in, run: crmsession login -email <email> -password <password>")
		})),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.manager = m
	a.editor = settings.NewEditor(backend, m)
	return a, nil
}

func (a *app) newStore(ctx context.Context) (storage.Repo, error) {
	c := a.config
	driver := c.GetStorageDriver()
	log.Debug().Str("driver", string(driver)).Msg("opening session storage")

	switch driver {
	case config.StorageMemory:
		return storagefake.NewFakeStorageRepo(), nil
	case config.StorageSQLite:
		repo, err := sqlitestore.NewSQLiteRepo(c.GetStoragePath())
		if err != nil {
			return nil, errors.Wrap(err, "[newStore] sqlite")
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = a.Close()
			return nil, errors.Wrapf(err, "[newStore] redis %s", c.GetRedisAddr())
		}
		repo, err := redisstore.NewRedisRepo(rdb, c.GetStorageNamespace())
		if err != nil {
			_ = a.Close()
			return nil, errors.Wrap(err, "[newStore] redis")
		}
		return repo, nil
	default:
		repo, err := filestore.NewFileRepo(c.GetStoragePath())
		if err != nil {
			return nil, errors.Wrap(err, "[newStore] file")
		}
		return repo, nil
	}
}

func newBackend(c config.Config) (session.Backend, error) {
	switch c.GetAuthBackend() {
	case config.BackendFixture:
		log.Warn().Msg("using the static fixture backend, sessions do not outlive the process")
		b, err := fixture.New(fixture.WithLogger(log.Logger))
		if err != nil {
			return nil, errors.Wrap(err, "[newBackend] fixture")
		}
		return b, nil
	default:
		client, err := authclient.New(c.GetAPIBaseURL(),
			authclient.WithTimeout(c.GetAPITimeout()),
			authclient.WithLogger(log.Logger),
		)
		if err != nil {
			return nil, errors.Wrap(err, "[newBackend] remote")
		}
		return client, nil
	}
}

func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
