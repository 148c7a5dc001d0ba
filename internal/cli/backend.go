package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/idilsaglam/issuetracker/internal/auth"
	"github.com/idilsaglam/issuetracker/internal/config"
	"github.com/idilsaglam/issuetracker/internal/recommend"
	"github.com/idilsaglam/issuetracker/internal/shopify"
	"github.com/idilsaglam/issuetracker/internal/store"
	"github.com/idilsaglam/issuetracker/internal/store/cache"
	"github.com/idilsaglam/issuetracker/internal/store/jsonstore"
	"github.com/idilsaglam/issuetracker/internal/store/metafield"
)

// executor returns the admin GraphQL client, or nil with the file store.
func (a *app) executor() (shopify.Executor, error) {
	if a.cfg.Store != config.StoreShopify {
		return nil, nil
	}
	token := a.cfg.Token
	if token == "" {
		ti, err := auth.GetToken()
		if errors.Is(err, auth.ErrNoToken) {
			return nil, usagef("no token found. Set %s or run `issues auth login`", auth.EnvToken)
		}
		if err != nil {
			return nil, err
		}
		token = ti.Token
	}
	endpoint := a.cfg.Endpoint
	if endpoint == "" {
		endpoint = shopify.Endpoint(a.cfg.Shop, a.cfg.APIVersion)
	}
	return shopify.NewClient(endpoint, token,
		shopify.WithHTTPClient(&http.Client{Timeout: a.cfg.HTTPTimeout}),
		shopify.WithLogger(a.logger)), nil
}

// openStore assembles the configured backend with its optional redis cache
// and the metrics decorator.
func (a *app) openStore(ctx context.Context) (store.Store, shopify.Executor, error) {
	exec, err := a.executor()
	if err != nil {
		return nil, nil, err
	}

	var st store.Store
	if exec != nil {
		st = metafield.New(exec,
			metafield.WithSlot(a.cfg.Namespace, a.cfg.Key),
			metafield.WithDefinition(a.cfg.EnsureDefinition),
			metafield.WithLogger(a.logger))
	} else {
		st = jsonstore.New(a.cfg.DataDir)
	}

	if addr := a.cfg.Redis.Addr; addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", addr, err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		st = cache.New(st, rdb, a.cfg.Redis.TTL, a.logger)
		a.logger.Debug("issue cache enabled", "addr", addr, "ttl", a.cfg.Redis.TTL)
	}
	return store.Instrument(st, a.metrics), exec, nil
}

// recommender is nil when no backend is configured.
func (a *app) recommender() *recommend.Client {
	if a.cfg.BackendURL == "" {
		return nil
	}
	return recommend.NewClient(a.cfg.BackendURL, a.cfg.HTTPTimeout)
}
