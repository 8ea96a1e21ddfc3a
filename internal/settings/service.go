package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/slyyfoxx/foxxtalk/internal/cache"
	"github.com/slyyfoxx/foxxtalk/internal/store"
)

// Store persists raw setting documents.
type Store interface {
	Get(ctx context.Context, name string) (*store.Setting, error)
	Put(ctx context.Context, name string, data []byte, userID string) error
}

// Service loads and saves the typed documents. Reads go through the cache;
// saves write the store and then refresh the cache. A failing cache is logged
// and bypassed.
type Service struct {
	store  Store
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewService(st Store, c cache.Cache, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, cache: c, ttl: ttl, logger: logger}
}

func (s *Service) Landing(ctx context.Context) (Landing, error) {
	return load(ctx, s, store.SettingLanding, DefaultLanding)
}

func (s *Service) SaveLanding(ctx context.Context, l Landing, userID string) (Landing, error) {
	if err := l.normalize(); err != nil {
		return Landing{}, err
	}
	return l, save(ctx, s, store.SettingLanding, l, userID)
}

func (s *Service) Blog(ctx context.Context) (Blog, error) {
	return load(ctx, s, store.SettingBlog, DefaultBlog)
}

func (s *Service) SaveBlog(ctx context.Context, b Blog, userID string) (Blog, error) {
	if err := b.normalize(); err != nil {
		return Blog{}, err
	}
	return b, save(ctx, s, store.SettingBlog, b, userID)
}

func (s *Service) Global(ctx context.Context) (Global, error) {
	return load(ctx, s, store.SettingGlobal, DefaultGlobal)
}

func (s *Service) SaveGlobal(ctx context.Context, g Global, userID string) (Global, error) {
	if err := g.normalize(); err != nil {
		return Global{}, err
	}
	return g, save(ctx, s, store.SettingGlobal, g, userID)
}

func cacheKey(name string) string { return "settings:" + name }

// load returns the stored document merged over def(); fields absent from the
// stored JSON keep their defaults.
func load[T any](ctx context.Context, s *Service, name string, def func() T) (T, error) {
	raw, err := s.cache.Get(ctx, cacheKey(name))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("settings cache read failed", "name", name, "error", err)
		}
		st, err := s.store.Get(ctx, name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return def(), nil
		case err != nil:
			return def(), fmt.Errorf("load %s settings: %w", name, err)
		}
		raw = []byte(st.Data)
		if err := s.cache.Set(ctx, cacheKey(name), raw, s.ttl); err != nil {
			s.logger.Warn("settings cache write failed", "name", name, "error", err)
		}
	}

	v := def()
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Error("stored settings are not valid JSON; using defaults", "name", name, "error", err)
		return def(), nil
	}
	return v, nil
}

func save[T any](ctx context.Context, s *Service, name string, v T, userID string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s settings: %w", name, err)
	}
	if err := s.store.Put(ctx, name, raw, userID); err != nil {
		return fmt.Errorf("save %s settings: %w", name, err)
	}
	if err := s.cache.Set(ctx, cacheKey(name), raw, s.ttl); err != nil {
		s.logger.Warn("settings cache refresh failed", "name", name, "error", err)
		_ = s.cache.Delete(ctx, cacheKey(name))
	}
	return nil
}
