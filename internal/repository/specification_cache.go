package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spec-kit/asset-desk/internal/domain"
)

// Cache is the key/value surface the catalog cache needs. Any Get error is
// treated as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

const specCachePrefix = "spec:modelo:"

type cachedSpecificationRepository struct {
	SpecificationRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSpecificationRepository wraps inner with a read-through cache on
// GetByModelo. Cache failures degrade to the inner repository. A non-positive
// ttl disables caching.
func NewCachedSpecificationRepository(inner SpecificationRepository, cache Cache, ttl time.Duration, logger *zap.Logger) SpecificationRepository {
	if cache == nil || ttl <= 0 {
		return inner
	}
	return &cachedSpecificationRepository{
		SpecificationRepository: inner,
		cache:                   cache,
		ttl:                     ttl,
		logger:                  logger,
	}
}

func (r *cachedSpecificationRepository) GetByModelo(ctx context.Context, modelo string) (*domain.Specification, error) {
	key := specCachePrefix + modelo
	if raw, err := r.cache.Get(ctx, key); err == nil {
		var spec domain.Specification
		if err := json.Unmarshal(raw, &spec); err == nil {
			return &spec, nil
		}
	}

	spec, err := r.SpecificationRepository.GetByModelo(ctx, modelo)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := r.cache.Set(ctx, key, raw, r.ttl); err != nil {
		r.logger.Warn("cache specification", zap.String("modelo", modelo), zap.Error(err))
	}
	return spec, nil
}

func (r *cachedSpecificationRepository) Update(ctx context.Context, spec *domain.Specification) error {
	previous, err := r.SpecificationRepository.GetByID(ctx, spec.ID)
	if err != nil {
		return err
	}
	if err := r.SpecificationRepository.Update(ctx, spec); err != nil {
		return err
	}
	r.invalidate(ctx, previous.Modelo, spec.Modelo)
	return nil
}

func (r *cachedSpecificationRepository) Delete(ctx context.Context, id string) error {
	previous, err := r.SpecificationRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.SpecificationRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, previous.Modelo)
	return nil
}

func (r *cachedSpecificationRepository) invalidate(ctx context.Context, modelos ...string) {
	keys := make([]string, 0, len(modelos))
	for _, modelo := range modelos {
		keys = append(keys, specCachePrefix+modelo)
	}
	if err := r.cache.Del(ctx, keys...); err != nil {
		r.logger.Warn("invalidate specification cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
