package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SuleymanovTahir/beauty-crm-sub004/internal/upstream"
	"github.com/SuleymanovTahir/beauty-crm-sub004/pkg/logging"
)

// Source is the upstream catalog surface the store caches.
type Source interface {
	GetServices(ctx context.Context) ([]upstream.Service, error)
	GetUsers(ctx context.Context) ([]upstream.User, error)
	GetHolidays(ctx context.Context) ([]upstream.Holiday, error)
}

// Store serves catalog data from Redis, falling through to the scheduler on
// a cache miss. A broken Redis degrades to direct upstream fetches rather
// than failing the request.
type Store struct {
	redis  *redis.Client
	source Source
	ttl    time.Duration
	logger *logging.Logger
}

// NewStore creates a catalog store. redisClient may be nil in tests or
// degraded deployments; every read then goes upstream.
func NewStore(redisClient *redis.Client, source Source, ttl time.Duration, logger *logging.Logger) *Store {
	if source == nil {
		panic("catalog: source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{redis: redisClient, source: source, ttl: ttl, logger: logger}
}

const (
	servicesKey = "catalog:services"
	mastersKey  = "catalog:masters"
	holidaysKey = "catalog:holidays"
)

// Services returns the cached service catalog.
func (s *Store) Services(ctx context.Context) ([]Service, error) {
	var services []Service
	if s.cachedGet(ctx, servicesKey, &services) {
		return services, nil
	}

	raw, err := s.source.GetServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch services: %w", err)
	}
	services = make([]Service, 0, len(raw))
	for _, r := range raw {
		services = append(services, FromUpstreamService(r))
	}
	s.cachedSet(ctx, servicesKey, services)
	return services, nil
}

// Masters returns the cached staff list.
func (s *Store) Masters(ctx context.Context) ([]Master, error) {
	var masters []Master
	if s.cachedGet(ctx, mastersKey, &masters) {
		return masters, nil
	}

	raw, err := s.source.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch users: %w", err)
	}
	masters = make([]Master, 0, len(raw))
	for _, u := range raw {
		if m, ok := FromUpstreamUser(u); ok {
			masters = append(masters, m)
		}
	}
	s.cachedSet(ctx, mastersKey, masters)
	return masters, nil
}

// Holidays returns the cached non-working days.
func (s *Store) Holidays(ctx context.Context) ([]Holiday, error) {
	var holidays []Holiday
	if s.cachedGet(ctx, holidaysKey, &holidays) {
		return holidays, nil
	}

	raw, err := s.source.GetHolidays(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch holidays: %w", err)
	}
	holidays = make([]Holiday, 0, len(raw))
	for _, h := range raw {
		holidays = append(holidays, Holiday{Date: h.Date, Name: h.Name})
	}
	s.cachedSet(ctx, holidaysKey, holidays)
	return holidays, nil
}

// ServiceByID looks a service up in the cached catalog.
func (s *Store) ServiceByID(ctx context.Context, id string) (*Service, error) {
	services, err := s.Services(ctx)
	if err != nil {
		return nil, err
	}
	for i := range services {
		if services[i].ID == id {
			return &services[i], nil
		}
	}
	return nil, nil
}

// MasterByID looks a master up in the cached staff list.
func (s *Store) MasterByID(ctx context.Context, id string) (*Master, error) {
	masters, err := s.Masters(ctx)
	if err != nil {
		return nil, err
	}
	for i := range masters {
		if masters[i].ID == id {
			return &masters[i], nil
		}
	}
	return nil, nil
}

// CandidatesFor returns the masters capable of performing the service.
func (s *Store) CandidatesFor(ctx context.Context, serviceID string) ([]Master, error) {
	masters, err := s.Masters(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]Master, 0, len(masters))
	for _, m := range masters {
		if m.CanPerform(serviceID) {
			candidates = append(candidates, m)
		}
	}
	return candidates, nil
}

func (s *Store) cachedGet(ctx context.Context, key string, out interface{}) bool {
	if s.redis == nil {
		return false
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		s.logger.Warn("catalog cache read failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("catalog cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) cachedSet(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("catalog cache marshal failed", "key", key, "error", err)
		return
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("catalog cache write failed", "key", key, "error", err)
	}
}
