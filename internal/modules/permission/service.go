package permission

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"coursedesk/internal/domain"
)

var (
	ErrInvalidRole = errors.New("invalid role")
	ErrInvalidPage = errors.New("invalid page")
)

type permissionRepo interface {
	List(ctx context.Context) ([]domain.PagePermission, error)
	AllowedPages(ctx context.Context, role domain.UserRole) ([]string, error)
	Upsert(ctx context.Context, p *domain.PagePermission) error
}

// Service answers "may this role open that page". Lookups are cached in Redis
// per role when a client is configured.
type Service struct {
	repo   permissionRepo
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewService(repo permissionRepo, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(role domain.UserRole) string {
	return "coursedesk:pages:" + string(role)
}

// AllowedPages returns the sorted page list for role.
func (s *Service) AllowedPages(ctx context.Context, role domain.UserRole) ([]string, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey(role)).Result()
		if err == nil {
			var pages []string
			if json.Unmarshal([]byte(cached), &pages) == nil {
				return pages, nil
			}
			s.logger.Warn("bad cached page list", "role", role)
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Error("redis get failed", "error", err, "role", role)
		}
	}

	pages, err := s.repo.AllowedPages(ctx, role)
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []string{}
	}

	if s.rdb != nil {
		if data, err := json.Marshal(pages); err == nil {
			if err := s.rdb.Set(ctx, cacheKey(role), data, s.ttl).Err(); err != nil {
				s.logger.Error("redis set failed", "error", err, "role", role)
			}
		}
	}
	return pages, nil
}

// Allowed reports whether role may open page. Admins always may.
func (s *Service) Allowed(ctx context.Context, role domain.UserRole, page string) (bool, error) {
	if role == domain.RoleAdmin {
		return true, nil
	}
	pages, err := s.AllowedPages(ctx, role)
	if err != nil {
		return false, err
	}
	return slices.Contains(pages, page), nil
}

func (s *Service) List(ctx context.Context) ([]domain.PagePermission, error) {
	return s.repo.List(ctx)
}

// Set stores one flag and drops the cached list of that role.
func (s *Service) Set(ctx context.Context, req SetPermissionRequest) (*domain.PagePermission, error) {
	role := domain.UserRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if !slices.Contains(domain.AllPages(), req.Page) {
		return nil, ErrInvalidPage
	}

	p := &domain.PagePermission{Role: role, Page: req.Page, Allowed: *req.Allowed}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if err := s.rdb.Del(ctx, cacheKey(role)).Err(); err != nil {
			s.logger.Error("redis del failed", "error", err, "role", role)
		}
	}
	return p, nil
}
