package api

import (
	"context"

	"github.com/catalogd/catalog-server/internal/ratelimit"
	"github.com/catalogd/catalog-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth   *service.AuthService
	Store  *service.StoreService
	Item   *service.ItemService
	Tag    *service.TagService
	User   *service.UserService
	Search *service.SearchService // nil when search is disabled
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the HTTP layer.
type Options struct {
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string
	// AuthLimiter throttles /login and /register per client IP. Nil disables it.
	AuthLimiter *ratelimit.KeyedRateLimiter
}
