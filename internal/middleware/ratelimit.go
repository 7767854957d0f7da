package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	apperrors "autoshop/internal/errors"
)

// Limit is a budget of Events per window Per.
type Limit struct {
	Events int
	Per    time.Duration
}

// Route budgets.
var (
	LoginLimit        = Limit{Events: 5, Per: time.Minute}
	RegisterLimit     = Limit{Events: 3, Per: time.Hour}
	TicketCreateLimit = Limit{Events: 10, Per: time.Minute}
	TicketEditLimit   = Limit{Events: 30, Per: time.Minute}
	UpdateLimit       = Limit{Events: 20, Per: time.Minute}
	DeleteLimit       = Limit{Events: 10, Per: time.Hour}
	AssignLimit       = Limit{Events: 10, Per: time.Hour}
)

// RateLimiter builds per-route limiting. Each call owns a separate in-memory store,
// keyed by the authenticated user when present and the client IP otherwise.
type RateLimiter struct {
	enabled bool
}

// NewRateLimiter returns a limiter factory; a disabled one yields pass-through middleware.
func NewRateLimiter(enabled bool) *RateLimiter {
	return &RateLimiter{enabled: enabled}
}

// Limit returns middleware enforcing l.
func (r *RateLimiter) Limit(l Limit) echo.MiddlewareFunc {
	if !r.enabled || l.Events <= 0 || l.Per <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(l.Events) / l.Per.Seconds()),
		Burst:     l.Events,
		ExpiresIn: l.Per,
	})

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store:               store,
		IdentifierExtractor: clientKey,
		ErrorHandler: func(c echo.Context, err error) error {
			return reject(c, apperrors.ErrRateLimited)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return reject(c, apperrors.ErrRateLimited)
		},
	})
}

func clientKey(c echo.Context) (string, error) {
	if identity := CurrentIdentity(c); identity != nil {
		return "user:" + strconv.FormatUint(uint64(identity.UserID), 10), nil
	}
	return "ip:" + c.RealIP(), nil
}
