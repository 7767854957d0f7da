package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"autoshop/internal/cache"
)

const (
	responseKeyPrefix = "resp:"
	// HeaderCache reports whether a response came from the cache.
	HeaderCache = "X-Cache"
)

// ResponseCache serves successful GET responses from store, keyed by prefix and request URI.
func ResponseCache(store cache.Store, prefix string, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		dump := echomw.BodyDumpWithConfig(echomw.BodyDumpConfig{
			Skipper: func(c echo.Context) bool { return c.Request().Method != http.MethodGet },
			Handler: func(c echo.Context, _ []byte, body []byte) {
				if c.Response().Status != http.StatusOK || len(body) == 0 {
					return
				}
				_ = store.Set(c.Request().Context(), responseKey(prefix, c), body, ttl)
			},
		})(next)

		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			if body, _ := store.Get(c.Request().Context(), responseKey(prefix, c)); body != nil {
				c.Response().Header().Set(HeaderCache, "HIT")
				return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, body)
			}
			c.Response().Header().Set(HeaderCache, "MISS")
			return dump(c)
		}
	}
}

// InvalidateCache drops every cached response under prefixes once the handler succeeds.
func InvalidateCache(store cache.Store, prefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status >= http.StatusBadRequest {
				return nil
			}
			for _, prefix := range prefixes {
				_ = store.DeletePrefix(c.Request().Context(), responseKeyPrefix+prefix+":")
			}
			return nil
		}
	}
}

func responseKey(prefix string, c echo.Context) string {
	return responseKeyPrefix + prefix + ":" + c.Request().RequestURI
}
