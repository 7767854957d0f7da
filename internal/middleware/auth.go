package middleware

import (
	"errors"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"autoshop/internal/auth"
	apperrors "autoshop/internal/errors"
	"autoshop/internal/service"
)

// IdentityKey is the echo context key holding the resolved *auth.Identity.
const IdentityKey = "identity"

// Authenticate resolves the bearer token through the auth service and stores the identity.
func Authenticate(authService service.AuthService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  IdentityKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authenticate(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return reject(c, authFailure(err))
		},
	})
}

// authFailure narrows an echo-jwt failure to one of the token sentinels.
func authFailure(err error) error {
	var extractionErr *echojwt.TokenExtractionError
	if errors.As(err, &extractionErr) {
		return apperrors.ErrTokenMissing
	}
	for _, known := range []error{
		apperrors.ErrTokenExpired,
		apperrors.ErrTokenMalformed,
		apperrors.ErrTokenRevoked,
		apperrors.ErrTokenInvalid,
	} {
		if errors.Is(err, known) {
			return known
		}
	}
	if errors.Is(err, echojwt.ErrJWTMissing) {
		return apperrors.ErrTokenMissing
	}
	return apperrors.ErrTokenInvalid
}

// CurrentIdentity returns the identity stored by Authenticate, or nil.
func CurrentIdentity(c echo.Context) *auth.Identity {
	identity, _ := c.Get(IdentityKey).(*auth.Identity)
	return identity
}

// RequireAdmin rejects identities without the admin claim.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.RequireAdmin(CurrentIdentity(c)); err != nil {
				return reject(c, err)
			}
			return next(c)
		}
	}
}

// RequireSelf rejects requests whose path parameter names a different user.
func RequireSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ownerID, err := strconv.ParseUint(c.Param(param), 10, 64)
			if err != nil || ownerID == 0 {
				return reject(c, apperrors.ErrInvalidID)
			}
			if err := auth.RequireSelf(CurrentIdentity(c), uint(ownerID)); err != nil {
				return reject(c, err)
			}
			return next(c)
		}
	}
}

// reject converts a domain error into the standard error body.
func reject(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.IsInternal() {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}
