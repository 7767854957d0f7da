package router

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"autoshop/internal/cache"
	"autoshop/internal/config"
	apperrors "autoshop/internal/errors"
	"autoshop/internal/handler"
	mw "autoshop/internal/middleware"
	"autoshop/internal/service"
)

// Handlers groups the HTTP handlers the route table dispatches to.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Mechanics *handler.MechanicHandler
	Inventory *handler.InventoryHandler
	Tickets   *handler.TicketHandler
}

// Cached response prefixes.
const (
	mechanicsCache = "mechanics"
	inventoryCache = "inventory"
)

// Register wires routes and middleware. Per route the chain runs
// authenticate, authorize, rate limit, cache lookup, then the handler.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	store cache.Store,
	authService service.AuthService,
	h Handlers,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticate := mw.Authenticate(authService)
	admin := mw.RequireAdmin()
	limiter := mw.NewRateLimiter(cfg.RateLimitEnabled)
	mechanicsChanged := mw.InvalidateCache(store, mechanicsCache)
	inventoryChanged := mw.InvalidateCache(store, inventoryCache)

	// Users
	users := e.Group("/users")
	registerLimit := limiter.Limit(mw.RegisterLimit)
	users.POST("/register", h.Auth.Register, registerLimit)
	users.POST("", h.Auth.Register, registerLimit)
	users.POST("/login", h.Auth.Login, limiter.Limit(mw.LoginLimit))
	users.POST("/logout", h.Auth.Logout, authenticate)
	users.GET("", h.Users.ListUsers, authenticate)
	users.GET("/my-tickets", h.Users.MyTickets, authenticate)
	users.GET("/:id", h.Users.GetUser, authenticate)
	users.PUT("/:id", h.Users.UpdateUser, authenticate, mw.RequireSelf("id"), limiter.Limit(mw.UpdateLimit))
	users.DELETE("/:id", h.Users.DeleteUser, authenticate, mw.RequireSelf("id"), limiter.Limit(mw.DeleteLimit))

	// Mechanics
	mechanics := e.Group("/mechanics")
	mechanicsCached := mw.ResponseCache(store, mechanicsCache, cfg.CacheTTL)
	mechanics.POST("", h.Mechanics.CreateMechanic, authenticate, admin, mechanicsChanged)
	mechanics.GET("", h.Mechanics.ListMechanics, mechanicsCached)
	mechanics.GET("/:id", h.Mechanics.GetMechanic, mechanicsCached)
	mechanics.PUT("/:id", h.Mechanics.UpdateMechanic, authenticate, admin, limiter.Limit(mw.UpdateLimit), mechanicsChanged)
	mechanics.DELETE("/:id", h.Mechanics.DeleteMechanic, authenticate, admin, limiter.Limit(mw.DeleteLimit), mechanicsChanged)
	mechanics.GET("/:id/tickets", h.Mechanics.MechanicTickets, authenticate)
	mechanics.POST("/:id/tickets/:ticket_id", h.Mechanics.AssignTicket, authenticate, admin, limiter.Limit(mw.AssignLimit), mechanicsChanged)

	// Inventory
	inventory := e.Group("/inventory")
	inventoryCached := mw.ResponseCache(store, inventoryCache, cfg.CacheTTL)
	inventory.POST("", h.Inventory.CreatePart, authenticate, admin, inventoryChanged)
	inventory.GET("", h.Inventory.ListParts, inventoryCached)
	inventory.GET("/:id", h.Inventory.GetPart, inventoryCached)
	inventory.PUT("/:id", h.Inventory.UpdatePart, authenticate, admin, limiter.Limit(mw.UpdateLimit), inventoryChanged)
	inventory.DELETE("/:id", h.Inventory.DeletePart, authenticate, admin, limiter.Limit(mw.DeleteLimit), inventoryChanged)

	// Service tickets; ownership is checked once the ticket is loaded.
	tickets := e.Group("/service-tickets", authenticate)
	tickets.POST("", h.Tickets.CreateTicket, limiter.Limit(mw.TicketCreateLimit))
	tickets.GET("", h.Tickets.ListTickets)
	tickets.GET("/:id", h.Tickets.GetTicket)
	tickets.PUT("/:id", h.Tickets.UpdateTicket, limiter.Limit(mw.TicketEditLimit))
	tickets.DELETE("/:id", h.Tickets.DeleteTicket, limiter.Limit(mw.DeleteLimit))
	tickets.PUT("/:id/edit", h.Tickets.EditTicket, limiter.Limit(mw.TicketEditLimit), mechanicsChanged, inventoryChanged)
}

// CustomValidator wraps validator for Echo and reports failures by JSON field name.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = describe(fe)
	}
	return apperrors.NewValidationError(fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
