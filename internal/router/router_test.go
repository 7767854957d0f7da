package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoshop/internal/auth"
	"autoshop/internal/config"
	"autoshop/internal/handler"
	"autoshop/internal/repository"
	"autoshop/internal/service"
	"autoshop/internal/testutil"
)

type testApp struct {
	e     *echo.Echo
	repos *repository.Repositories
	store *testutil.MemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	repos := repository.New(testutil.NewDB(t))
	store := testutil.NewMemoryStore()
	hasher := auth.NewPasswordHasher(4)
	jwtService := auth.NewJWTService("router-test-secret", time.Hour)
	authService := service.NewAuthService(repos.Users, jwtService, hasher, auth.NewTokenStore(store))

	cfg := &config.Config{CacheTTL: time.Minute, RateLimitEnabled: false}
	e := echo.New()
	Register(e, cfg, store, authService, Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(service.NewUserService(repos, hasher, store)),
		Mechanics: handler.NewMechanicHandler(service.NewMechanicService(repos)),
		Inventory: handler.NewInventoryHandler(service.NewInventoryService(repos)),
		Tickets:   handler.NewTicketHandler(service.NewTicketService(repos)),
	})
	return &testApp{e: e, repos: repos, store: store}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// register creates a user and returns its id and a fresh token.
func (a *testApp) register(t *testing.T, email string) (uint, string) {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/users/register", "", map[string]string{
		"name": "User " + email, "email": email, "password": "secret123", "phone": "555-0000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	decode(t, rec, &created)
	return created.User.ID, a.login(t, email)
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/users/login", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp handler.AuthResponse
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// admin registers a user, flips the admin flag and logs in again so the claim is present.
func (a *testApp) admin(t *testing.T) string {
	t.Helper()

	id, _ := a.register(t, "admin@shop.test")
	require.NoError(t, a.repos.Users.Update(t.Context(), id, map[string]interface{}{"is_admin": true}))
	return a.login(t, "admin@shop.test")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decode(t, rec, &body)
	return body.Code
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)
	_, token := app.register(t, "ann@shop.test")

	t.Run("duplicate email", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/users", "", map[string]string{
			"name": "Ann", "email": "ann@shop.test", "password": "secret123", "phone": "1",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "EMAIL_TAKEN", errorCode(t, rec))
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/users/login", "", map[string]string{"email": "ann@shop.test", "password": "nope123"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))
	})

	t.Run("validation failure", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/users/register", "", map[string]string{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/users/login", "", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_REQUEST", errorCode(t, rec))
	})

	t.Run("missing token", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/users/my-tickets", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_MISSING", errorCode(t, rec))
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/users/my-tickets", "not.a.jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/users/logout", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodGet, "/users/my-tickets", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "TOKEN_REVOKED", errorCode(t, rec))
	})
}

func TestUserRoutes_SelfOnly(t *testing.T) {
	app := newTestApp(t)
	annID, annToken := app.register(t, "ann@shop.test")
	bobID, _ := app.register(t, "bob@shop.test")

	rec := app.do(t, http.MethodPut, fmt.Sprintf("/users/%d", bobID), annToken, map[string]string{"name": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", bobID), annToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPut, fmt.Sprintf("/users/%d", annID), annToken, map[string]string{"phone": "555-9999"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated handler.UserResponse
	decode(t, rec, &updated)
	assert.Equal(t, "555-9999", updated.Phone)
	assert.Equal(t, "User ann@shop.test", updated.Name)

	rec = app.do(t, http.MethodPut, "/users/abc", annToken, map[string]string{"phone": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, rec))
}

func TestUserDelete_CascadesTickets(t *testing.T) {
	app := newTestApp(t)
	annID, token := app.register(t, "ann@shop.test")

	rec := app.do(t, http.MethodPost, "/service-tickets", token, map[string]string{"description": "Oil change"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", annID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	ids, err := app.repos.Tickets.IDsByUser(t.Context(), annID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestTicketFlow(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.admin(t)
	_, token := app.register(t, "ann@shop.test")
	_, otherToken := app.register(t, "bob@shop.test")

	rec := app.do(t, http.MethodPost, "/mechanics", adminToken, map[string]string{"name": "Maria", "phone": "555-0101"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var mechanic handler.MechanicResponse
	decode(t, rec, &mechanic)

	rec = app.do(t, http.MethodPost, "/inventory", adminToken, map[string]interface{}{"name": "Oil filter", "price": 8.5, "quantity": "12"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var part handler.PartResponse
	decode(t, rec, &part)

	rec = app.do(t, http.MethodPost, "/service-tickets", token, map[string]interface{}{
		"description":  "Brakes squeal",
		"vin":          "1HGCM82633A004352",
		"service_date": "2026-10-20",
		"mechanic_ids": []uint{mechanic.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ticket handler.TicketResponse
	decode(t, rec, &ticket)
	assert.Equal(t, "pending", ticket.Status)
	assert.Equal(t, "normal", ticket.Priority)
	require.NotNil(t, ticket.ServiceDate)
	assert.Equal(t, "2026-10-20", *ticket.ServiceDate)
	require.Len(t, ticket.Mechanics, 1)

	ticketPath := fmt.Sprintf("/service-tickets/%d", ticket.ID)

	t.Run("other users cannot see it", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, ticketPath, otherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing ticket is 404", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/service-tickets/9999", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("edit is idempotent", func(t *testing.T) {
		edit := map[string][]uint{"add_ids": {mechanic.ID}, "add_part_ids": {part.ID}}
		for i := 0; i < 2; i++ {
			rec := app.do(t, http.MethodPut, ticketPath+"/edit", token, edit)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var resp handler.EditTicketResponse
			decode(t, rec, &resp)
			assert.Len(t, resp.Mechanics, 1)
			assert.Len(t, resp.Parts, 1)
		}
	})

	t.Run("unknown mechanic is rejected", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, ticketPath+"/edit", token, map[string][]uint{"add_ids": {424242}, "remove_part_ids": {part.ID}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "UNKNOWN_MECHANIC", errorCode(t, rec))

		got := app.do(t, http.MethodGet, ticketPath, token, nil)
		var current handler.TicketResponse
		decode(t, got, &current)
		assert.Len(t, current.Parts, 1)
	})

	t.Run("part in use cannot be deleted", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, fmt.Sprintf("/inventory/%d", part.ID), adminToken, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "PART_IN_USE", errorCode(t, rec))
	})

	t.Run("my tickets lists it", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/users/my-tickets", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []handler.TicketResponse
		decode(t, rec, &list)
		require.Len(t, list, 1)
		assert.Equal(t, ticket.ID, list[0].ID)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, ticketPath, token, map[string]string{"status": "in_progress"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated handler.TicketResponse
		decode(t, rec, &updated)
		assert.Equal(t, "in_progress", updated.Status)
		assert.Equal(t, "Brakes squeal", updated.Description)
	})

	t.Run("delete", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, ticketPath, token, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = app.do(t, http.MethodDelete, fmt.Sprintf("/inventory/%d", part.ID), adminToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestInventoryRoutes(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.admin(t)
	_, userToken := app.register(t, "ann@shop.test")

	t.Run("admin only", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/inventory", userToken, map[string]interface{}{"name": "Wiper", "price": 5})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "ADMIN_REQUIRED", errorCode(t, rec))
	})

	t.Run("bad price is unprocessable", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/inventory", adminToken, map[string]interface{}{"name": "Wiper", "price": "cheap"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	rec := app.do(t, http.MethodPost, "/inventory", adminToken, map[string]interface{}{"name": "Wiper", "price": "5.25", "part_number": "WP-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var part handler.PartResponse
	decode(t, rec, &part)
	partPath := fmt.Sprintf("/inventory/%d", part.ID)

	t.Run("partial price update", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, partPath, adminToken, map[string]interface{}{"price": 6.75})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated handler.PartResponse
		decode(t, rec, &updated)
		assert.Equal(t, "6.75", updated.Price.String())
		assert.Equal(t, "Wiper", updated.Name)
		require.NotNil(t, updated.PartNumber)
		assert.Equal(t, "WP-1", *updated.PartNumber)
	})

	t.Run("duplicate part number", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/inventory", adminToken, map[string]interface{}{"name": "Wiper 2", "price": 1, "part_number": "WP-1"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("reads are cached until a write", func(t *testing.T) {
		first := app.do(t, http.MethodGet, partPath, "", nil)
		require.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

		second := app.do(t, http.MethodGet, partPath, "", nil)
		assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
		assert.Equal(t, first.Body.String(), second.Body.String())

		rec := app.do(t, http.MethodPut, partPath, adminToken, map[string]interface{}{"quantity": 3})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		third := app.do(t, http.MethodGet, partPath, "", nil)
		assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
		var fresh handler.PartResponse
		decode(t, third, &fresh)
		require.NotNil(t, fresh.Quantity)
		assert.Equal(t, 3, *fresh.Quantity)
	})
}

func TestMechanicRoutes_PaginationAndAssign(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.admin(t)
	_, userToken := app.register(t, "ann@shop.test")

	for i := 0; i < 5; i++ {
		rec := app.do(t, http.MethodPost, "/mechanics", adminToken, map[string]interface{}{
			"name": fmt.Sprintf("Mechanic %d", i), "phone": "555", "salary": "3200.50",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := app.do(t, http.MethodGet, "/mechanics?page=2&per_page=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Mechanics   []handler.MechanicResponse `json:"mechanics"`
		Total       int64                      `json:"total"`
		Pages       int                        `json:"pages"`
		CurrentPage int                        `json:"current_page"`
		HasNext     bool                       `json:"has_next"`
		HasPrev     bool                       `json:"has_prev"`
	}
	decode(t, rec, &page)
	assert.Len(t, page.Mechanics, 2)
	assert.EqualValues(t, 5, page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
	require.NotNil(t, page.Mechanics[0].Salary)
	assert.Equal(t, "3200.5", page.Mechanics[0].Salary.String())

	rec = app.do(t, http.MethodPost, "/service-tickets", userToken, map[string]string{"description": "Noise"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var ticket handler.TicketResponse
	decode(t, rec, &ticket)

	mechanicID := page.Mechanics[0].ID
	assignPath := fmt.Sprintf("/mechanics/%d/tickets/%d", mechanicID, ticket.ID)

	rec = app.do(t, http.MethodPost, assignPath, userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for i := 0; i < 2; i++ {
		rec = app.do(t, http.MethodPost, assignPath, adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/mechanics/%d/tickets", mechanicID), userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var assigned []handler.MechanicTicketResponse
	decode(t, rec, &assigned)
	require.Len(t, assigned, 1)
	assert.Equal(t, ticket.ID, assigned[0].ID)

	rec = app.do(t, http.MethodPost, fmt.Sprintf("/mechanics/%d/tickets/9999", mechanicID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TICKET_NOT_FOUND", errorCode(t, rec))
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegisterLoginCreateAndListOwnTickets(t *testing.T) {
	app := newTestApp(t)
	userID, token := app.register(t, "ann@shop.test")

	rec := app.do(t, http.MethodPost, "/service-tickets", token, map[string]string{
		"title": "Brake check", "description": "Squealing front left", "priority": "high", "status": "open",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/users/my-tickets", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []handler.TicketResponse
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, userID, list[0].UserID)
	assert.Equal(t, "Brake check", list[0].Title)
	assert.Equal(t, "high", list[0].Priority)
	assert.Equal(t, "open", list[0].Status)
	require.NotNil(t, list[0].User)
	assert.Equal(t, "ann@shop.test", list[0].User.Email)

	rec = app.do(t, http.MethodGet, "/service-tickets?per_page=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Tickets []handler.TicketResponse `json:"service_tickets"`
		Pages   int                      `json:"pages"`
	}
	decode(t, rec, &page)
	assert.Len(t, page.Tickets, 1)
	assert.Equal(t, 1, page.Pages)
}
