package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "autoshop/internal/errors"
	"autoshop/internal/repository"
)

const dateLayout = "2006-01-02"

// FlexInt decodes a JSON integer given either as a number or a numeric string.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(data, `"`)))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid integer %s", data)
	}
	*f = FlexInt(n)
	return nil
}

// IntPtr converts an optional FlexInt.
func (f *FlexInt) IntPtr() *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// Date is a calendar date in YYYY-MM-DD form.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid date %s", data)
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	d.Time = parsed
	return nil
}

// TimePtr converts an optional Date.
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// bindAndValidate decodes the body into req and runs the struct validator.
// Undecodable JSON is INVALID_REQUEST; a value of the wrong type is UNPROCESSABLE_ENTITY.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return classifyBindError(err)
	}
	return c.Validate(req)
}

func classifyBindError(err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Internal == nil {
		// Unsupported media type and similar binder rejections.
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, httpErr.Message)
	}
	return fmt.Errorf("%w: %v", apperrors.ErrUnprocessable, err)
}

// respondError writes the standard error body. Only 5xx are logged.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.IsInternal() {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidID
	}
	return uint(id), nil
}

// pageFromQuery reads page and per_page; unparsable values fall back to defaults.
func pageFromQuery(c echo.Context) repository.Page {
	number, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("per_page"))
	return repository.NewPage(number, size)
}

func noContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}
