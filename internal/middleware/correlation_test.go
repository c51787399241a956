package middleware_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/learncenter-api/internal/middleware"
)

func TestCorrelationIDPropagation(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.CorrelationID())
	app.Get("/echo", func(c *fiber.Ctx) error {
		return c.SendString(middleware.CorrelationIDFromContext(c.UserContext()) + "|" + middleware.GetCorrelationID(c))
	})

	cases := []struct {
		name      string
		header    string
		value     string
		wantReuse bool
	}{
		{name: "correlation header reused", header: middleware.CorrelationHeader, value: "req-42", wantReuse: true},
		{name: "request id fallback", header: fiber.HeaderXRequestID, value: "abc.123", wantReuse: true},
		{name: "oversized id replaced", header: middleware.CorrelationHeader, value: strings.Repeat("a", 65)},
		{name: "unsafe characters replaced", header: middleware.CorrelationHeader, value: "id with spaces"},
		{name: "missing header generated"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/echo", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			id := resp.Header.Get(middleware.CorrelationHeader)
			require.NotEmpty(t, id)
			require.LessOrEqual(t, len(id), 64)
			if tc.wantReuse {
				require.Equal(t, tc.value, id)
			} else {
				require.NotEqual(t, tc.value, id)
			}

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, id+"|"+id, string(body))
		})
	}
}
