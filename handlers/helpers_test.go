package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anjiri1684/course_marketplace/middleware"
	"github.com/anjiri1684/course_marketplace/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func bearer(t *testing.T, user middleware.AuthUser) string {
	t.Helper()
	token, err := issueToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func instructor() middleware.AuthUser {
	return middleware.AuthUser{ID: "inst-1", UserName: "Ann", UserEmail: "ann@example.com", Role: models.RoleInstructor}
}

func student() middleware.AuthUser {
	return middleware.AuthUser{ID: "stud-1", UserName: "Jane", UserEmail: "jane@example.com", Role: models.RoleUser}
}

func newRequest(t *testing.T, method, target string, body any, auth string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return req
}

// call runs req against app and decodes the JSON response body.
func call(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp.StatusCode, body
}
