package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performJSON(fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	fn(c)

	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestSuccess(t *testing.T) {
	w, body := performJSON(func(c *gin.Context) {
		Success(c, map[string]string{"name": "paperdesk"})
	})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, expected 200", w.Code)
	}
	if body.Code != 0 {
		t.Errorf("code = %d, expected 0", body.Code)
	}
	if body.Message != "ok" {
		t.Errorf("message = %q, expected %q", body.Message, "ok")
	}
}

func TestError_AppError(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
		wantCode   int
	}{
		{"bad request", NewBadRequest("bad"), 400, 400},
		{"unauthorized", NewUnauthorized("no"), 401, 401},
		{"forbidden", NewForbidden("no"), 403, 403},
		{"not found", NewNotFound("missing"), 404, 404},
		{"conflict", NewConflict("dup"), 409, 409},
		{"gone", NewGone("expired"), 410, 410},
		{"unprocessable", NewUnprocessable("invariant"), 422, 422},
		{"server error", NewServerError("boom"), 500, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := performJSON(func(c *gin.Context) {
				Error(c, tt.err)
			})
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, expected %d", w.Code, tt.wantStatus)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %d, expected %d", body.Code, tt.wantCode)
			}
			if body.Message != tt.err.Message {
				t.Errorf("message = %q, expected %q", body.Message, tt.err.Message)
			}
		})
	}
}

func TestError_InternalErrorIsMasked(t *testing.T) {
	w, body := performJSON(func(c *gin.Context) {
		Error(c, errors.New("pq: duplicate key value violates unique constraint"))
	})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, expected 500", w.Code)
	}
	if body.Message != "internal server error" {
		t.Errorf("internal error text leaked to client: %q", body.Message)
	}
}

func TestError_WrappedAppError(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), NewNotFound("project not found"))
	w, body := performJSON(func(c *gin.Context) {
		Error(c, wrapped)
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", w.Code)
	}
	if body.Message != "project not found" {
		t.Errorf("message = %q, expected %q", body.Message, "project not found")
	}
}
