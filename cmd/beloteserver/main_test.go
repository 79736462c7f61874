package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"beloteserver/internal/room"
	"beloteserver/internal/session"
	"beloteserver/internal/transport"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	signer, err := session.NewSigner("test-secret", time.Minute)
	require.NoError(t, err)
	roomService := room.NewService(logger)
	manager := transport.NewManager(roomService, signer, logger, time.Minute, time.Minute)

	return newRouter(roomService, manager, logger, []string{"*"})
}

func TestHealthzEndpoint(t *testing.T) {
	r := testRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestListRoomsEndpointStartsEmpty(t *testing.T) {
	r := testRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/rooms", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rooms":[]}`, w.Body.String())
}

func TestCorsMiddlewarePreflight(t *testing.T) {
	r := testRouter(t)

	req, _ := http.NewRequest(http.MethodOptions, "/api/rooms", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
