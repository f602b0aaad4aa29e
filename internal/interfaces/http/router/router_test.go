package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type testRegistrar struct {
	prefix string
}

func (r testRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(r.prefix, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}

func TestRouterRegistersUnderVersionedGroup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	NewRouter(engine).
		Register(testRegistrar{prefix: "/declarations"}).
		Register(testRegistrar{prefix: "/properties"}).
		Setup()

	for _, path := range []string{"/api/v1/declarations", "/api/v1/properties"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouterCustomAPIVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	NewRouter(engine, WithAPIVersion("v2")).
		Register(testRegistrar{prefix: "/declarations"}).
		Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v2/declarations", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/declarations", nil)
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
