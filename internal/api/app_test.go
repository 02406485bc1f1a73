package api

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jaeholee/decotree/internal/channel"
	"github.com/jaeholee/decotree/internal/config"
	"github.com/jaeholee/decotree/internal/stats"
	"github.com/jaeholee/decotree/internal/testutil"
)

func TestNewApp(t *testing.T) {
	su := &stats.MockStatsUpdater{}
	su.On("Incr", mock.Anything).Maybe()

	logger := testutil.TestLogger(t)
	controller := channel.NewController(logger, channel.Policy{
		MaxObjects:  30,
		MaxCCU:      10,
		LockTimeout: time.Second,
	}, su)

	mux := http.NewServeMux()
	app := NewApp(mux, logger, controller, &config.Config{
		ServerAddr: "localhost:8000",
		SigningKey: []byte("test-signing-key"),
	})

	assert.NotNil(t, app)
	assert.Equal(t, "localhost:8000", app.mux.Addr)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/session"},
		{http.MethodGet, "/api/session"},
		{http.MethodGet, "/api/channels/tree"},
		{http.MethodGet, "/api/decorations"},
		{http.MethodGet, "/channel/tree"},
	}

	for _, route := range routes {
		handler, pattern := mux.Handler(&http.Request{URL: &url.URL{Path: route.path}, Method: route.method})
		assert.NotNil(t, handler, "expected handler for %s %s", route.method, route.path)
		assert.NotEmpty(t, pattern, "expected pattern match for %s %s", route.method, route.path)
	}
}
