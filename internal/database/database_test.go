package database

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory_back_end/internal/config"
)

func TestConnectElasticRejectsErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"security_exception","reason":"missing authentication credentials"},"status":401}`))
	}))
	defer srv.Close()

	conns := &Connections{}
	err := conns.connectElastic(&config.Config{ElasticURL: srv.URL})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Nil(t, conns.Elastic)
}
