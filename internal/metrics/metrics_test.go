package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Observe(t *testing.T) {
	c := New()

	c.Observe(OpInsert, time.Now(), nil)
	c.Observe(OpInsert, time.Now(), nil)
	c.Observe(OpQuery, time.Now(), errors.New("boom"))
	c.AddRows(7)
	c.SchemaCreated()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Operations.WithLabelValues(OpInsert, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues(OpQuery, "error")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.RowsReturned))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SchemaCreate))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Observe(OpInsert, time.Now(), nil)
		c.AddRows(3)
		c.SchemaCreated()
	})
	assert.NotNil(t, c.Handler())
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.Observe(OpEnsureSchema, time.Now(), nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `msgstore_operations_total{operation="ensure_schema",outcome="ok"} 1`)
}

func TestCollector_HTTPMiddleware(t *testing.T) {
	c := New()

	r := chi.NewRouter()
	r.Use(c.HTTPMiddleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/items/1", "/items/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues(http.MethodGet, "/items/{id}", "418")))
}
