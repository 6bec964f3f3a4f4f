// internal/repository/errorlog_test.go
package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupErrorLog(t *testing.T, handler http.HandlerFunc) *ErrorLog {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return NewErrorLog(es, "dms-parsing-errors")
}

func TestErrorLog_Index(t *testing.T) {
	var (
		method string
		path   string
		doc    ParsingErrorDocument
	)
	log := setupErrorLog(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	occurred := time.Date(2021, 9, 15, 15, 1, 33, 0, time.UTC)
	id, err := log.Index(context.Background(), ParsingErrorDocument{
		ProcedureID:   201201,
		ApplicationID: 4,
		Email:         "cosette@example.com",
		Errors:        map[string]string{"postal_code": "Strasbourg"},
		Fields:        []string{"postal_code"},
		Message:       "Error validating",
		OccurredAt:    occurred,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/dms-parsing-errors/_doc/"+id, path)
	assert.Equal(t, 4, doc.ApplicationID)
	assert.Equal(t, "Strasbourg", doc.Errors["postal_code"])
	assert.True(t, occurred.Equal(doc.OccurredAt))
	assert.Equal(t, "dms-parsing-errors", log.IndexName())
}

func TestErrorLog_IndexRejected(t *testing.T) {
	log := setupErrorLog(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"mapper_parsing_exception"}}`))
	})

	_, err := log.Index(context.Background(), ParsingErrorDocument{ApplicationID: 4})

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "mapper_parsing_exception"))
}
