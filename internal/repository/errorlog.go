// internal/repository/errorlog.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

// ParsingErrorDocument is the search document written for each application
// that failed field extraction.
type ParsingErrorDocument struct {
	ProcedureID   int               `json:"procedureId"`
	ApplicationID int               `json:"applicationId"`
	Email         string            `json:"email"`
	Errors        map[string]string `json:"errors"`
	Fields        []string          `json:"fields"`
	Message       string            `json:"message"`
	OccurredAt    time.Time         `json:"occurredAt"`
}

type ErrorLog struct {
	es    *elasticsearch.Client
	index string
}

func NewErrorLog(es *elasticsearch.Client, index string) *ErrorLog {
	return &ErrorLog{es: es, index: index}
}

// Index stores doc under a fresh identifier and returns it.
func (l *ErrorLog) Index(ctx context.Context, doc ParsingErrorDocument) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode error document: %w", err)
	}

	id := uuid.NewString()
	res, err := l.es.Index(
		l.index,
		bytes.NewReader(body),
		l.es.Index.WithContext(ctx),
		l.es.Index.WithDocumentID(id),
	)
	if err != nil {
		return "", fmt.Errorf("index error document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return "", fmt.Errorf("index error document: %s: %s", res.Status(), snippet)
	}
	return id, nil
}

func (l *ErrorLog) IndexName() string { return l.index }
