package sheets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sheetqa/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestSource(t *testing.T, handler http.HandlerFunc, cfg Config) domain.RowSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.Endpoint = server.URL + "/"
	srv, err := NewService(context.Background(), cfg, option.WithoutAuthentication(), option.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return NewRowSource(srv, cfg)
}

func TestReadRange(t *testing.T) {
	assert.Equal(t, "Sheet1!A2:B", ReadRange("Sheet1", 1))
	assert.Equal(t, "FAQ!A1:B", ReadRange("FAQ", 0))
	assert.Equal(t, "FAQ!A1:B", ReadRange("FAQ", -3))
}

func TestRowSource_Rows(t *testing.T) {
	var gotPath string
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"range":"Sheet1!A2:B4","majorDimension":"ROWS","values":[["X","X is a thing."],["Y"],["",""],[42,"numeric title"]]}`)
	}, Config{SpreadsheetID: "sheet-123", SheetName: "Sheet1", HeaderRows: 1})

	docs, err := source.Rows(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-123/values/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, "Sheet1!A2:B"), gotPath)
	assert.Equal(t, []domain.Document{
		{Title: "X", Body: "X is a thing."},
		{Title: "Y", Body: ""},
		{Title: "", Body: ""},
		{Title: "42", Body: "numeric title"},
	}, docs)
	assert.Equal(t, "sheets", source.Name())
}

func TestRowSource_Rows_APIError(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = fmt.Fprint(w, `{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`)
	}, Config{SpreadsheetID: "sheet-123", SheetName: "Sheet1", HeaderRows: 1})

	docs, err := source.Rows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sheet1!A2:B")
	assert.Nil(t, docs)
}

func TestRowSource_Rows_Timeout(t *testing.T) {
	source := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}, Config{SpreadsheetID: "sheet-123", SheetName: "Sheet1", HeaderRows: 1, Timeout: 100 * time.Millisecond})

	start := time.Now()
	docs, err := source.Rows(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Nil(t, docs)
}
