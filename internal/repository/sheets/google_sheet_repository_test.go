package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/reliefops/relief-api/internal/config"
)

func TestAppendRows_SendsValues(t *testing.T) {
	var gotPath, gotQuery string
	var body struct {
		Values [][]interface{} `json:"values"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	}))
	defer srv.Close()

	repo, err := NewGoogleSheetRepository(context.Background(), config.SheetsConfig{SpreadsheetID: "sheet-1"}, nil,
		option.WithEndpoint(srv.URL), option.WithoutAuthentication(), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	err = repo.AppendRows(context.Background(), "Shortfalls!A:H", [][]interface{}{{"2026-10-16", "DIST-1", 5}})
	require.NoError(t, err)

	assert.True(t, strings.Contains(gotPath, "/spreadsheets/sheet-1/values/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ":append"), gotPath)
	assert.Contains(t, gotQuery, "valueInputOption=USER_ENTERED")
	require.Len(t, body.Values, 1)
	assert.Equal(t, "DIST-1", body.Values[0][1])
}

func TestAppendRows_Validation(t *testing.T) {
	repo := &GoogleSheetRepository{}

	assert.Error(t, repo.AppendRows(context.Background(), "", [][]interface{}{{1}}))
	assert.NoError(t, repo.AppendRows(context.Background(), "Shortfalls!A:H", nil))
}
