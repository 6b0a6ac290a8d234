package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"acessorios/internal/core"
)

func testRecords(t *testing.T) []core.Record {
	t.Helper()
	d1, err := core.NewDraft(101, "TI", 2, 3, 2025)
	require.NoError(t, err)
	d2, err := core.NewDraft(105, "RH", 1, 4, 2025)
	require.NoError(t, err)
	return []core.Record{{ID: "a1", Draft: d1}, {ID: "b2", Draft: d2}}
}

func TestRows(t *testing.T) {
	rows := Rows(testRecords(t))

	require.Len(t, rows, 3)
	assert.Equal(t, []any{"ID", "Produto ID", "Nome", "Setor", "Quantidade", "Valor Unitário", "Total"}, rows[0])
	assert.Equal(t, []any{"a1", 101, "TECLADO-Logitech K120", "TI", 2, 72.8, 145.6}, rows[1])
	assert.Equal(t, "b2", rows[2][0])
}

func TestRows_Empty(t *testing.T) {
	rows := Rows(nil)
	require.Len(t, rows, 1, "header only")
}

func TestSheetRange(t *testing.T) {
	tests := []struct {
		sheet, cells, want string
	}{
		{"Registros", "A:G", "Registros!A:G"},
		{"2025 Registros", "A1:G3", "'2025 Registros'!A1:G3"},
		{"Joe's", "A:G", "'Joe''s'!A:G"},
	}
	for _, tt := range tests {
		if got := sheetRange(tt.sheet, tt.cells); got != tt.want {
			t.Errorf("sheetRange(%q, %q) = %q, want %q", tt.sheet, tt.cells, got, tt.want)
		}
	}
}

func TestNewMirror_Validation(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")

	_, err := NewMirror(context.Background(), " ", "Registros", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheet id")

	_, err = NewMirror(context.Background(), "sheet-1", "Registros", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")

	_, err = NewMirror(context.Background(), "sheet-1", "Registros", "/does/not/exist.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

type sheetCall struct {
	Method string
	Path   string
	Body   gsheet.ValueRange
}

func TestMirror_Replace(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []sheetCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := sheetCall{Method: r.Method, Path: r.URL.Path}
		if r.Method == http.MethodPut {
			_ = json.NewDecoder(r.Body).Decode(&call.Body)
		}
		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	require.NoError(t, err)

	m := newMirror(svc, "sheet-1", "")
	require.NoError(t, m.Replace(context.Background(), testRecords(t)))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 2)

	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.True(t, strings.HasSuffix(calls[0].Path, ":clear"), "first call clears, got %s", calls[0].Path)
	assert.Contains(t, calls[0].Path, "/spreadsheets/sheet-1/values/Registros!A:G")

	assert.Equal(t, http.MethodPut, calls[1].Method)
	assert.Contains(t, calls[1].Path, "Registros!A1:G3")
	require.Len(t, calls[1].Body.Values, 3)
	assert.Equal(t, "Total", calls[1].Body.Values[0][6])
	assert.Equal(t, "a1", calls[1].Body.Values[1][0])
}

func TestMirror_ReplaceWithoutService(t *testing.T) {
	m := &Mirror{}
	require.Error(t, m.Replace(context.Background(), nil))
}
