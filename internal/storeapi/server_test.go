package storeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acessorios/internal/core"
	"acessorios/internal/memory"
	"acessorios/internal/ports"
	"acessorios/internal/remote"
	"acessorios/internal/services"
	"acessorios/internal/storage"
)

func backends(t *testing.T) map[string]ports.RecordStore {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return map[string]ports.RecordStore{
		"memory": memory.New(nil),
		"sqlite": repo,
	}
}

func newTestServer(t *testing.T, store ports.RecordStore) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(services.NewRecordService(store, nil), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_RoundTripThroughRemoteClient(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			srv := newTestServer(t, store)
			client := remote.NewClient(srv.URL, 5*time.Second, nil)

			d, err := core.NewDraft(101, "TI", 3, 3, 2025)
			require.NoError(t, err)

			created, err := client.Create(ctx, d)
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.False(t, created.CreatedAt.IsZero())
			assert.Equal(t, int64(21840), created.Total.Cents)
			assert.Equal(t, 0, created.StockAfter)

			list, err := client.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, created.ID, list[0].ID)

			edited, err := core.NewDraft(102, "RH", 1, 4, 2025)
			require.NoError(t, err)
			updated, err := client.Update(ctx, created.ID, core.Record{ID: created.ID, Draft: edited, CreatedAt: created.CreatedAt})
			require.NoError(t, err)
			assert.Equal(t, "RH", updated.Sector)
			assert.True(t, created.CreatedAt.Equal(updated.CreatedAt.Time), "update keeps the creation timestamp")

			require.NoError(t, client.Delete(ctx, created.ID))
			list, err = client.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestServer_UnknownIDIsNotFound(t *testing.T) {
	srv := newTestServer(t, memory.New(nil))
	client := remote.NewClient(srv.URL, 5*time.Second, nil)

	err := client.Delete(context.Background(), "missing")
	var nerr *remote.NetworkError
	require.True(t, errors.As(err, &nerr), "got %v", err)
	assert.Equal(t, http.StatusNotFound, nerr.StatusCode)

	d, err := core.NewDraft(101, "TI", 1, 1, 2025)
	require.NoError(t, err)
	_, err = client.Update(context.Background(), "missing", core.Record{ID: "missing", Draft: d})
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, http.StatusNotFound, nerr.StatusCode)
}

func TestServer_RejectsBadBodies(t *testing.T) {
	srv := newTestServer(t, memory.New(nil))

	tests := []struct {
		name        string
		body        string
		contentType string
	}{
		{"not json", `{"productId":`, "application/json"},
		{"wrong type", `{"productId":"abc"}`, "application/json"},
		{"missing fields", `{"productId":101,"setor":"TI"}`, "application/json"},
		{"total mismatch", `{"productId":101,"nome":"x","setor":"TI","quantidade":2,"valorUnit":72.8,"total":1,"estoque":1,"mes":3,"ano":2025}`, "application/json"},
		{"form encoded", `productId=101`, "application/x-www-form-urlencoded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/usuarios", tt.contentType, strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestServer_ErrorCarriesRequestID(t *testing.T) {
	srv := newTestServer(t, memory.New(nil))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/usuarios/missing", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req_cafe")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "record not found", body["error"])
	assert.Equal(t, "req_cafe", body["request_id"])
}

func TestServer_EmptyListIsArray(t *testing.T) {
	srv := newTestServer(t, memory.New(nil))

	resp, err := http.Get(srv.URL + "/usuarios")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestServer_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, memory.New(nil))

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/usuarios")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
