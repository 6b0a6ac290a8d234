package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acessorios/internal/core"
	applog "acessorios/internal/log"
	"acessorios/internal/middleware/trace"
)

const listBody = `[
  {"id":"a1","productId":101,"nome":"TECLADO-Logitech K120","setor":"TI","quantidade":2,
   "valorUnit":72.8,"total":145.6,"estoque":1,"mes":3,"ano":2025,"timestamp":1740787200000},
  {"id":"b2","productId":105,"nome":"MOUSE - Logitech M90","setor":"RH","quantidade":1,
   "valorUnit":38,"total":38,"estoque":2,"mes":4,"ano":2025,"timestamp":1743465600000}
]`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, nil)
}

func TestClient_List(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/usuarios", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, listBody)
	})

	records, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "a1", records[0].ID)
	assert.Equal(t, 101, records[0].ProductID)
	assert.Equal(t, int64(7280), records[0].UnitPrice.Cents)
	assert.Equal(t, int64(14560), records[0].Total.Cents)
	assert.Equal(t, int64(1740787200000), records[0].CreatedAt.UnixMilli())
	assert.Equal(t, "b2", records[1].ID, "order is preserved")
}

func TestClient_ListEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})

	records, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_ListSchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		index int
		field string
	}{
		{"not json", `<html>oops</html>`, -1, ""},
		{"object instead of list", `{"id":"a1"}`, -1, ""},
		{"missing id", `[{"productId":101,"setor":"TI","quantidade":1,"mes":1,"ano":2025}]`, 0, "id"},
		{"bad product", `[{"id":"a","productId":101,"setor":"TI","quantidade":1,"mes":1,"ano":2025},
			{"id":"b","productId":0,"setor":"TI","quantidade":1,"mes":1,"ano":2025}]`, 1, "productId"},
		{"missing sector", `[{"id":"a","productId":101,"quantidade":1,"mes":1,"ano":2025}]`, 0, "setor"},
		{"zero quantity", `[{"id":"a","productId":101,"setor":"TI","quantidade":0,"mes":1,"ano":2025}]`, 0, "quantidade"},
		{"month out of range", `[{"id":"a","productId":101,"setor":"TI","quantidade":1,"mes":13,"ano":2025}]`, 0, "mes"},
		{"missing year", `[{"id":"a","productId":101,"setor":"TI","quantidade":1,"mes":1}]`, 0, "ano"},
		{"quantity as text", `[{"id":"a","productId":101,"setor":"TI","quantidade":"x","mes":1,"ano":2025}]`, -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			})

			_, err := c.List(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse))
			assert.False(t, errors.Is(err, ErrNetwork))

			var serr *SchemaError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.index, serr.Index)
			assert.Equal(t, tt.field, serr.Field)
		})
	}
}

func TestClient_NetworkErrors(t *testing.T) {
	t.Run("server error status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.List(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNetwork))

		var nerr *NetworkError
		require.True(t, errors.As(err, &nerr))
		assert.Equal(t, http.StatusInternalServerError, nerr.StatusCode)
		assert.Equal(t, "list", nerr.Op)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := NewClient(url, time.Second, nil)
		err := c.Delete(context.Background(), "a1")
		require.Error(t, err)

		var nerr *NetworkError
		require.True(t, errors.As(err, &nerr))
		assert.Zero(t, nerr.StatusCode)
		assert.NotNil(t, nerr.Err)
	})

	t.Run("context cancelled", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[]`)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.List(ctx)
		assert.True(t, errors.Is(err, ErrNetwork))
	})
}

func TestClient_Create(t *testing.T) {
	draft, err := core.NewDraft(101, "TI", 3, 5, 2025)
	require.NoError(t, err)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/usuarios", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "id")
		assert.NotContains(t, body, "timestamp")
		assert.Equal(t, 218.4, body["total"])
		assert.Equal(t, 0.0, body["estoque"])

		body["id"] = "new-1"
		body["timestamp"] = 1746057600000
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(body)
	})

	rec, err := c.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "new-1", rec.ID)
	assert.Equal(t, draft, rec.Draft)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestClient_CreateWithoutID(t *testing.T) {
	draft, err := core.NewDraft(102, "RH", 1, 5, 2025)
	require.NoError(t, err)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"productId":102,"setor":"RH","quantidade":1,"mes":5,"ano":2025}`)
	})

	_, err = c.Create(context.Background(), draft)
	var serr *SchemaError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "id", serr.Field)
}

func TestClient_Update(t *testing.T) {
	draft, err := core.NewDraft(103, "COMPRAS", 2, 6, 2025)
	require.NoError(t, err)
	rec := core.Record{Draft: draft}

	t.Run("echoed body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/usuarios/x9", r.URL.Path)
			io.Copy(w, r.Body)
		})

		got, err := c.Update(context.Background(), "x9", rec)
		require.NoError(t, err)
		assert.Equal(t, "x9", got.ID)
		assert.Equal(t, draft, got.Draft)
	})

	t.Run("empty body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		got, err := c.Update(context.Background(), "x9", rec)
		require.NoError(t, err)
		assert.Equal(t, "x9", got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})

		_, err := c.Update(context.Background(), "x9", rec)
		var nerr *NetworkError
		require.True(t, errors.As(err, &nerr))
		assert.Equal(t, http.StatusNotFound, nerr.StatusCode)
	})
}

func TestClient_Delete(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "a1"))
	assert.Equal(t, "/usuarios/a1", gotPath)
}

func TestClient_FailureLogCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentRemote, Output: &buf})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, 2*time.Second, logger)

	ctx := context.WithValue(context.Background(), trace.RequestIDKey, "req_1")
	_, err := c.List(ctx)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "Remote store request failed")
	assert.Contains(t, out, "request_id=req_1")
	assert.Contains(t, out, "component=remote")
}
