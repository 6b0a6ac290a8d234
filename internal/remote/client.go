// Package remote is the client for the record store's /usuarios REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"acessorios/internal/core"
	applog "acessorios/internal/log"
	"acessorios/internal/metrics"
	"acessorios/internal/middleware/trace"
)

const resourcePath = "/usuarios"

// Client talks to the remote record store. It performs no retries.
type Client struct {
	httpClient *resty.Client
	logger     *applog.Logger
}

// NewClient builds a client for the store at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *applog.Logger) *Client {
	if logger == nil {
		logger = applog.Default(applog.ComponentRemote)
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{httpClient: restyClient, logger: logger}
}

// List fetches every record. A single record violating the wire schema
// fails the whole call with a *SchemaError.
func (c *Client) List(ctx context.Context) ([]core.Record, error) {
	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(resourcePath)
	if err := c.check(ctx, applog.OpList, resp, err, start); err != nil {
		return nil, err
	}

	var records []core.Record
	if err := json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, c.schemaFailure(ctx, applog.OpList, start, &SchemaError{Op: applog.OpList, Index: -1, Reason: "body is not a record list", Err: err})
	}
	for i, r := range records {
		if field, reason := checkRecord(r); field != "" {
			return nil, c.schemaFailure(ctx, applog.OpList, start, &SchemaError{Op: applog.OpList, Index: i, Field: field, Reason: reason})
		}
	}

	metrics.ObserveRemote(applog.OpList, "ok", start)
	c.log(ctx).DebugContext(ctx, "Listed remote records", applog.FieldCount, len(records))
	return records, nil
}

// Create posts a draft; the store assigns id and timestamp.
func (c *Client) Create(ctx context.Context, draft core.Draft) (core.Record, error) {
	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(draft).
		Post(resourcePath)
	if err := c.check(ctx, applog.OpCreate, resp, err, start); err != nil {
		return core.Record{}, err
	}

	rec, err := c.decodeRecord(ctx, applog.OpCreate, resp.Body(), start)
	if err != nil {
		return core.Record{}, err
	}

	metrics.ObserveRemote(applog.OpCreate, "ok", start)
	c.log(ctx).InfoContext(ctx, "Created remote record", applog.NewFields().
		WithRecord(rec.ID, rec.ProductID, rec.Sector, rec.Quantity, rec.Total.Cents).ToSlice()...)
	return rec, nil
}

// Update replaces the record with the given id. A store answering with an
// empty body is taken to have stored the record as sent.
func (c *Client) Update(ctx context.Context, id string, rec core.Record) (core.Record, error) {
	start := time.Now()
	rec.ID = id
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(rec).
		Put(resourcePath + "/" + url.PathEscape(id))
	if err := c.check(ctx, applog.OpUpdate, resp, err, start); err != nil {
		return core.Record{}, err
	}

	out := rec
	if len(bytes.TrimSpace(resp.Body())) > 0 {
		if out, err = c.decodeRecord(ctx, applog.OpUpdate, resp.Body(), start); err != nil {
			return core.Record{}, err
		}
	}

	metrics.ObserveRemote(applog.OpUpdate, "ok", start)
	c.log(ctx).InfoContext(ctx, "Updated remote record", applog.NewFields().
		WithRecord(out.ID, out.ProductID, out.Sector, out.Quantity, out.Total.Cents).ToSlice()...)
	return out, nil
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Delete(resourcePath + "/" + url.PathEscape(id))
	if err := c.check(ctx, applog.OpDelete, resp, err, start); err != nil {
		return err
	}

	metrics.ObserveRemote(applog.OpDelete, "ok", start)
	c.log(ctx).InfoContext(ctx, "Deleted remote record", applog.FieldRecordID, id)
	return nil
}

// log tags the client logger with the caller's request id, when there is one.
func (c *Client) log(ctx context.Context) *applog.Logger {
	if id := trace.GetRequestID(ctx); id != "" {
		return c.logger.With(applog.FieldRequestID, id)
	}
	return c.logger
}

// check turns transport failures and non-2xx statuses into *NetworkError.
func (c *Client) check(ctx context.Context, op string, resp *resty.Response, err error, start time.Time) error {
	var nerr *NetworkError
	switch {
	case err != nil:
		nerr = &NetworkError{Op: op, Err: err}
	case !resp.IsSuccess():
		nerr = &NetworkError{Op: op, StatusCode: resp.StatusCode(), Err: errors.New(strings.TrimSpace(resp.Status()))}
	default:
		return nil
	}
	metrics.ObserveRemote(op, "network", start)
	c.log(ctx).ErrorContext(ctx, "Remote store request failed", applog.NewFields().
		WithOperation(op).
		WithError(nerr).ToSlice()...)
	return nerr
}

func (c *Client) schemaFailure(ctx context.Context, op string, start time.Time, serr *SchemaError) error {
	metrics.ObserveRemote(op, "schema", start)
	c.log(ctx).ErrorContext(ctx, "Remote store returned malformed data", applog.NewFields().
		WithOperation(op).
		WithError(serr).ToSlice()...)
	return serr
}

func (c *Client) decodeRecord(ctx context.Context, op string, body []byte, start time.Time) (core.Record, error) {
	var rec core.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return core.Record{}, c.schemaFailure(ctx, op, start, &SchemaError{Op: op, Index: -1, Reason: "body is not a record", Err: err})
	}
	if field, reason := checkRecord(rec); field != "" {
		return core.Record{}, c.schemaFailure(ctx, op, start, &SchemaError{Op: op, Index: -1, Field: field, Reason: reason})
	}
	return rec, nil
}

// checkRecord returns the first wire field that violates the schema.
// Derived amounts are not checked: stored records are historical facts.
func checkRecord(r core.Record) (field, reason string) {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return "id", "is missing"
	case r.ProductID <= 0:
		return "productId", "must be positive"
	case strings.TrimSpace(r.Sector) == "":
		return "setor", "is missing"
	case r.Quantity <= 0:
		return "quantidade", "must be positive"
	case r.Month < 1 || r.Month > 12:
		return "mes", "must be between 1 and 12"
	case r.Year <= 0:
		return "ano", "must be positive"
	}
	return "", ""
}
