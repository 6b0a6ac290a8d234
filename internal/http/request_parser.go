// Package http provides the dashboard's HTTP server and handlers.
//
// This file implements utilities for parsing request data: the period
// filter carried in query strings and the record form fields.

package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"acessorios/internal/core"
	"acessorios/internal/form"
)

// ParseFilter reads mes and ano from query parameters. Missing, zero or
// out-of-range values leave the field unset so it matches every record.
func ParseFilter(query url.Values) core.Filter {
	var f core.Filter
	if m, ok := atoi(query.Get("mes")); ok && m >= 1 && m <= 12 {
		f.Month = m
	}
	if y, ok := atoi(query.Get("ano")); ok && y > 0 {
		f.Year = y
	}
	return f
}

// RecordInput is the raw content of a submitted record form.
type RecordInput struct {
	ID        string
	ProductID int
	Sector    string
	Quantity  string
	Month     int
	Year      int
}

// ParseRecordInput extracts the record form fields. Unparseable numbers
// become zero and are rejected later by the form.
func ParseRecordInput(values url.Values) RecordInput {
	in := RecordInput{
		ID:       sanitizeInput(values.Get("id")),
		Sector:   sanitizeInput(values.Get("setor")),
		Quantity: sanitizeInput(values.Get("quantidade")),
	}
	in.ProductID, _ = atoi(values.Get("produto"))
	in.Month, _ = atoi(values.Get("mes"))
	in.Year, _ = atoi(values.Get("ano"))
	return in
}

// Apply copies the input onto f. The period is only taken when both month
// and year are usable; otherwise the form keeps its current period.
func (in RecordInput) Apply(f *form.Form) {
	f.SetProduct(in.ProductID)
	f.SetSector(in.Sector)
	f.SetQuantity(in.Quantity)
	if in.Month >= 1 && in.Month <= 12 && in.Year > 0 {
		f.SetPeriod(in.Month, in.Year)
	}
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Formato de requisição inválido")
	}
	return nil
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
