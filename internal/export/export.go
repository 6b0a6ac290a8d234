// Package export renders record lists as downloadable CSV and PDF reports.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"acessorios/internal/core"
	"acessorios/internal/metrics"
)

// ErrEmptyExport is returned when there is nothing to export. Nothing is
// written to the destination in that case.
var ErrEmptyExport = errors.New("no records to export")

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown export format")

// EmptyNotice is the user-facing message for ErrEmptyExport.
const EmptyNotice = "Não há registros para exportar."

type Format string

const (
	CSV Format = "csv"
	PDF Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case CSV:
		return CSV, nil
	case PDF:
		return PDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FileName is the suggested download name.
func (f Format) FileName() string {
	return "relatorio_acessorios." + string(f)
}

func (f Format) ContentType() string {
	if f == PDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Write renders records in format f to w. The report is built in memory
// first so a failure never leaves a partial file behind.
func Write(w io.Writer, f Format, records []core.Record, issued time.Time) error {
	if len(records) == 0 {
		metrics.Exports.WithLabelValues(string(f), "empty").Inc()
		return ErrEmptyExport
	}

	var buf bytes.Buffer
	var err error
	switch f {
	case CSV:
		err = writeCSV(&buf, records)
	case PDF:
		err = writePDF(&buf, records, issued)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err != nil {
		metrics.Exports.WithLabelValues(string(f), "error").Inc()
		return err
	}

	if _, err := buf.WriteTo(w); err != nil {
		metrics.Exports.WithLabelValues(string(f), "error").Inc()
		return fmt.Errorf("write %s export: %w", f, err)
	}
	metrics.Exports.WithLabelValues(string(f), "ok").Inc()
	return nil
}
