package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Money is an amount in integer cents of BRL.
	Money struct {
		Cents int64
	}

	// CatalogEntry is a product as listed in the static catalog.
	CatalogEntry struct {
		ID          int
		Name        string
		UnitPrice   Money
		StockOnHand int
	}

	// Draft is a record before the remote store assigns it an identity.
	Draft struct {
		ProductID  int    `json:"productId"`
		Name       string `json:"nome"`
		Sector     string `json:"setor"`
		Quantity   int    `json:"quantidade"`
		UnitPrice  Money  `json:"valorUnit"`
		Total      Money  `json:"total"`
		StockAfter int    `json:"estoque"` // catalog stock minus quantity, snapshot
		Month      int    `json:"mes"`
		Year       int    `json:"ano"`
	}

	// Record is one purchase/allocation event as stored remotely.
	// Name, UnitPrice and Total are copied at write time and never
	// recomputed from the catalog afterwards.
	Record struct {
		ID string `json:"id"`
		Draft
		CreatedAt Timestamp `json:"timestamp"`
	}
)

var (
	ErrEmptyID         = errors.New("empty record id")
	ErrInvalidProduct  = errors.New("invalid product id")
	ErrUnknownProduct  = errors.New("product not in catalog")
	ErrEmptySector     = errors.New("empty sector")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTotalMismatch   = errors.New("total does not match quantity times unit price")
)

// Validate checks the structural invariants of a draft. It does not look
// the product up in the catalog: stored records are historical facts.
func (d Draft) Validate() error {
	if d.ProductID <= 0 {
		return ErrInvalidProduct
	}
	if strings.TrimSpace(d.Sector) == "" {
		return ErrEmptySector
	}
	if d.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if d.Month < 1 || d.Month > 12 {
		return ErrInvalidMonth
	}
	if d.Year <= 0 {
		return ErrInvalidYear
	}
	if d.UnitPrice.Cents < 0 {
		return ErrInvalidAmount
	}
	if d.Total != d.UnitPrice.Times(d.Quantity) {
		return ErrTotalMismatch
	}
	return nil
}

// Validate checks the id and then the draft fields.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	return r.Draft.Validate()
}

// NewDraft composes a draft from the catalog entry for productID. Price,
// total and resulting stock are derived here and nowhere else.
func NewDraft(productID int, sector string, quantity, month, year int) (Draft, error) {
	entry, ok := LookupProduct(productID)
	if !ok {
		return Draft{}, ErrUnknownProduct
	}
	d := Draft{
		ProductID:  entry.ID,
		Name:       entry.Name,
		Sector:     sector,
		Quantity:   quantity,
		UnitPrice:  entry.UnitPrice,
		Total:      entry.UnitPrice.Times(quantity),
		StockAfter: entry.StockOnHand - quantity,
		Month:      month,
		Year:       year,
	}
	if err := d.Validate(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Timestamp is a point in time carried on the wire as Unix milliseconds.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates t to millisecond precision.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: time.UnixMilli(t.UnixMilli()).UTC()}
}
