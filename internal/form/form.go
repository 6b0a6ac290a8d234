// Package form implements the record entry form as a small state machine.
//
// A form is Idle while required fields are missing, Valid once product,
// sector and quantity are all set, and Editing while it is bound to an
// existing record. Submit never produces a partial record: it either
// returns a complete Intent or ErrIncomplete with the form unchanged.
package form

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"acessorios/internal/core"
)

// State is the form's lifecycle state.
type State int

const (
	Idle State = iota
	Valid
	Editing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Valid:
		return "valid"
	case Editing:
		return "editing"
	}
	return "unknown"
}

// ErrIncomplete is returned by Submit when a required field is missing or
// does not resolve to a usable value.
var ErrIncomplete = errors.New("form incomplete")

// IntentKind tells the caller which remote operation a submission maps to.
type IntentKind int

const (
	Create IntentKind = iota + 1
	Update
)

// Intent is the outcome of a successful submission. Draft is set for
// Create, Record for Update.
type Intent struct {
	Kind   IntentKind
	Draft  core.Draft
	Record core.Record
}

// Preview is the live price summary shown next to the form.
type Preview struct {
	UnitPrice core.Money
	Total     core.Money
}

// Form holds the user's in-progress input. The zero value is not usable;
// call New.
type Form struct {
	ProductID int
	Sector    string
	Quantity  string
	Month     int
	Year      int

	editing *core.Record
}

// New returns an empty form with the period set to now.
func New(now time.Time) *Form {
	f := &Form{}
	f.reset(now)
	return f
}

func (f *Form) reset(now time.Time) {
	f.ProductID = 0
	f.Sector = ""
	f.Quantity = ""
	f.Month = int(now.Month())
	f.Year = now.Year()
	f.editing = nil
}

// SetProduct selects a catalog product; 0 clears the selection.
func (f *Form) SetProduct(id int) { f.ProductID = id }

// SetSector selects the receiving sector.
func (f *Form) SetSector(sector string) { f.Sector = strings.TrimSpace(sector) }

// SetQuantity stores the raw input; it is parsed on Submit and Preview.
func (f *Form) SetQuantity(raw string) { f.Quantity = strings.TrimSpace(raw) }

// SetPeriod sets the month (1-12) and year the record is booked under.
func (f *Form) SetPeriod(month, year int) {
	f.Month = month
	f.Year = year
}

// BeginEdit binds the form to rec. Product, sector and quantity come from
// the record; the period is reset to now rather than taken from it.
func (f *Form) BeginEdit(rec core.Record, now time.Time) {
	r := rec
	f.editing = &r
	f.ProductID = rec.ProductID
	f.Sector = rec.Sector
	f.Quantity = strconv.Itoa(rec.Quantity)
	f.Month = int(now.Month())
	f.Year = now.Year()
}

// CancelEdit clears every field and leaves edit mode.
func (f *Form) CancelEdit(now time.Time) {
	f.reset(now)
}

// Editing returns the record being edited, if any.
func (f *Form) Editing() (core.Record, bool) {
	if f.editing == nil {
		return core.Record{}, false
	}
	return *f.editing, true
}

// State derives the lifecycle state from the current fields.
func (f *Form) State() State {
	switch {
	case f.editing != nil:
		return Editing
	case f.ProductID != 0 && f.Sector != "" && f.Quantity != "":
		return Valid
	default:
		return Idle
	}
}

func (f *Form) quantity() (int, bool) {
	q, err := strconv.Atoi(f.Quantity)
	if err != nil || q <= 0 {
		return 0, false
	}
	return q, true
}

// Preview computes unit price and total for the current selection. Both are
// zero when no product is selected; the total is zero while the quantity
// does not parse.
func (f *Form) Preview() Preview {
	entry, ok := core.LookupProduct(f.ProductID)
	if !ok {
		return Preview{}
	}
	p := Preview{UnitPrice: entry.UnitPrice}
	if q, ok := f.quantity(); ok {
		p.Total = entry.UnitPrice.Times(q)
	}
	return p
}

// Submit turns the form into a create or update intent. A successful create
// resets the form; a successful update keeps it in Editing until the caller
// cancels the edit.
func (f *Form) Submit(now time.Time) (Intent, error) {
	if f.ProductID == 0 || f.Sector == "" || f.Quantity == "" {
		return Intent{}, ErrIncomplete
	}
	if !core.IsSector(f.Sector) {
		return Intent{}, ErrIncomplete
	}
	q, ok := f.quantity()
	if !ok {
		return Intent{}, ErrIncomplete
	}
	draft, err := core.NewDraft(f.ProductID, f.Sector, q, f.Month, f.Year)
	if err != nil {
		return Intent{}, errors.Join(ErrIncomplete, err)
	}

	if f.editing != nil {
		rec := *f.editing
		rec.Draft = draft
		return Intent{Kind: Update, Record: rec}, nil
	}

	f.reset(now)
	return Intent{Kind: Create, Draft: draft}, nil
}
