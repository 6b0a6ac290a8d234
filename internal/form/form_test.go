package form

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acessorios/internal/core"
)

var now = time.Date(2025, time.May, 14, 10, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	f := New(now)
	assert.Equal(t, Idle, f.State())
	assert.Equal(t, 5, f.Month)
	assert.Equal(t, 2025, f.Year)
	assert.Zero(t, f.ProductID)
	assert.Empty(t, f.Sector)
	assert.Empty(t, f.Quantity)
}

func TestSubmit_Incomplete(t *testing.T) {
	tests := []struct {
		name    string
		product int
		sector  string
		qty     string
	}{
		{"nothing set", 0, "", ""},
		{"missing product", 0, "TI", "1"},
		{"missing sector", 101, "", "1"},
		{"missing quantity", 101, "TI", ""},
		{"unparseable quantity", 101, "TI", "abc"},
		{"zero quantity", 101, "TI", "0"},
		{"negative quantity", 101, "TI", "-2"},
		{"unknown product", 999, "TI", "1"},
		{"unknown sector", 101, "MARKETING", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(now)
			f.SetProduct(tt.product)
			f.SetSector(tt.sector)
			f.SetQuantity(tt.qty)
			before := *f

			_, err := f.Submit(now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIncomplete))
			assert.Equal(t, before, *f, "form must be left untouched")
		})
	}
}

func TestSubmit_Create(t *testing.T) {
	f := New(now)
	f.SetProduct(101)
	f.SetSector("TI")
	f.SetQuantity("3")
	f.SetPeriod(2, 2024)
	assert.Equal(t, Valid, f.State())

	intent, err := f.Submit(now)
	require.NoError(t, err)
	assert.Equal(t, Create, intent.Kind)

	d := intent.Draft
	assert.Equal(t, 101, d.ProductID)
	assert.Equal(t, "TECLADO-Logitech K120", d.Name)
	assert.Equal(t, "TI", d.Sector)
	assert.Equal(t, 3, d.Quantity)
	assert.Equal(t, int64(7280), d.UnitPrice.Cents)
	assert.Equal(t, int64(21840), d.Total.Cents)
	assert.Equal(t, 0, d.StockAfter)
	assert.Equal(t, 2, d.Month)
	assert.Equal(t, 2024, d.Year)

	assert.Equal(t, Idle, f.State(), "successful create resets the form")
	assert.Zero(t, f.ProductID)
	assert.Equal(t, 5, f.Month)
}

func TestSubmit_StockMayGoNegative(t *testing.T) {
	f := New(now)
	f.SetProduct(102)
	f.SetSector("RH")
	f.SetQuantity("5")

	intent, err := f.Submit(now)
	require.NoError(t, err)
	assert.Equal(t, -3, intent.Draft.StockAfter)
}

func TestEditFlow(t *testing.T) {
	existing := core.Record{
		ID: "a1",
		Draft: core.Draft{
			ProductID: 101, Name: "TECLADO-Logitech K120", Sector: "TI", Quantity: 2,
			UnitPrice: core.Money{Cents: 7280}, Total: core.Money{Cents: 14560},
			StockAfter: 1, Month: 3, Year: 2023,
		},
		CreatedAt: core.NewTimestamp(now.AddDate(-2, 0, 0)),
	}

	f := New(now)
	f.BeginEdit(existing, now)
	assert.Equal(t, Editing, f.State())
	assert.Equal(t, 101, f.ProductID)
	assert.Equal(t, "TI", f.Sector)
	assert.Equal(t, "2", f.Quantity)
	assert.Equal(t, 5, f.Month, "period resets to now on edit")
	assert.Equal(t, 2025, f.Year)

	f.SetProduct(106)
	f.SetQuantity("4")

	intent, err := f.Submit(now)
	require.NoError(t, err)
	assert.Equal(t, Update, intent.Kind)
	assert.Equal(t, "a1", intent.Record.ID)
	assert.Equal(t, existing.CreatedAt, intent.Record.CreatedAt)
	assert.Equal(t, "MOUSE - Logitech M190", intent.Record.Name)
	assert.Equal(t, int64(27960), intent.Record.Total.Cents)
	assert.Equal(t, 0, intent.Record.StockAfter)
	assert.Equal(t, 5, intent.Record.Month)
	assert.Equal(t, 2025, intent.Record.Year)

	assert.Equal(t, Editing, f.State(), "update keeps the form bound until cancelled")

	f.CancelEdit(now)
	assert.Equal(t, Idle, f.State())
	assert.Zero(t, f.ProductID)
	assert.Empty(t, f.Sector)
	assert.Empty(t, f.Quantity)
	_, editing := f.Editing()
	assert.False(t, editing)
}

func TestBeginEditThenCancelYieldsEmptyForm(t *testing.T) {
	f := New(now)
	f.BeginEdit(core.Record{ID: "z", Draft: core.Draft{ProductID: 104, Sector: "PCP", Quantity: 1}}, now)
	f.CancelEdit(now)
	assert.Equal(t, *New(now), *f)
}

func TestPreview(t *testing.T) {
	f := New(now)
	assert.Equal(t, Preview{}, f.Preview())

	f.SetProduct(103)
	assert.Equal(t, Preview{UnitPrice: core.Money{Cents: 2590}}, f.Preview())

	f.SetQuantity("2")
	assert.Equal(t, Preview{UnitPrice: core.Money{Cents: 2590}, Total: core.Money{Cents: 5180}}, f.Preview())

	f.SetQuantity("dois")
	assert.Equal(t, core.Money{}, f.Preview().Total)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "editing", Editing.String())
}
