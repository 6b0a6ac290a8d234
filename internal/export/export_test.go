package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acessorios/internal/core"
)

var issued = time.Date(2025, time.June, 3, 15, 4, 5, 0, time.UTC)

func record(id string, productID int, name, sector string, qty int, unitCents int64) core.Record {
	return core.Record{
		ID: id,
		Draft: core.Draft{
			ProductID: productID,
			Name:      name,
			Sector:    sector,
			Quantity:  qty,
			UnitPrice: core.Money{Cents: unitCents},
			Total:     core.Money{Cents: unitCents * int64(qty)},
			Month:     6,
			Year:      2025,
		},
	}
}

func sampleRecords() []core.Record {
	return []core.Record{
		record("a1", 101, "TECLADO-Logitech K120", "TI", 2, 7280),
		// Fields holding a comma are quoted so the row keeps seven columns.
		// Earlier exports wrote them bare and split the name in two.
		record("b2", 107, "TECLADO - Logitech K120, USADO", "MANUTENÇÃO", 1, 0),
		record("c3", 105, "MOUSE - Logitech M90", "FINANCEIRO", 3, 3800),
	}
}

func TestWriteCSV_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sampleRecords(), issued))

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "csv_report", buf.Bytes())
}

func TestWriteCSV_ReferenceLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sampleRecords()[:1], issued))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Produto ID,Nome,Setor,Quantidade,Valor Unitário,Total", lines[0])
	assert.Equal(t, "a1,101,TECLADO-Logitech K120,TI,2,72.8,145.6", lines[1])
}

func TestWrite_Empty(t *testing.T) {
	all := sampleRecords()
	filtered := core.Filter{Year: 2099}.Apply(all)

	for _, f := range []Format{CSV, PDF} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			err := Write(&buf, f, filtered, issued)
			assert.True(t, errors.Is(err, ErrEmptyExport))
			assert.Zero(t, buf.Len(), "nothing is written")
		})
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, PDF, sampleRecords(), issued))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderPDF_RepeatsHeaderAcrossPages(t *testing.T) {
	var many []core.Record
	for i := 0; i < 80; i++ {
		many = append(many, record(fmt.Sprintf("r%d", i), 102, "MOUSE-Logitech M170", "TI", 1, 6990))
	}

	pdf, err := renderPDF(many, issued)
	require.NoError(t, err)
	assert.Greater(t, pdf.PageCount(), 1)

	one, err := renderPDF(many[:1], issued)
	require.NoError(t, err)
	assert.Equal(t, 1, one.PageCount())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, PDF, f)
	assert.Equal(t, "relatorio_acessorios.pdf", f.FileName())
	assert.Equal(t, "application/pdf", f.ContentType())

	f, err = ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, "relatorio_acessorios.csv", f.FileName())

	_, err = ParseFormat("xlsx")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Format("xlsx"), sampleRecords(), issued)
	assert.True(t, errors.Is(err, ErrUnknownFormat))
	assert.Zero(t, buf.Len())
}
