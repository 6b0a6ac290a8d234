package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"acessorios/internal/core"
)

// Columns is the tabular layout shared by the CSV report and the sheet mirror.
var Columns = []string{"ID", "Produto ID", "Nome", "Setor", "Quantidade", "Valor Unitário", "Total"}

// Row renders r in Columns order. Amounts use a dot and no trailing zeros.
func Row(r core.Record) []string {
	return []string{
		r.ID,
		strconv.Itoa(r.ProductID),
		r.Name,
		r.Sector,
		strconv.Itoa(r.Quantity),
		r.UnitPrice.String(),
		r.Total.String(),
	}
}

// writeCSV emits one row per record in the given order. Fields are quoted
// only when they contain a separator, a quote or a line break.
func writeCSV(w io.Writer, records []core.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(Row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
