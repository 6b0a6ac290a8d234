package core

import "sort"

// Sectors is the fixed set of departments a record can be allocated to.
var Sectors = []string{
	"JURIDICO",
	"FINANCEIRO",
	"TI",
	"RH",
	"COMPRAS",
	"COMERCIAL",
	"QUALIDADE",
	"ENGENHARIA",
	"MANUTENÇÃO",
	"DIRETORIA",
	"ONCRETS",
	"PRODUÇÃO",
	"PCP",
	"ESTUDOS",
	"ESCORAMENTO",
}

var catalog = map[int]CatalogEntry{
	101: {ID: 101, Name: "TECLADO-Logitech K120", UnitPrice: Money{Cents: 7280}, StockOnHand: 3},
	102: {ID: 102, Name: "MOUSE-Logitech M170", UnitPrice: Money{Cents: 6990}, StockOnHand: 2},
	103: {ID: 103, Name: "SUPORTE NOTEBOOK - Maxcril", UnitPrice: Money{Cents: 2590}, StockOnHand: 5},
	104: {ID: 104, Name: "SUPORTE NOTEBOOK - Reliza", UnitPrice: Money{Cents: 1690}, StockOnHand: 4},
	105: {ID: 105, Name: "MOUSE - Logitech M90", UnitPrice: Money{Cents: 3800}, StockOnHand: 3},
	106: {ID: 106, Name: "MOUSE - Logitech M190", UnitPrice: Money{Cents: 6990}, StockOnHand: 4},
	107: {ID: 107, Name: "TECLADO - Logitech K120- USANDO", UnitPrice: Money{Cents: 0}, StockOnHand: 6},
}

var catalogList = func() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}()

// LookupProduct returns the catalog entry for id.
func LookupProduct(id int) (CatalogEntry, bool) {
	e, ok := catalog[id]
	return e, ok
}

// Products returns the catalog ordered by id.
func Products() []CatalogEntry {
	return append([]CatalogEntry(nil), catalogList...)
}

// IsSector reports whether s is one of the known sectors.
func IsSector(s string) bool {
	for _, v := range Sectors {
		if v == s {
			return true
		}
	}
	return false
}
