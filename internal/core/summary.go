package core

// Filter selects records by reference period. Zero fields are unset and
// match everything.
type Filter struct {
	Month int
	Year  int
}

// IsZero reports whether neither month nor year is set.
func (f Filter) IsZero() bool {
	return f.Month == 0 && f.Year == 0
}

// Match reports whether r falls within the filter.
func (f Filter) Match(r Record) bool {
	if f.Month != 0 && r.Month != f.Month {
		return false
	}
	if f.Year != 0 && r.Year != f.Year {
		return false
	}
	return true
}

// Apply returns the matching records in their original order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Totals summarises a set of records.
type Totals struct {
	Value   Money
	Items   int
	Records int
}

// ComputeTotals sums value and quantity over records.
func ComputeTotals(records []Record) Totals {
	var t Totals
	for _, r := range records {
		t.Value = t.Value.Add(r.Total)
		t.Items += r.Quantity
	}
	t.Records = len(records)
	return t
}

// SectorAmount is the summed value of records for one sector.
type SectorAmount struct {
	Sector string
	Amount Money
}

// SectorBreakdown groups records by sector in first-seen order.
func SectorBreakdown(records []Record) []SectorAmount {
	index := make(map[string]int)
	var out []SectorAmount
	for _, r := range records {
		i, ok := index[r.Sector]
		if !ok {
			i = len(out)
			index[r.Sector] = i
			out = append(out, SectorAmount{Sector: r.Sector})
		}
		out[i].Amount = out[i].Amount.Add(r.Total)
	}
	return out
}

// Overview is everything the dashboard shows for one filter.
type Overview struct {
	Filter  Filter
	Records []Record // filtered
	Totals  Totals   // over Records
	Sectors []SectorAmount
}

// Dashboard builds the overview for filter. The sector breakdown is computed
// over all records, not only the filtered ones.
func Dashboard(records []Record, filter Filter) Overview {
	filtered := filter.Apply(records)
	return Overview{
		Filter:  filter,
		Records: filtered,
		Totals:  ComputeTotals(filtered),
		Sectors: SectorBreakdown(records),
	}
}
