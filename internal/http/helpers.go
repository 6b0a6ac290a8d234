package http

import (
	"sort"
	"strings"
	"time"

	"acessorios/internal/core"
)

// monthNames are the pt-BR month labels used by the filter and form.
var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

type monthOption struct {
	Value int
	Name  string
}

func monthOptions() []monthOption {
	out := make([]monthOption, len(monthNames))
	for i, name := range monthNames {
		out[i] = monthOption{Value: i + 1, Name: name}
	}
	return out
}

// yearOptions lists the current year and every year present in records,
// newest first.
func yearOptions(records []core.Record, now time.Time) []int {
	seen := map[int]bool{now.Year(): true}
	for _, r := range records {
		seen[r.Year] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

type chartBar struct {
	Sector  string
	Amount  core.Money
	Percent int
}

// chartBars scales sector amounts against the largest one.
func chartBars(sectors []core.SectorAmount) []chartBar {
	var max int64
	for _, s := range sectors {
		if s.Amount.Cents > max {
			max = s.Amount.Cents
		}
	}
	out := make([]chartBar, len(sectors))
	for i, s := range sectors {
		out[i] = chartBar{Sector: s.Sector, Amount: s.Amount}
		if max > 0 {
			out[i].Percent = int(s.Amount.Cents * 100 / max)
		}
	}
	return out
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
