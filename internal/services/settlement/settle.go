// Package settlement turns a game's running totals into monetary
// outcomes. Lower totals are better: each player's gross amount is the
// spread between the field's combined total and their own total scaled by
// the player count, priced at the per-point rate. Winners (positive gross)
// pay tax at the configured percentage; everyone else settles at gross.
package settlement

import (
	"math"
	"sort"

	"github.com/kprao/rummyscore/internal/model"
)

// Entry is one player's settlement line.
type Entry struct {
	Name          string `json:"name"`
	DisplayNumber int    `json:"displayNumber,omitempty"`
	Total         int    `json:"total"`
	Gross         int    `json:"gross"`
	Tax           int    `json:"tax"`
	Net           int    `json:"net"`
}

// Result holds the full settlement, ranked best (lowest total) first.
type Result struct {
	Entries  []Entry `json:"entries"`
	TotalTax int     `json:"totalTax"`
}

// Settle computes every player's gross, tax, and net amounts. Players are
// ranked ascending by total; equal totals keep their input (storage)
// order. Rounding is half away from zero, applied independently to gross
// and tax, so the same inputs settle identically on every device.
func Settle(players []model.Player, pointValue, gstPercent float64) Result {
	n := len(players)
	entries := make([]Entry, n)
	sum := 0
	for i := range players {
		total := players[i].Total()
		sum += total
		entries[i] = Entry{
			Name:          players[i].Name,
			DisplayNumber: players[i].DisplayNumber,
			Total:         total,
		}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Total < entries[b].Total
	})

	result := Result{Entries: entries}
	for i := range entries {
		gross := int(math.Round(float64(sum-entries[i].Total*n) * pointValue))
		entries[i].Gross = gross
		if gross > 0 {
			entries[i].Tax = int(math.Round(float64(gross) * gstPercent / 100))
			entries[i].Net = gross - entries[i].Tax
		} else {
			entries[i].Tax = 0
			entries[i].Net = gross
		}
		result.TotalTax += entries[i].Tax
	}
	return result
}
