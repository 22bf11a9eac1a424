package export

import (
	"encoding/csv"
	"io"
	"strings"

	"excursion-catalog/internal/domain"
)

// Keep header order EXACT: spreadsheets built on this file address columns
// by position.
var catalogHeader = []string{
	"ID",
	"TITLE",
	"CATEGORY",
	"PRICE",
	"DURATION",
	"URL",
	"IMAGE_URL",
	"IMAGE_COUNT",
	"PICKUP_POINTS",
	"ADDITIONAL_COSTS",
	"DESCRIPTION",
}

// WriteCSV writes normalized excursions, one row each.
func WriteCSV(w io.Writer, items []domain.Excursion) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(catalogHeader); err != nil {
		return err
	}
	for _, ex := range items {
		if err := cw.Write(toRow(ex)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toRow(ex domain.Excursion) []string {
	pickups := make([]string, 0, len(ex.PickupPoints))
	for _, p := range ex.PickupPoints {
		pickups = append(pickups, p.Location+": "+p.Price)
	}
	costs := make([]string, 0, len(ex.AdditionalCosts))
	for _, c := range ex.AdditionalCosts {
		costs = append(costs, c.Description+": "+c.Price)
	}

	return []string{
		ex.ID,
		ex.Title,
		string(ex.Category),
		ex.Price,
		ex.Duration,
		ex.URL,
		ex.Image,
		itoa(len(ex.Images)),
		strings.Join(cleanStrings(pickups), " | "),
		strings.Join(cleanStrings(costs), " | "),
		oneLine(ex.Description),
	}
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = oneLine(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
