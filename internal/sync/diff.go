package sync

import (
	"sort"
	"strings"
	"time"

	"excursion-catalog/internal/domain"
	"excursion-catalog/internal/export"
	"excursion-catalog/internal/mappers"
	"excursion-catalog/internal/storage"
)

// Plan is what it takes to bring a stored snapshot in line with a fresh
// catalog.
type Plan struct {
	Create []domain.Excursion
	Update []domain.Excursion
	Delete []export.DeleteEntry
	// Skipped holds excursions with a random id; storing them would
	// delete and re-create them on every run.
	Skipped []domain.Excursion
}

func (p Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// Diff compares the fresh catalog with the stored snapshot.
// Returns:
// - create: present in the catalog but not stored
// - update: present in both but changed
// - delete: stored but gone from the catalog
//
// Results are ordered by id. When the catalog holds an id twice the
// first occurrence wins, as it does for lookups. Excursions without a
// stable id are never stored and land in Skipped.
func Diff(fresh []domain.Excursion, stored []storage.Record) Plan {
	freshByID := map[string]domain.Excursion{}
	var skipped []domain.Excursion
	for _, ex := range fresh {
		id := strings.TrimSpace(ex.ID)
		if id == "" {
			continue
		}
		if ex.UnstableID {
			skipped = append(skipped, ex)
			continue
		}
		if _, dup := freshByID[id]; !dup {
			freshByID[id] = ex
		}
	}

	storedByID := map[string]storage.Record{}
	for _, r := range stored {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			continue
		}
		storedByID[id] = r
	}

	plan := Plan{Skipped: skipped}
	for id, ex := range freshByID {
		r, ok := storedByID[id]
		if !ok {
			plan.Create = append(plan.Create, ex)
			continue
		}
		if needsUpdate(ex, r) {
			plan.Update = append(plan.Update, ex)
		}
	}
	for id, r := range storedByID {
		if _, ok := freshByID[id]; ok {
			continue
		}
		plan.Delete = append(plan.Delete, export.DeleteEntry{ID: id, Title: strings.TrimSpace(r.Title)})
	}

	sort.Slice(plan.Create, func(i, j int) bool { return plan.Create[i].ID < plan.Create[j].ID })
	sort.Slice(plan.Update, func(i, j int) bool { return plan.Update[i].ID < plan.Update[j].ID })
	sort.Slice(plan.Delete, func(i, j int) bool { return plan.Delete[i].ID < plan.Delete[j].ID })
	return plan
}

func needsUpdate(ex domain.Excursion, r storage.Record) bool {
	if norm(ex.Title) != norm(r.Title) {
		return true
	}
	if string(ex.Category) != r.Category {
		return true
	}
	if norm(ex.Price) != norm(r.Price) || norm(ex.Duration) != norm(r.Duration) {
		return true
	}
	if strings.TrimSpace(ex.URL) != strings.TrimSpace(r.URL) || strings.TrimSpace(ex.Image) != strings.TrimSpace(r.Image) {
		return true
	}

	// Everything else (pickups, costs, content) only lives in the payload.
	// Records written before payloads existed never trigger on it.
	if r.Payload == "" {
		return false
	}
	fresh, err := mappers.ToRecord(ex, time.Time{})
	if err != nil {
		return true
	}
	return fresh.Payload != r.Payload
}

func norm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
