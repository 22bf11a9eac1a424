package mappers

import (
	"encoding/json"
	"fmt"
	"time"

	"excursion-catalog/internal/domain"
	"excursion-catalog/internal/storage"
)

// ToRecord maps a normalized excursion to its stored form.
func ToRecord(ex domain.Excursion, now time.Time) (storage.Record, error) {
	payload, err := json.Marshal(ex)
	if err != nil {
		return storage.Record{}, fmt.Errorf("mappers: encode %s: %w", ex.ID, err)
	}
	return storage.Record{
		ID:        ex.ID,
		Title:     ex.Title,
		Category:  string(ex.Category),
		Price:     ex.Price,
		Duration:  ex.Duration,
		URL:       ex.URL,
		Image:     ex.Image,
		Payload:   string(payload),
		UpdatedAt: now,
	}, nil
}

// ToRecords maps a whole catalog with the same timestamp.
func ToRecords(items []domain.Excursion, now time.Time) ([]storage.Record, error) {
	out := make([]storage.Record, 0, len(items))
	for _, ex := range items {
		r, err := ToRecord(ex, now)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// FromRecord restores the excursion stored in r. Columns win over the
// payload when both are set.
func FromRecord(r storage.Record) (domain.Excursion, error) {
	var ex domain.Excursion
	if r.Payload != "" {
		if err := json.Unmarshal([]byte(r.Payload), &ex); err != nil {
			return domain.Excursion{}, fmt.Errorf("mappers: decode %s: %w", r.ID, err)
		}
	}
	ex.ID = r.ID
	if r.Title != "" {
		ex.Title = r.Title
	}
	if r.Category != "" {
		ex.Category = domain.Category(r.Category)
	}
	if r.Price != "" {
		ex.Price = r.Price
	}
	if r.Duration != "" {
		ex.Duration = r.Duration
	}
	if r.URL != "" {
		ex.URL = r.URL
	}
	if r.Image != "" {
		ex.Image = r.Image
	}
	return ex, nil
}
