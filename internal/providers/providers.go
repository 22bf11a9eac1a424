package providers

import (
	"context"

	"excursion-catalog/internal/domain"
)

// CatalogSource yields the raw catalog document.
// A source performs exactly one fetch per call and never caches.
type CatalogSource interface {
	Name() string
	Fetch(ctx context.Context) (domain.CatalogDocument, error)
}

// SourceFunc adapts a plain function into a CatalogSource.
type SourceFunc func(ctx context.Context) (domain.CatalogDocument, error)

func (f SourceFunc) Name() string { return "func" }

func (f SourceFunc) Fetch(ctx context.Context) (domain.CatalogDocument, error) {
	return f(ctx)
}

// Records returns a source serving a fixed set of records.
func Records(records ...domain.RawExcursion) CatalogSource {
	return SourceFunc(func(ctx context.Context) (domain.CatalogDocument, error) {
		if err := ctx.Err(); err != nil {
			return domain.CatalogDocument{}, err
		}
		out := make([]domain.RawExcursion, len(records))
		copy(out, records)
		return domain.CatalogDocument{Total: len(out), Excursions: out}, nil
	})
}
