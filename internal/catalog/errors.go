package catalog

import (
	"errors"
	"fmt"

	"excursion-catalog/internal/httpx"
)

// LoadErrorMessage is the user-facing text of a failed catalog request.
const LoadErrorMessage = "Не удалось загрузить данные об экскурсиях"

// ErrNotLoaded is returned by views that need a loaded catalog.
var ErrNotLoaded = errors.New("catalog: not loaded")

// ErrNotFound is returned when no excursion matches an id or URL.
var ErrNotFound = errors.New("catalog: excursion not found")

// LoadError reports a catalog request answered with a non-2xx status.
type LoadError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *LoadError) Error() string { return LoadErrorMessage }

func (e *LoadError) Unwrap() error { return e.Err }

// TransportError reports a network or decoding failure.
type TransportError struct {
	Source string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "catalog: transport error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// classify wraps a source failure into LoadError or TransportError.
func classify(source string, err error) error {
	if err == nil {
		return nil
	}
	var le *LoadError
	var te *TransportError
	if errors.As(err, &le) || errors.As(err, &te) {
		return err
	}
	var herr *httpx.HTTPError
	if errors.As(err, &herr) {
		return &LoadError{StatusCode: herr.StatusCode, URL: herr.URL, Err: herr}
	}
	return &TransportError{Source: source, Err: fmt.Errorf("%s: %w", source, err)}
}
