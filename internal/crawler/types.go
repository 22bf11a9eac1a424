package crawler

import (
	"time"

	"excursion-catalog/internal/domain"
)

// Kind is what a crawled page turned out to be.
type Kind string

const (
	KindExcursion Kind = "excursion"
	KindService   Kind = "service"
	KindContact   Kind = "contact"
	KindPage      Kind = "page"
)

// SiteData is everything collected from one crawl. It is written to disk
// as JSON and later filtered into the catalog document.
type SiteData struct {
	Pages      []Page                `json:"pages"`
	Excursions []domain.RawExcursion `json:"excursions"`
	Services   []Page                `json:"services"`
	Contacts   Contacts              `json:"contacts"`
	Navigation []domain.Link         `json:"navigation"`
	Images     []domain.Image        `json:"images"`
	Metadata   Metadata              `json:"metadata"`
}

// Page is a non-excursion page.
type Page struct {
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Content     domain.Content `json:"content"`
	Links       []domain.Link  `json:"links,omitempty"`
	Images      []domain.Image `json:"images"`
	Contacts    *Contacts      `json:"contacts,omitempty"`
}

type Contacts struct {
	Phones    []string `json:"phones,omitempty"`
	Emails    []string `json:"emails,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
}

func (c Contacts) IsEmpty() bool {
	return len(c.Phones) == 0 && len(c.Emails) == 0 && len(c.Addresses) == 0
}

// Merge adds the values of o that c does not hold yet.
func (c *Contacts) Merge(o Contacts) {
	c.Phones = appendUnique(c.Phones, o.Phones...)
	c.Emails = appendUnique(c.Emails, o.Emails...)
	c.Addresses = appendUnique(c.Addresses, o.Addresses...)
}

type Metadata struct {
	BaseURL      string    `json:"base_url"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	PagesVisited int       `json:"pages_visited"`
	Failed       int       `json:"failed"`
	Renderer     string    `json:"renderer"`
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}
