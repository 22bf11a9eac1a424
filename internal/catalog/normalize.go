package catalog

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"excursion-catalog/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultTitle     = "Экскурсия"
	DefaultPrice     = "Цена по запросу"
	PlaceholderImage = "https://placehold.net/400x300"
)

// AbkhaziaKeywords mark a record as belonging to Abkhazia. The Latin forms
// cover transliterated page slugs such as "gagra-excursion.html".
var AbkhaziaKeywords = []string{
	"абхазия", "абхаз", "гагра", "пицунда", "новый афон", "новоафон",
	"сухум", "рица", "псху", "бзыбь", "псырцха",
	"abkhaz", "abhaz", "gagra", "pitsunda", "afon",
	"sukhum", "ritsa", "pskhu", "bzyb", "psyrtskha",
}

var (
	titlePrefixRe = regexp.MustCompile(`(?i)^Экскурсии\s*:\s*`)
	htmlSlugRe    = regexp.MustCompile(`/([^/]+)\.html`)
)

// Category classifies a record by looking for region keywords in its
// title, description and url.
func Category(r domain.RawExcursion) domain.Category {
	text := fold(r.Title.String() + " " + r.Description.String() + " " + r.URL.String())
	for _, kw := range AbkhaziaKeywords {
		if strings.Contains(text, kw) {
			return domain.CategoryAbkhazia
		}
	}
	return domain.CategorySochi
}

func fold(s string) string {
	return norm.NFC.String(strings.ToLower(s))
}

// SlugFromURL derives a stable identifier from an excursion page URL:
// the last path segment without ".html" and "-detail". Relative or
// malformed input falls back to the first "/<name>.html" match.
// It returns "" when nothing usable is found.
func SlugFromURL(raw string) string {
	slug, _ := slugFromURL(raw)
	return slug
}

// slugFromURL also reports whether an "/<name>.html" match decided the
// result. Such a match is final even when the slug is empty, so the
// caller skips the random token and uses the index id.
func slugFromURL(raw string) (slug string, matched bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" && u.Host != "" {
		segments := strings.FieldsFunc(u.EscapedPath(), func(r rune) bool { return r == '/' })
		if len(segments) == 0 {
			return "", false
		}
		return trimSlug(segments[len(segments)-1]), false
	}

	if m := htmlSlugRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSuffix(m[1], "-detail"), true
	}
	return "", false
}

func trimSlug(s string) string {
	s = strings.TrimSuffix(s, ".html")
	return strings.TrimSuffix(s, "-detail")
}

// RandomID returns a 9 character lowercase token.
func RandomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// CleanTitle strips the "Экскурсии:" listing prefix.
func CleanTitle(title string) string {
	return titlePrefixRe.ReplaceAllString(title, "")
}

// Normalizer maps raw records to excursions.
type Normalizer struct {
	// FallbackID produces the id of records without a usable url.
	// Nil means RandomID.
	FallbackID func() string
}

func (n Normalizer) fallbackID() string {
	if n.FallbackID == nil {
		return RandomID()
	}
	return n.FallbackID()
}

// Normalize never fails: every missing field gets its default.
func (n Normalizer) Normalize(r domain.RawExcursion, index int) domain.Excursion {
	id, matched := slugFromURL(r.URL.String())
	unstable := false
	if id == "" && !matched {
		id = n.fallbackID()
		unstable = id != ""
	}
	if id == "" {
		id = fmt.Sprintf("excursion-%d", index)
	}

	title := CleanTitle(r.Title.String())
	if title == "" {
		title = DefaultTitle
	}

	price := r.Price.String()
	if price == "" {
		price = DefaultPrice
	}

	images := r.Images
	if images == nil {
		images = []domain.Image{}
	}

	pickups := r.PickupPoints
	if pickups == nil {
		pickups = []domain.PickupPoint{}
	}

	var content domain.Content
	if r.Content != nil {
		content = *r.Content
	}

	var costs []domain.AdditionalCost
	if len(r.AdditionalCosts) > 0 {
		costs = r.AdditionalCosts
	}

	return domain.Excursion{
		ID:              id,
		Title:           title,
		Description:     r.Description.String(),
		Price:           price,
		Duration:        r.Duration.String(),
		Image:           mainImage(images),
		Images:          images,
		Category:        Category(r),
		URL:             r.URL.String(),
		PickupPoints:    pickups,
		Content:         content,
		AdditionalCosts: costs,
		UnstableID:      unstable,
	}
}

func mainImage(images []domain.Image) string {
	for _, img := range images {
		if img.IsMain {
			if img.URL != "" {
				return img.URL
			}
			return PlaceholderImage
		}
	}
	if len(images) > 0 && images[0].URL != "" {
		return images[0].URL
	}
	return PlaceholderImage
}

// IsValid reports whether a record is a real excursion and not a
// scraped error page.
func IsValid(r domain.RawExcursion) bool {
	title := r.Title.String()
	return title != "" && !strings.Contains(title, "404") && !strings.Contains(title, "не существует")
}

// NormalizeAll drops invalid records and normalizes the rest, keeping
// source order. Indexes count surviving records.
func (n Normalizer) NormalizeAll(records []domain.RawExcursion) []domain.Excursion {
	out := make([]domain.Excursion, 0, len(records))
	for _, r := range records {
		if !IsValid(r) {
			continue
		}
		out = append(out, n.Normalize(r, len(out)))
	}
	return out
}

// Partition groups excursions by category. The result always holds the
// "all" key plus one key per known category.
type Partition struct {
	All      []domain.Excursion `json:"all"`
	Sochi    []domain.Excursion `json:"sochi"`
	Abkhazia []domain.Excursion `json:"abkhazia"`
}

func PartitionByCategory(items []domain.Excursion) Partition {
	p := Partition{
		All:      items,
		Sochi:    []domain.Excursion{},
		Abkhazia: []domain.Excursion{},
	}
	if p.All == nil {
		p.All = []domain.Excursion{}
	}
	for _, ex := range items {
		switch ex.Category {
		case domain.CategoryAbkhazia:
			p.Abkhazia = append(p.Abkhazia, ex)
		default:
			p.Sochi = append(p.Sochi, ex)
		}
	}
	return p
}

// Get returns the slice for a category name; "" and "all" mean everything.
func (p Partition) Get(c domain.Category) ([]domain.Excursion, bool) {
	switch c {
	case "", "all":
		return p.All, true
	case domain.CategorySochi:
		return p.Sochi, true
	case domain.CategoryAbkhazia:
		return p.Abkhazia, true
	}
	return nil, false
}
