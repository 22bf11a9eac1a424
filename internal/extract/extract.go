// Package extract turns the excursions of a site crawl into the catalog
// document served to the UI, dropping listing pages, site chrome and
// footer text.
package extract

import (
	"sort"
	"strings"

	"excursion-catalog/internal/domain"
)

const (
	SourceSochi    = "Сочи"
	SourceAbkhazia = "Абхазия"
	SourceGeneral  = "Общие"
)

var (
	excludedImages = []string{
		"oldlogo.png",
		"mod_ebwhatsappchat",
		"mc.yandex.ru",
		"ps4-5.png",
		"Sergeyqweqwe.jpg",
		"filetype_jpg.png",
		"vmgeneral",
		"components/com_virtuemart/assets",
	}
	productImageDirs = []string{"virtuemart/product", "images/virtuemart"}

	excludedHeadings = []string{"ССЫЛКИ", "Популярное", "Контакты", "О нас", "Награды"}

	excludedParagraphs = []string{
		`ООО "Хостинский Отдых"`,
		"ИНН:",
		"ОГРН:",
		"КПП:",
		"Политика конфиденциальности",
		"Условия возврата",
		"Способы оплаты",
		"Здравствуйте. У вас возникли вопросы?",
		"Этот адрес электронной почты защищён от спам-ботов",
		"8 (988)",
		"8 (918)",
		"г. Сочи, ул.",
	}

	navItems = []string{
		"Главная", "О компании", "Экскурсии", "Туристам", "Услуги", "Контакты",
		"О нас", "Награды", "Сочи", "Абхазия", "Услуги гидов", "Трансфер", "Размещение",
	}
	contactItems = []string{"8 (988)", "8 (918)", "Этот адрес электронной почты", "г. Сочи"}
)

// maxNavListItems is the largest list that can still be a menu.
const maxNavListItems = 15

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// IsDetailPage reports whether url is an excursion detail page rather
// than the home page, a listing or the calendar.
func IsDetailPage(url string) bool {
	if !strings.Contains(url, "detail.html") {
		return false
	}
	return !strings.Contains(url, "dirDesc.html") && !strings.Contains(url, "kalendar.html")
}

// SourceCategory labels an excursion by the section of the site it was
// found in.
func SourceCategory(url string) string {
	switch {
	case strings.Contains(url, "ekskursii-sochi"):
		return SourceSochi
	case strings.Contains(url, "ekskursii-abkhaziya"):
		return SourceAbkhazia
	}
	return SourceGeneral
}

// Images keeps product photos only. The first one kept is marked main.
func Images(images []domain.Image) []domain.Image {
	out := []domain.Image{}
	for _, img := range images {
		if img.URL == "" || containsAny(img.URL, excludedImages) || !containsAny(img.URL, productImageDirs) {
			continue
		}
		out = append(out, domain.Image{URL: img.URL, Alt: img.Alt})
	}
	if len(out) > 0 {
		out[0].IsMain = true
	}
	return out
}

// Content drops footer headings, legal and contact paragraphs, menus and
// contact lists. Only headings, paragraphs and lists are kept.
func Content(c *domain.Content) *domain.Content {
	out := &domain.Content{
		Headings:   []domain.Heading{},
		Paragraphs: []string{},
		Lists:      [][]string{},
	}
	if c == nil {
		return out
	}

	for _, h := range c.Headings {
		if !contains(excludedHeadings, h.Text) {
			out.Headings = append(out.Headings, h)
		}
	}
	for _, p := range c.Paragraphs {
		if containsAny(p, excludedParagraphs) || len([]rune(strings.TrimSpace(p))) <= 10 {
			continue
		}
		out.Paragraphs = append(out.Paragraphs, p)
	}
	for _, items := range c.Lists {
		joined := strings.Join(items, " ")
		if containsAny(joined, navItems) && len(items) <= maxNavListItems {
			continue
		}
		if containsAny(joined, contactItems) || len(items) == 0 {
			continue
		}
		out.Lists = append(out.Lists, items)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Excursion cleans one crawled excursion for the catalog.
func Excursion(r domain.RawExcursion) domain.RawExcursion {
	images := Images(r.Images)
	links := make([]domain.Link, 0, len(r.Links))
	links = append(links, r.Links...)

	return domain.RawExcursion{
		URL:             r.URL,
		Title:           r.Title,
		Description:     r.Description,
		Price:           r.Price,
		Duration:        r.Duration,
		Images:          images,
		ImageCount:      len(images),
		PickupPoints:    r.PickupPoints,
		Content:         Content(r.Content),
		AdditionalCosts: r.AdditionalCosts,
		Links:           links,
		SourceCategory:  SourceCategory(r.URL.String()),
	}
}

// Catalog builds the catalog document from crawled excursions, keeping
// detail pages in crawl order.
func Catalog(records []domain.RawExcursion) domain.CatalogDocument {
	out := make([]domain.RawExcursion, 0, len(records))
	for _, r := range records {
		if !IsDetailPage(r.URL.String()) {
			continue
		}
		out = append(out, Excursion(r))
	}
	return domain.CatalogDocument{Total: len(out), Excursions: out}
}

// Stats counts how complete the extracted records are.
type Stats struct {
	Total          int `json:"total"`
	WithPrice      int `json:"with_price"`
	WithDuration   int `json:"with_duration"`
	WithPickups    int `json:"with_pickup_points"`
	WithExtraCosts int `json:"with_additional_costs"`
	Images         int `json:"images"`
}

func Summarize(doc domain.CatalogDocument) Stats {
	s := Stats{Total: len(doc.Excursions)}
	for _, r := range doc.Excursions {
		if r.Price != "" {
			s.WithPrice++
		}
		if r.Duration != "" {
			s.WithDuration++
		}
		if len(r.PickupPoints) > 0 {
			s.WithPickups++
		}
		if len(r.AdditionalCosts) > 0 {
			s.WithExtraCosts++
		}
		s.Images += r.ImageCount
	}
	return s
}

// URLs lists the unique excursion section URLs in sorted order.
func URLs(records []domain.RawExcursion) []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, r := range records {
		u := r.URL.String()
		if u == "" || !strings.Contains(u, "ekskursii") {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}
