package crawler

import (
	"regexp"
	"strings"

	"excursion-catalog/internal/domain"
)

var (
	excursionURLHints = []string{"экскурс", "excursion", "/ekskursii/"}
	excursionSlugs    = []string{"roza", "gazprom", "olimp", "ritsa", "afon", "vodopad", "delfinariy", "akvapark"}
	serviceURLHints   = []string{"услуг", "service", "/uslugi/"}
	serviceSlugs      = []string{"gid", "transfer", "razmeshchenie", "meropriyatie"}
	contactHints      = []string{"контакт", "contact"}
)

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func countAny(s string, subs []string) int {
	n := 0
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			n++
		}
	}
	return n
}

// ClassifyURL decides the page kind while crawling, from the URL, the
// title and the page text.
func ClassifyURL(pageURL, title, text string) Kind {
	u := strings.ToLower(pageURL)
	t := strings.ToLower(title)
	body := strings.ToLower(text)

	switch {
	case containsAny(u, excursionURLHints),
		strings.Contains(t, "экскурс"),
		strings.Contains(body, "маршрут") && strings.Contains(body, "экскурс"),
		containsAny(u, excursionSlugs):
		return KindExcursion
	case containsAny(u, serviceURLHints),
		strings.Contains(t, "услуг"),
		containsAny(u, serviceSlugs):
		return KindService
	case containsAny(u, contactHints), containsAny(t, contactHints):
		return KindContact
	}
	return KindPage
}

var (
	scoreExcursion = []string{
		"экскурс", "excursion", "/ekskursii/", "маршрут", "roza", "gazprom", "olimp", "ritsa",
		"afon", "vodopad", "delfinariy", "akvapark", "красная поляна", "абхазия", "сочи",
		"обзорная", "кольцо", "водопад", "пещера", "монастырь", "дач", "чай", "ахун", "агур",
	}
	scoreService = []string{
		"услуг", "service", "/uslugi/", "gid", "переводчик", "гид", "transfer", "трансфер",
		"размещение", "razmeshchenie", "мероприятие", "meropriyatie", "организация",
	}
	scoreContact = []string{"контакт", "contact", "телефон", "адрес", "email", "почта"}

	scorePriceRe    = regexp.MustCompile(`\d+\s*(руб|₽|рублей)`)
	scoreDurationRe = regexp.MustCompile(`\d+\s*(часов|часа|час|дней|дня|день)`)
)

// ClassifyPage scores a crawled page by keyword hits. A price or a
// duration in the text counts twice toward an excursion.
func ClassifyPage(p Page) Kind {
	parts := []string{p.URL, p.Title}
	parts = append(parts, p.Content.Paragraphs...)
	for _, h := range p.Content.Headings {
		parts = append(parts, h.Text)
	}
	text := strings.ToLower(strings.Join(parts, " "))

	excursion := countAny(text, scoreExcursion)
	service := countAny(text, scoreService)
	contact := countAny(text, scoreContact)
	if scorePriceRe.MatchString(text) || scoreDurationRe.MatchString(text) {
		excursion += 2
	}

	switch {
	case excursion > service && excursion > contact && excursion > 0:
		return KindExcursion
	case service > contact && service > 0:
		return KindService
	case contact > 0:
		return KindContact
	}
	return KindPage
}

// Reclassify sorts the generic pages of a finished crawl into excursions,
// services and contacts by keyword score. Pages that score as excursions
// are re-parsed from their stored text. The returned data keeps the
// excursions and services found during the crawl after the promoted ones.
func Reclassify(data *SiteData) *SiteData {
	out := &SiteData{
		Contacts:   data.Contacts,
		Navigation: data.Navigation,
		Images:     data.Images,
		Metadata:   data.Metadata,
	}
	for _, p := range data.Pages {
		switch ClassifyPage(p) {
		case KindExcursion:
			out.Excursions = append(out.Excursions, excursionFromPage(p))
		case KindService:
			out.Services = append(out.Services, p)
		case KindContact:
			if p.Contacts != nil {
				out.Contacts.Merge(*p.Contacts)
			}
			out.Pages = append(out.Pages, p)
		default:
			out.Pages = append(out.Pages, p)
		}
	}
	out.Excursions = append(out.Excursions, data.Excursions...)
	out.Services = append(out.Services, data.Services...)
	return out
}

func excursionFromPage(p Page) domain.RawExcursion {
	c := p.Content
	text := strings.Join([]string{
		strings.Join(c.Paragraphs, " "),
		joinLists(c.Lists),
		strings.Join(c.DivsText, " "),
		strings.Join(c.SpansText, " "),
	}, " ")

	price := ""
	for _, re := range pricePatterns[:3] {
		if m := re.FindStringSubmatch(text); m != nil {
			price = strings.TrimSpace(m[1]) + " руб"
			break
		}
	}

	content := c
	return domain.RawExcursion{
		URL:             domain.Text(p.URL),
		Title:           domain.Text(p.Title),
		Description:     domain.Text(p.Description),
		Price:           domain.Text(price),
		Duration:        domain.Text(DurationFromText(text)),
		Images:          p.Images,
		PickupPoints:    ParsePickups(text, nil),
		Content:         &content,
		AdditionalCosts: costsFromText(text),
		Links:           p.Links,
	}
}

// costsFromText extracts costs from stored page text. Ticket prices are
// taken from the "Дополнительные расходы" section only.
func costsFromText(text string) []domain.AdditionalCost {
	c := costSet{seen: make(map[string]struct{})}
	for _, m := range costTwoAgesRe.FindAllStringSubmatch(text, -1) {
		c.add(joinPrices(m[1], m[2], m[3]), m[4])
	}
	for _, m := range costOneAgeRe.FindAllStringSubmatch(text, -1) {
		c.add(joinPrices(m[1], m[2]), m[3])
	}

	if i := strings.LastIndex(text, extraCostsMarker); i >= 0 {
		section := []rune(text[i+len(extraCostsMarker):])
		if len(section) > 1000 {
			section = section[:1000]
		}
		for _, m := range costFullRe.FindAllStringSubmatch(string(section), -1) {
			if !strings.Contains(m[0], "билет") {
				continue
			}
			c.add(joinPrices(m[1], m[2], m[3]), cleanCostDescription(m[4]))
		}
	}

	for _, m := range costSimpleRe.FindAllStringSubmatch(text, -1) {
		if hasCostKeyword(m[2]) && !strings.Contains(strings.ToLower(m[2]), "малыш") {
			c.add(strings.TrimSpace(m[1]), m[2])
		}
	}
	return c.costs
}

var costDescriptionNoise = strings.NewReplacer(`\"`, "", `\n`, "", "- 3 часа купания", "")

func cleanCostDescription(s string) string {
	return strings.TrimSpace(costDescriptionNoise.Replace(s))
}
