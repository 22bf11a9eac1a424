package crawler

import (
	"fmt"
	"regexp"
	"strings"

	"excursion-catalog/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

var (
	priceClassRe    = regexp.MustCompile(`(?i)price|cost`)
	durationClassRe = regexp.MustCompile(`(?i)duration|time|продолжительность`)
	rubleRe         = regexp.MustCompile(`(?i)(\d+)\s*(руб|₽)`)
	hoursRe         = regexp.MustCompile(`(?i)(\d+)\s*(часов|часа|час|ч)`)

	pricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)Цена\s+(\d+[\s\d]*)\s*(руб|₽)`),
		regexp.MustCompile(`(?im)(\d+)\s*руб\s*$`),
		regexp.MustCompile(`(?im)от\s+(\d+)\s*(руб|₽)`),
		regexp.MustCompile(`(?im)(\d+)\s*(руб|₽)\s*/\s*(час|день|чел)`),
	}

	// Group 1 of each pattern is the duration text.
	durationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)Продолжительность[:\s]+(\d+[\s\-]?(часов|часа|час|ч|дней|дня|день))`),
		regexp.MustCompile(`(?im)((\d+)\s*(часов|часа|час|ч))\s*$`),
		regexp.MustCompile(`(?im)((\d+)\s*ч)(?:[^\p{L}\p{N}_]|$)`),
	}

	pickupAdultChildRe = regexp.MustCompile(`Отправление\s+из\s+([А-Яа-яЁё]+)\s*[-–]\s*(\d+)р\.взр\./\s*(\d+)р\.дет\.\(([^)]+)\)`)
	pickupRe           = regexp.MustCompile(`Отправление\s+из\s+([А-Яа-яЁё]+)\s*[-–]\s*(\d+)\s*[р.]`)
	pickupLooseRe      = regexp.MustCompile(`из\s+([А-Яа-яЁё]+)\s*[-–]\s*(\d+)\s*[р.]`)

	costTwoAgesRe = regexp.MustCompile(`(\d+\s*[р.]+)\s*[/–]\s*(\d+\s*[р.]+)?\s*\([^)]+\)\s*[/–]?\s*(\d+\s*[р.]+)?\s*\([^)]+\)\s*–\s*([^.\n]+)`)
	costOneAgeRe  = regexp.MustCompile(`(\d+\s*[р.]+)\s*[/–]\s*(\d+\s*[р.]+)?\s*\([^)]+\)\s*–\s*([^.\n]+)`)
	costSimpleRe  = regexp.MustCompile(`(\d+\s*[р.]+)\s*–\s*([^.\n]+)`)
	costFullRe    = regexp.MustCompile(`(\d+\s*[р.]+)\s*[/–]\s*(\d+\s*[р.]+)\s*\([^)]+\)\s*[/–]\s*(\d+\s*[р.]+)\s*\([^)]+\)\s*–\s*([^.\n]+)`)
)

var costKeywords = []string{"обед", "канат", "билет", "тариф", "дегустация", "малыш"}

const extraCostsMarker = "Дополнительные расходы"

// ParseExcursion builds a raw catalog record from an excursion page.
// doc must not have been passed through ExtractText yet.
func ParseExcursion(doc *goquery.Document, pageURL string) domain.RawExcursion {
	price := PriceFromElements(doc)
	duration := DurationFromElements(doc)

	text := ExtractText(doc, pageURL)
	pageText := doc.Text()

	if price == "" {
		price = PriceFromText(pageText)
	}
	if duration == "" {
		duration = DurationFromText(pageText)
	}

	pickupText := strings.Join(append(append([]string{pageText}, text.Content.DivsText...), text.Content.SpansText...), " ")
	costText := pickupText + " " + joinLists(text.Content.Lists)

	content := text.Content
	return domain.RawExcursion{
		URL:             domain.Text(pageURL),
		Title:           domain.Text(text.Title),
		Description:     domain.Text(text.Description),
		Price:           domain.Text(price),
		Duration:        domain.Text(duration),
		Images:          ExtractImages(doc, pageURL),
		PickupPoints:    ParsePickups(pickupText, text.Content.Lists),
		Content:         &content,
		AdditionalCosts: ParseCosts(costText, text.Content.Lists),
		Links:           text.Links,
	}
}

// PriceFromElements looks for a ruble amount inside elements whose class
// mentions a price.
func PriceFromElements(doc *goquery.Document) string {
	var price string
	doc.Find("span[class], div[class], p[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !priceClassRe.MatchString(class) {
			return true
		}
		if m := rubleRe.FindStringSubmatch(s.Text()); m != nil {
			price = m[1] + " " + m[2]
			return false
		}
		return true
	})
	return price
}

// PriceFromText applies the price patterns to free text. The first
// pattern that matches wins.
func PriceFromText(text string) string {
	for _, re := range pricePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]) + " руб"
		}
	}
	return ""
}

func DurationFromElements(doc *goquery.Document) string {
	var duration string
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !durationClassRe.MatchString(class) {
			return true
		}
		if m := hoursRe.FindStringSubmatch(s.Text()); m != nil {
			duration = m[1] + " " + m[2]
			return false
		}
		return true
	})
	return duration
}

func DurationFromText(text string) string {
	for _, re := range durationPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ParsePickups finds "Отправление из <город> - <N>р." departure prices.
// Points are unique by location; the first mention wins.
func ParsePickups(text string, lists [][]string) []domain.PickupPoint {
	var points []domain.PickupPoint
	seen := make(map[string]struct{})
	add := func(p domain.PickupPoint) {
		if _, ok := seen[p.Location]; ok {
			return
		}
		seen[p.Location] = struct{}{}
		points = append(points, p)
	}

	for _, m := range pickupAdultChildRe.FindAllStringSubmatch(text, -1) {
		add(domain.PickupPoint{
			Location:   m[1],
			Price:      fmt.Sprintf("%sр. взр. / %sр. дет. (%s)", m[2], m[3], m[4]),
			PriceAdult: m[2] + "р.",
			PriceChild: m[3] + "р.",
			ChildAge:   m[4],
		})
	}
	for _, m := range pickupRe.FindAllStringSubmatch(text, -1) {
		add(domain.PickupPoint{Location: m[1], Price: m[2] + " р."})
	}
	if len(points) == 0 {
		for _, m := range pickupLooseRe.FindAllStringSubmatch(text, -1) {
			add(domain.PickupPoint{Location: m[1], Price: m[2] + " р."})
		}
	}
	for _, items := range lists {
		for _, m := range pickupRe.FindAllStringSubmatch(strings.Join(items, " "), -1) {
			add(domain.PickupPoint{Location: m[1], Price: m[2] + " р."})
		}
	}
	return points
}

// ParseCosts finds extra charges such as "500р. / 300р. (до 12 лет) – обед".
// Costs are unique by description.
func ParseCosts(text string, lists [][]string) []domain.AdditionalCost {
	c := costSet{seen: make(map[string]struct{})}

	for _, m := range costTwoAgesRe.FindAllStringSubmatch(text, -1) {
		c.add(joinPrices(m[1], m[2], m[3]), m[4])
	}
	for _, m := range costOneAgeRe.FindAllStringSubmatch(text, -1) {
		c.add(joinPrices(m[1], m[2]), m[3])
	}
	for _, m := range costSimpleRe.FindAllStringSubmatch(text, -1) {
		if hasCostKeyword(m[2]) {
			c.add(strings.TrimSpace(m[1]), m[2])
		}
	}
	for _, items := range lists {
		for _, m := range costOneAgeRe.FindAllStringSubmatch(strings.Join(items, " "), -1) {
			c.add(joinPrices(m[1], m[2]), m[3])
		}
	}
	return c.costs
}

type costSet struct {
	costs []domain.AdditionalCost
	seen  map[string]struct{}
}

func (c *costSet) add(price, description string) {
	description = strings.TrimSpace(description)
	if description == "" || price == "" {
		return
	}
	if _, ok := c.seen[description]; ok {
		return
	}
	c.seen[description] = struct{}{}
	c.costs = append(c.costs, domain.AdditionalCost{Price: price, Description: description})
}

func joinPrices(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " / ")
}

func hasCostKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range costKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func joinLists(lists [][]string) string {
	parts := make([]string, 0, len(lists))
	for _, items := range lists {
		parts = append(parts, strings.Join(items, " "))
	}
	return strings.Join(parts, " ")
}
