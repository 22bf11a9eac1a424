package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"excursion-catalog/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

var (
	infoClassRe  = regexp.MustCompile(`(?i)price|cost|duration|time|pickup|additional|info|detail`)
	spanClassRe  = regexp.MustCompile(`(?i)price|cost|duration|time`)
	moneyHintRe  = regexp.MustCompile(`\d+\s*[р.]`)
	phoneRe      = regexp.MustCompile(`[+]?[7-8]?[\s\-]?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}`)
	emailRe      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	skippedFiles = []string{".jpg", ".png", ".gif", ".pdf", ".css", ".js"}
)

var addressKeywords = []string{"Сочи", "Адлер", "Хоста", "улица", "ул.", "проспект", "пр."}

// TextContent is the text pulled out of one page.
type TextContent struct {
	Title       string
	Description string
	Content     domain.Content
	Links       []domain.Link
}

// strippedText joins the trimmed text nodes under sel without separators.
func strippedText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "#text":
				b.WriteString(strings.TrimSpace(c.Text()))
			case "#comment", "script", "style":
			default:
				walk(c)
			}
		})
	}
	sel.Each(func(_ int, s *goquery.Selection) { walk(s) })
	return b.String()
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// resolve makes href absolute against base. It returns "" for hrefs that
// cannot be parsed.
func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// ExtractText collects title, meta description, headings, paragraphs,
// lists, price-like div/span texts, data-price/data-cost attributes and
// links. Style and script elements are removed from doc.
func ExtractText(doc *goquery.Document, pageURL string) TextContent {
	base, _ := url.Parse(pageURL)
	doc.Find("style, link").Remove()

	out := TextContent{
		Title: strippedText(doc.Find("title").First()),
	}
	out.Description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")

	c := &out.Content
	for level := 1; level <= 6; level++ {
		tag := fmt.Sprintf("h%d", level)
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			if text := strippedText(s); text != "" {
				c.Headings = append(c.Headings, domain.Heading{Level: tag, Text: text})
			}
		})
	}

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strippedText(s); runeLen(text) > 20 {
			c.Paragraphs = append(c.Paragraphs, text)
		}
	})

	doc.Find("ul, ol").Each(func(_ int, s *goquery.Selection) {
		var items []string
		s.Find("li").Each(func(_ int, li *goquery.Selection) {
			items = append(items, strippedText(li))
		})
		if len(items) > 0 {
			c.Lists = append(c.Lists, items)
		}
	})

	doc.Find("div[class]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if !infoClassRe.MatchString(class) {
			return
		}
		if text := strippedText(s); runeLen(text) > 5 {
			c.DivsText = append(c.DivsText, text)
		}
	})
	doc.Find("div").Each(func(_ int, s *goquery.Selection) {
		text := strippedText(s)
		if text == "" || runeLen(text) <= 10 || contains(c.DivsText, text) {
			return
		}
		if moneyHintRe.MatchString(text) || strings.Contains(text, "Отправление") ||
			strings.Contains(strings.ToLower(text), "дополнительные расходы") {
			c.DivsText = append(c.DivsText, text)
		}
	})

	doc.Find("span[class]").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		if !spanClassRe.MatchString(class) {
			return
		}
		if text := strippedText(s); text != "" {
			c.SpansText = append(c.SpansText, text)
		}
	})
	doc.Find("span").Each(func(_ int, s *goquery.Selection) {
		text := strippedText(s)
		if text != "" && moneyHintRe.MatchString(text) && !contains(c.SpansText, text) {
			c.SpansText = append(c.SpansText, text)
		}
	})

	doc.Find("[data-price]").Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("data-price")
		c.DataAttributes = append(c.DataAttributes, "data-price: "+v)
	})
	doc.Find("[data-cost]").Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("data-cost")
		c.DataAttributes = append(c.DataAttributes, "data-cost: "+v)
	})

	doc.Find("script, noscript, meta").Remove()

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strippedText(s)
		if href == "" || text == "" {
			return
		}
		if abs := resolve(base, href); abs != "" {
			out.Links = append(out.Links, domain.Link{Text: text, URL: abs})
		}
	})

	return out
}

// ExtractImages lists every <img src> with an absolute URL.
func ExtractImages(doc *goquery.Document, pageURL string) []domain.Image {
	base, _ := url.Parse(pageURL)
	var images []domain.Image
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if strings.TrimSpace(src) == "" {
			return
		}
		abs := resolve(base, src)
		if abs == "" {
			return
		}
		alt, _ := s.Attr("alt")
		images = append(images, domain.Image{URL: abs, Alt: alt, Page: pageURL})
	})
	return images
}

// ExtractContacts finds phone numbers, e-mail addresses and short text
// snippets around address keywords. Values are sorted and unique.
func ExtractContacts(doc *goquery.Document) Contacts {
	text := doc.Text()
	var c Contacts

	c.Phones = uniqueSorted(phoneRe.FindAllString(text, -1))
	c.Emails = uniqueSorted(emailRe.FindAllString(text, -1))

	lower := strings.ToLower(text)
	var addresses []string
	for _, kw := range addressKeywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			continue
		}
		re := regexp.MustCompile(`(?i).{0,50}` + regexp.QuoteMeta(kw) + `.{0,50}`)
		addresses = append(addresses, re.FindAllString(text, 3)...)
	}
	c.Addresses = uniqueSorted(addresses)
	return c
}

func uniqueSorted(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := appendUnique(nil, values...)
	sort.Strings(out)
	return out
}

// FindLinks returns the crawlable same-host links of a page: fragments
// are dropped, queries kept, anchors, javascript: and non-http schemes
// skipped.
func FindLinks(doc *goquery.Document, currentURL, baseHost string) []string {
	current, err := url.Parse(currentURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		u := current.ResolveReference(ref)
		if (u.Scheme != "http" && u.Scheme != "https") || !strings.EqualFold(u.Host, baseHost) {
			return
		}
		clean := u.Scheme + "://" + u.Host + u.EscapedPath()
		if u.RawQuery != "" {
			clean += "?" + u.RawQuery
		}
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		links = append(links, clean)
	})
	return links
}

// IsSkippedFile reports whether a URL points at a static asset.
func IsSkippedFile(u string) bool {
	for _, ext := range skippedFiles {
		if strings.HasSuffix(u, ext) {
			return true
		}
	}
	return false
}

// Navigation collects the links of the site's menus.
func Navigation(doc *goquery.Document, pageURL string) []domain.Link {
	base, _ := url.Parse(pageURL)
	var out []domain.Link
	seen := make(map[string]struct{})
	doc.Find("nav a[href], .menu a[href], .nav a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strippedText(s)
		abs := resolve(base, href)
		if text == "" || abs == "" {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, domain.Link{Text: text, URL: abs})
	})
	return out
}
