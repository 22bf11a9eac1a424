// Package render turns excursions into Markdown and HTML fragments for
// exports and the API.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"excursion-catalog/internal/domain"

	"github.com/goodsign/monday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in scraped text is dropped by the renderer (no html.WithUnsafe).
var md = goldmark.New(
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithXHTML(),
	),
)

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "#", `\#`, "|", `\|`,
	"<", `\<`, ">", `\>`,
)

func escape(s string) string {
	return mdEscaper.Replace(strings.TrimSpace(s))
}

func headingLevel(level string) int {
	var n int
	if _, err := fmt.Sscanf(strings.ToLower(level), "h%d", &n); err != nil || n < 1 {
		return 3
	}
	// h1 is the excursion title
	if n < 2 {
		n = 2
	}
	if n > 6 {
		n = 6
	}
	return n
}

// Markdown renders the excursion as a Markdown document: title, facts,
// pickup points, extra costs and the scraped content.
func Markdown(ex domain.Excursion) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(ex.Title))
	if ex.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", escape(ex.Description))
	}

	fmt.Fprintf(&b, "**Цена:** %s\n", escape(ex.Price))
	if ex.Duration != "" {
		fmt.Fprintf(&b, "**Продолжительность:** %s\n", escape(ex.Duration))
	}
	b.WriteString("\n")

	if len(ex.PickupPoints) > 0 {
		b.WriteString("## Места посадки\n\n")
		for _, p := range ex.PickupPoints {
			fmt.Fprintf(&b, "- %s: %s", escape(p.Location), escape(pickupPrice(p)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(ex.AdditionalCosts) > 0 {
		b.WriteString("## Дополнительно оплачивается\n\n")
		for _, c := range ex.AdditionalCosts {
			fmt.Fprintf(&b, "- %s: %s\n", escape(c.Description), escape(c.Price))
		}
		b.WriteString("\n")
	}

	for _, h := range ex.Content.Headings {
		if strings.TrimSpace(h.Text) == "" || strings.TrimSpace(h.Text) == ex.Title {
			continue
		}
		fmt.Fprintf(&b, "%s %s\n\n", strings.Repeat("#", headingLevel(h.Level)), escape(h.Text))
	}
	for _, p := range ex.Content.Paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		fmt.Fprintf(&b, "%s\n\n", escape(p))
	}
	for _, list := range ex.Content.Lists {
		for _, item := range list {
			if strings.TrimSpace(item) == "" {
				continue
			}
			fmt.Fprintf(&b, "- %s\n", escape(item))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func pickupPrice(p domain.PickupPoint) string {
	if p.PriceAdult != "" && p.PriceChild != "" {
		s := fmt.Sprintf("взрослый %s, детский %s", p.PriceAdult, p.PriceChild)
		if p.ChildAge != "" {
			s += " (" + p.ChildAge + ")"
		}
		return s
	}
	return p.Price
}

// HTML renders Markdown(ex) to an HTML fragment.
func HTML(ex domain.Excursion) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(ex)), &buf); err != nil {
		return "", fmt.Errorf("render: convert %s: %w", ex.ID, err)
	}
	return buf.String(), nil
}

// Date formats t in Russian, e.g. "1 июля 2024, 09:30".
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return monday.Format(t, "2 January 2006, 15:04", monday.LocaleRuRU)
}
