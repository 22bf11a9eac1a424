package export

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"excursion-catalog/internal/domain"
)

/*
Feed layout:

<excursion_feed generated="2024-07-01T09:00:00Z">
  <excursion operation="upsert" id="ritsa" category="abkhazia">
    <title>Озеро Рица</title>
    <description>...</description>
    <price>2500 руб</price>
    <duration>12 ч</duration>
    <url>https://hostaotdykh.ru/...</url>
    <image>https://hostaotdykh.ru/images/...</image>
    <pickup_points>
      <point location="Адлер" adult="2500р." child="1500р." child_age="до 12 лет">2500р. взр. / 1500р. дет. (до 12 лет)</point>
    </pickup_points>
    <additional_costs>
      <cost price="500р.">обед</cost>
    </additional_costs>
  </excursion>
</excursion_feed>
*/

type feed struct {
	XMLName    xml.Name        `xml:"excursion_feed"`
	Generated  string          `xml:"generated,attr,omitempty"`
	Excursions []feedExcursion `xml:"excursion"`
}

type feedExcursion struct {
	Operation string `xml:"operation,attr,omitempty"`
	ID        string `xml:"id,attr"`
	Category  string `xml:"category,attr"`

	Title       string `xml:"title"`
	Description string `xml:"description,omitempty"`
	Price       string `xml:"price,omitempty"`
	Duration    string `xml:"duration,omitempty"`
	URL         string `xml:"url,omitempty"`
	Image       string `xml:"image,omitempty"`

	PickupPoints    *feedPickups `xml:"pickup_points,omitempty"`
	AdditionalCosts *feedCosts   `xml:"additional_costs,omitempty"`
}

type feedPickups struct {
	Points []feedPoint `xml:"point"`
}

type feedPoint struct {
	Location string `xml:"location,attr"`
	Adult    string `xml:"adult,attr,omitempty"`
	Child    string `xml:"child,attr,omitempty"`
	ChildAge string `xml:"child_age,attr,omitempty"`
	Price    string `xml:",chardata"`
}

type feedCosts struct {
	Costs []feedCost `xml:"cost"`
}

type feedCost struct {
	Price       string `xml:"price,attr"`
	Description string `xml:",chardata"`
}

type FeedConfig struct {
	// If Operation is set, it is written as excursion @operation="...".
	Operation string
	// Generated is stamped on the root element when non-zero.
	Generated time.Time
}

// WriteFeedXML writes the catalog as a single XML feed file.
func WriteFeedXML(outPath string, items []domain.Excursion, cfg FeedConfig) error {
	out := feed{Excursions: make([]feedExcursion, 0, len(items))}
	if !cfg.Generated.IsZero() {
		out.Generated = cfg.Generated.UTC().Format(time.RFC3339)
	}

	for _, ex := range items {
		row := feedExcursion{
			Operation:   strings.TrimSpace(cfg.Operation),
			ID:          ex.ID,
			Category:    string(ex.Category),
			Title:       strings.TrimSpace(ex.Title),
			Description: strings.TrimSpace(ex.Description),
			Price:       strings.TrimSpace(ex.Price),
			Duration:    strings.TrimSpace(ex.Duration),
			URL:         strings.TrimSpace(ex.URL),
			Image:       strings.TrimSpace(ex.Image),
		}
		if len(ex.PickupPoints) > 0 {
			row.PickupPoints = &feedPickups{}
			for _, p := range ex.PickupPoints {
				row.PickupPoints.Points = append(row.PickupPoints.Points, feedPoint{
					Location: p.Location,
					Adult:    p.PriceAdult,
					Child:    p.PriceChild,
					ChildAge: p.ChildAge,
					Price:    p.Price,
				})
			}
		}
		if len(ex.AdditionalCosts) > 0 {
			row.AdditionalCosts = &feedCosts{}
			for _, c := range ex.AdditionalCosts {
				row.AdditionalCosts.Costs = append(row.AdditionalCosts.Costs, feedCost{Price: c.Price, Description: c.Description})
			}
		}
		out.Excursions = append(out.Excursions, row)
	}

	return writeXML(outPath, out, "feed")
}

// DeleteEntry is the minimal row of a delete feed.
type DeleteEntry struct {
	ID    string
	Title string
}

type deleteFeed struct {
	XMLName    xml.Name       `xml:"excursion_feed"`
	Excursions []deleteRecord `xml:"excursion"`
}

type deleteRecord struct {
	Operation string `xml:"operation,attr"`
	ID        string `xml:"id,attr"`
	Title     string `xml:"title,omitempty"`
}

// WriteDeleteXML writes a feed removing the given excursions. Entries
// without an id are skipped.
func WriteDeleteXML(outPath string, entries []DeleteEntry) error {
	out := deleteFeed{Excursions: make([]deleteRecord, 0, len(entries))}
	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			continue
		}
		out.Excursions = append(out.Excursions, deleteRecord{
			Operation: "delete",
			ID:        id,
			Title:     strings.TrimSpace(e.Title),
		})
	}
	return writeXML(outPath, out, "delete feed")
}

func writeXML(outPath string, v any, what string) error {
	b, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal %s: %w", what, err)
	}
	if err := os.WriteFile(outPath, append([]byte(xml.Header), b...), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", what, err)
	}
	return nil
}
