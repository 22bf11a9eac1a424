package domain

// Category is the geographic region an excursion is assigned to.
type Category string

const (
	CategorySochi    Category = "sochi"
	CategoryAbkhazia Category = "abkhazia"
)

// Categories lists every category in display order.
var Categories = []Category{CategorySochi, CategoryAbkhazia}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategorySochi || c == CategoryAbkhazia
}

// CatalogDocument is the static JSON file the catalog is loaded from.
type CatalogDocument struct {
	Total      int            `json:"total,omitempty"`
	Excursions []RawExcursion `json:"excursions"`
}

// RawExcursion is one record of the catalog document.
// No schema is enforced upstream: any field may be missing or null.
type RawExcursion struct {
	URL             Text             `json:"url"`
	Title           Text             `json:"title"`
	Description     Text             `json:"description"`
	Price           Text             `json:"price"`
	Duration        Text             `json:"duration"`
	Images          []Image          `json:"images"`
	ImageCount      int              `json:"image_count,omitempty"`
	PickupPoints    []PickupPoint    `json:"pickup_points"`
	Content         *Content         `json:"content"`
	AdditionalCosts []AdditionalCost `json:"additional_costs"`
	Links           []Link           `json:"links,omitempty"`

	// SourceCategory is the label the extractor derives from the URL
	// ("Сочи", "Абхазия", "Общие"). It is informational only.
	SourceCategory string `json:"category,omitempty"`
}

// Excursion is the display-ready form of a RawExcursion.
// ID, Title and Category are never empty.
type Excursion struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Price           string           `json:"price"`
	Duration        string           `json:"duration"`
	Image           string           `json:"image"`
	Images          []Image          `json:"images"`
	Category        Category         `json:"category"`
	URL             string           `json:"url"`
	PickupPoints    []PickupPoint    `json:"pickupPoints"`
	Content         Content          `json:"content"`
	AdditionalCosts []AdditionalCost `json:"additionalCosts"`

	// UnstableID is set when ID is a random token, which changes on
	// every load.
	UnstableID bool `json:"-"`
}

type Image struct {
	URL    string `json:"url"`
	Alt    string `json:"alt,omitempty"`
	IsMain bool   `json:"is_main"`
	Page   string `json:"page,omitempty"`
}

// PickupPoint is a departure location with its price.
// The adult/child split is only present when the page lists both.
type PickupPoint struct {
	Location   string `json:"location"`
	Price      string `json:"price"`
	PriceAdult string `json:"price_adult,omitempty"`
	PriceChild string `json:"price_child,omitempty"`
	ChildAge   string `json:"child_age,omitempty"`
}

type AdditionalCost struct {
	Price       string `json:"price"`
	Description string `json:"description"`
}

type Heading struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type Link struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Content is the free-form text scraped from an excursion page.
type Content struct {
	Headings       []Heading  `json:"headings,omitempty"`
	Paragraphs     []string   `json:"paragraphs,omitempty"`
	Lists          [][]string `json:"lists,omitempty"`
	DivsText       []string   `json:"divs_text,omitempty"`
	SpansText      []string   `json:"spans_text,omitempty"`
	DataAttributes []string   `json:"data_attributes,omitempty"`
}

// IsEmpty reports whether the content carries no text at all.
func (c Content) IsEmpty() bool {
	return len(c.Headings) == 0 && len(c.Paragraphs) == 0 && len(c.Lists) == 0 &&
		len(c.DivsText) == 0 && len(c.SpansText) == 0 && len(c.DataAttributes) == 0
}
