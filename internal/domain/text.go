package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text is a loosely typed JSON scalar. The scraped catalog stores most fields
// as strings, but some records carry:
// - null
// - a number (e.g. a price of 3500)
// - a boolean
// Anything else (objects, arrays) decodes to the empty string.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = ""
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*t = Text(strconv.FormatBool(v))
		return nil
	case '{', '[':
		*t = ""
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Bool reports whether t reads as true: "true", "yes" or a non-zero number.
func (t Text) Bool() bool {
	s := strings.ToLower(strings.TrimSpace(string(t)))
	switch s {
	case "", "false", "no", "0":
		return false
	case "true", "yes":
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f != 0
}

// isObject reports whether b is a JSON object. Nested records that are
// anything else decode to their zero value instead of failing the
// whole document.
func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

func (img *Image) UnmarshalJSON(b []byte) error {
	*img = Image{}
	if !isObject(b) {
		return nil
	}
	var raw struct {
		URL    Text `json:"url"`
		Alt    Text `json:"alt"`
		IsMain Text `json:"is_main"`
		Page   Text `json:"page"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*img = Image{URL: raw.URL.String(), Alt: raw.Alt.String(), IsMain: raw.IsMain.Bool(), Page: raw.Page.String()}
	return nil
}

func (p *PickupPoint) UnmarshalJSON(b []byte) error {
	*p = PickupPoint{}
	if !isObject(b) {
		return nil
	}
	var raw struct {
		Location   Text `json:"location"`
		Price      Text `json:"price"`
		PriceAdult Text `json:"price_adult"`
		PriceChild Text `json:"price_child"`
		ChildAge   Text `json:"child_age"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = PickupPoint{
		Location:   raw.Location.String(),
		Price:      raw.Price.String(),
		PriceAdult: raw.PriceAdult.String(),
		PriceChild: raw.PriceChild.String(),
		ChildAge:   raw.ChildAge.String(),
	}
	return nil
}

func (c *AdditionalCost) UnmarshalJSON(b []byte) error {
	*c = AdditionalCost{}
	if !isObject(b) {
		return nil
	}
	var raw struct {
		Price       Text `json:"price"`
		Description Text `json:"description"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = AdditionalCost{Price: raw.Price.String(), Description: raw.Description.String()}
	return nil
}
