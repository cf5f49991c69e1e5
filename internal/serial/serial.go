package serial

import (
	"fmt"
	"strconv"
	"strings"
)

// Building type codes as assigned by the plant. Codes not listed here still
// decode, they just display as "Unknown Type".
var typeNames = map[string]string{
	"MS":  "Mini Shed",
	"DS":  "Deluxe Shed",
	"U":   "Utility",
	"SU":  "Side Utility",
	"B":   "Barn",
	"LB":  "Lofted Barn",
	"SLB": "Side Lofted Barn",
	"DLB": "Deluxe Lofted Barn",
	"CLB": "Cabin Lofted Barn",
	"C":   "Cabin",
	"LC":  "Lofted Cabin",
	"DC":  "Deluxe Cabin",
	"G":   "Garage",
	"LG":  "Lofted Garage",
	"GH":  "Greenhouse",
	"P":   "Playhouse",
}

const unknownTypeName = "Unknown Type"

type BuildingType struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Size struct {
	Code    string `json:"code"`
	Width   int    `json:"width"`
	Length  int    `json:"length"`
	Display string `json:"display"`
}

type BuildDate struct {
	Code    string `json:"code"`
	Month   string `json:"month"`
	Day     string `json:"day"`
	Year    string `json:"year"`
	Display string `json:"display"`
}

type Plant struct {
	Code   string `json:"code"`
	Plant  string `json:"plant"`
	IsRepo bool   `json:"isRepo"`
}

// Descriptor is the decoded form of a dealer serial number. When Valid is
// false no other field is populated.
type Descriptor struct {
	Valid       bool         `json:"valid"`
	Raw         string       `json:"raw,omitempty"`
	Prefix      string       `json:"prefix,omitempty"`
	UniqueID    string       `json:"uniqueId,omitempty"`
	Type        BuildingType `json:"type,omitempty"`
	Size        Size         `json:"size,omitempty"`
	DateBuilt   BuildDate    `json:"dateBuilt,omitempty"`
	Plant       Plant        `json:"plant,omitempty"`
	Status      string       `json:"status,omitempty"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
}

// Decode parses a serial of the form PREFIX-TYPE-UNIQUEID-SIZE-DATE[R]-PLANT?
// into a Descriptor. The 5-segment form (no plant code) is normalized by
// appending an empty sixth segment. Any input that does not split into
// exactly six segments after normalization yields Valid=false; Decode never
// panics or returns an error.
func Decode(raw string) Descriptor {
	parts := strings.Split(raw, "-")
	if len(parts) == 5 {
		parts = append(parts, "")
	}
	if len(parts) != 6 {
		return Descriptor{Valid: false}
	}

	typeCode := parts[1]
	name, ok := typeNames[typeCode]
	if !ok {
		name = unknownTypeName
	}

	size := decodeSize(parts[3])
	date := decodeDate(parts[4])
	plant := decodePlant(parts[5], raw)

	status := "available"
	if plant.IsRepo {
		status = "repo"
	}

	return Descriptor{
		Valid:     true,
		Raw:       raw,
		Prefix:    parts[0],
		UniqueID:  parts[2],
		Type:      BuildingType{Code: typeCode, Name: name},
		Size:      size,
		DateBuilt: date,
		Plant:     plant,
		Status:    status,
		Title:     fmt.Sprintf("%s %s", size.Display, name),
		Description: fmt.Sprintf("%s %s built on %s, unit #%s",
			size.Display, name, date.Display, parts[2]),
	}
}

func decodeSize(code string) Size {
	width := lenientInt(substr(code, 0, 2))
	length := lenientInt(substr(code, 2, 4))
	return Size{
		Code:    code,
		Width:   width,
		Length:  length,
		Display: fmt.Sprintf("%dx%d", width, length),
	}
}

func decodeDate(code string) BuildDate {
	trimmed := strings.TrimSuffix(code, "R")
	month := substr(trimmed, 0, 2)
	day := substr(trimmed, 2, 4)
	year := "20" + substr(trimmed, 4, 6)
	return BuildDate{
		Code:    code,
		Month:   month,
		Day:     day,
		Year:    year,
		Display: fmt.Sprintf("%s/%s/%s", month, day, year),
	}
}

func decodePlant(code, raw string) Plant {
	// The repo marker can ride on the plant segment (6-part form) or on the
	// end of the whole serial (5-part form, where it lands on the date).
	isRepo := strings.HasSuffix(code, "R") || strings.HasSuffix(raw, "R")
	plant := code
	if isRepo {
		plant = strings.TrimSuffix(code, "R")
	}
	return Plant{Code: code, Plant: plant, IsRepo: isRepo}
}

// lenientInt mirrors the historical decoder behavior of never rejecting a
// serial over bad digits: unparsable input becomes 0 instead of an error.
func lenientInt(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

func substr(value string, start, end int) string {
	if start > len(value) {
		return ""
	}
	if end > len(value) {
		end = len(value)
	}
	return value[start:end]
}
