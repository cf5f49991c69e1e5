package serial

import (
	"errors"
	"fmt"
	"strings"
)

// Manufacturer identifies which plant's serial grammar to decode with. Only
// Premier serials are decodable today; the other two are carried for dealers
// whose inventory mixes manufacturers, and decoding them reports
// ErrDecoderUnavailable rather than pretending to succeed.
type Manufacturer string

const (
	ManufacturerPremier     Manufacturer = "premier"
	ManufacturerGraceland   Manufacturer = "graceland"
	ManufacturerCountryside Manufacturer = "countryside"
)

var ErrDecoderUnavailable = errors.New("no serial decoder for manufacturer")

func ParseManufacturer(raw string) (Manufacturer, error) {
	switch Manufacturer(strings.ToLower(strings.TrimSpace(raw))) {
	case ManufacturerPremier:
		return ManufacturerPremier, nil
	case ManufacturerGraceland:
		return ManufacturerGraceland, nil
	case ManufacturerCountryside:
		return ManufacturerCountryside, nil
	}
	return "", fmt.Errorf("unknown manufacturer %q", raw)
}

// DecodeFor dispatches to the decoder for the given manufacturer. An
// unavailable decoder is a distinct outcome from a serial that merely decodes
// to an unknown type.
func DecodeFor(m Manufacturer, raw string) (Descriptor, error) {
	switch m {
	case ManufacturerPremier:
		return Decode(raw), nil
	case ManufacturerGraceland, ManufacturerCountryside:
		return Descriptor{}, fmt.Errorf("%w: %s", ErrDecoderUnavailable, m)
	default:
		return Descriptor{}, fmt.Errorf("%w: %s", ErrDecoderUnavailable, m)
	}
}
