package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"shedsites-backend-go/internal/serial"
)

type DecodeRequest struct {
	Serial       string `json:"serial"`
	Manufacturer string `json:"manufacturer"`
}

// DecodeSerial exposes the serial decoder for admin tooling: paste a serial,
// see what the importer would store.
func (s *Server) DecodeSerial(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Serial) == "" {
		WriteError(w, http.StatusBadRequest, "serial is required")
		return
	}
	manufacturer := serial.ManufacturerPremier
	if req.Manufacturer != "" {
		parsed, err := serial.ParseManufacturer(req.Manufacturer)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		manufacturer = parsed
	}
	desc, err := serial.DecodeFor(manufacturer, req.Serial)
	if errors.Is(err, serial.ErrDecoderUnavailable) {
		WriteError(w, http.StatusNotImplemented, err.Error())
		return
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, desc)
}
