package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"shedsites-backend-go/internal/services"
)

func mapServiceError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	if serr, ok := err.(services.ServiceError); ok {
		WriteError(w, serr.Status, serr.Message)
		return true
	}
	WriteError(w, http.StatusInternalServerError, "Internal server error")
	return true
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value < 1 {
		return fallback
	}
	return value
}

func resolveClientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	return r.RemoteAddr
}

func trimString(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

func nullIfEmpty(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
