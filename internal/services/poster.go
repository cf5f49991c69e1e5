package services

import (
	"encoding/json"
	"log"
)

// Poster hands a composed post to the external publishing integration
// (Facebook page, Google Business profile). The real integrations live
// outside this service; LogPoster stands in when none is configured.
type Poster interface {
	PublishPost(userID, message string, payload json.RawMessage) error
}

type LogPoster struct{}

func (LogPoster) PublishPost(userID, message string, payload json.RawMessage) error {
	log.Printf("post for user %s: %s (%d byte payload)", userID, message, len(payload))
	return nil
}
