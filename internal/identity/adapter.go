package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Event is an identity-provider user lifecycle event.
type Event struct {
	Type   EventType
	UserID string
}

type EventType string

const (
	EventUserCreated EventType = "user.created"
	EventUserDeleted EventType = "user.deleted"
)

var (
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidEvent     = errors.New("invalid_event")
	ErrEventIgnored     = errors.New("event_ignored")
)

// Delivery headers. The signature header holds space-separated
// "v1,<base64 hmac>" entries over "<id>.<timestamp>.<payload>".
const (
	HeaderID        = "Webhook-Id"
	HeaderTimestamp = "Webhook-Timestamp"
	HeaderSignature = "Webhook-Signature"
)

type Adapter struct {
	secret []byte
}

// NewAdapter accepts the signing secret, with or without the conventional
// "whsec_" prefix around its base64 body.
func NewAdapter(secret string) (*Adapter, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(secret), "whsec_")
	key, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	return &Adapter{secret: key}, nil
}

func (a *Adapter) Verify(payload []byte, headers http.Header) error {
	id := strings.TrimSpace(headers.Get(HeaderID))
	timestamp := strings.TrimSpace(headers.Get(HeaderTimestamp))
	sigHeader := strings.TrimSpace(headers.Get(HeaderSignature))
	if id == "" || timestamp == "" || sigHeader == "" {
		return ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s.%s", id, timestamp, string(payload))
	mac := hmac.New(sha256.New, a.secret)
	_, _ = mac.Write([]byte(signedPayload))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, entry := range strings.Fields(sigHeader) {
		version, signature, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func (a *Adapter) Parse(payload []byte) (*Event, error) {
	var event wireEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrInvalidPayload
	}

	var eventType EventType
	switch strings.TrimSpace(event.Type) {
	case "user.created":
		eventType = EventUserCreated
	case "user.deleted":
		eventType = EventUserDeleted
	default:
		return nil, ErrEventIgnored
	}

	userID := strings.TrimSpace(event.Data.ID)
	if userID == "" {
		return nil, ErrInvalidEvent
	}
	return &Event{Type: eventType, UserID: userID}, nil
}

type wireEvent struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}
