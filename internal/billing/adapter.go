package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Event is a provider subscription lifecycle event reduced to the fields the
// subscription service needs. UserID is only present on created events, where
// the checkout flow stamps it into the subscription metadata; updated and
// deleted events are reconciled through CustomerID instead.
type Event struct {
	EventID        string
	Type           EventType
	UserID         string
	CustomerID     string
	SubscriptionID string
	ItemID         string
	PriceID        string
}

type EventType string

const (
	EventSubscriptionCreated EventType = "subscription.created"
	EventSubscriptionUpdated EventType = "subscription.updated"
	EventSubscriptionDeleted EventType = "subscription.deleted"
)

var (
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
	ErrInvalidEvent     = errors.New("invalid_event")
	// ErrEventIgnored marks event types outside the subscription lifecycle.
	// Callers acknowledge these with a 2xx so the provider stops retrying.
	ErrEventIgnored = errors.New("event_ignored")
)

// SignatureHeader carries the provider's timestamped HMAC, formatted as
// "t=<unix>,v1=<hex hmac of "<unix>.<payload>">".
const SignatureHeader = "Billing-Signature"

type Adapter struct {
	webhookSecret string
}

func NewAdapter(webhookSecret string) *Adapter {
	return &Adapter{webhookSecret: webhookSecret}
}

func (a *Adapter) Verify(payload []byte, headers http.Header) error {
	sigHeader := strings.TrimSpace(headers.Get(SignatureHeader))
	if sigHeader == "" {
		return ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
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
	if strings.TrimSpace(event.ID) == "" {
		return nil, ErrInvalidEvent
	}

	var eventType EventType
	switch strings.TrimSpace(event.Type) {
	case "customer.subscription.created":
		eventType = EventSubscriptionCreated
	case "customer.subscription.updated":
		eventType = EventSubscriptionUpdated
	case "customer.subscription.deleted":
		eventType = EventSubscriptionDeleted
	default:
		return nil, ErrEventIgnored
	}

	var sub wireSubscription
	if err := json.Unmarshal(event.Data.Object, &sub); err != nil {
		return nil, ErrInvalidPayload
	}
	if strings.TrimSpace(sub.ID) == "" || strings.TrimSpace(sub.Customer) == "" {
		return nil, ErrInvalidEvent
	}

	parsed := &Event{
		EventID:        event.ID,
		Type:           eventType,
		UserID:         strings.TrimSpace(sub.Metadata["user_id"]),
		CustomerID:     strings.TrimSpace(sub.Customer),
		SubscriptionID: strings.TrimSpace(sub.ID),
	}
	if len(sub.Items.Data) > 0 {
		parsed.ItemID = strings.TrimSpace(sub.Items.Data[0].ID)
		parsed.PriceID = strings.TrimSpace(sub.Items.Data[0].Price.ID)
	}

	if eventType == EventSubscriptionCreated && parsed.UserID == "" {
		return nil, ErrInvalidEvent
	}
	if eventType != EventSubscriptionDeleted && parsed.PriceID == "" {
		return nil, ErrInvalidEvent
	}
	return parsed, nil
}

type wireEvent struct {
	ID   string        `json:"id"`
	Type string        `json:"type"`
	Data wireEventData `json:"data"`
}

type wireEventData struct {
	Object json.RawMessage `json:"object"`
}

type wireSubscription struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Metadata map[string]string `json:"metadata"`
	Items    struct {
		Data []struct {
			ID    string `json:"id"`
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}
