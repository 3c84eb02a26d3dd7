package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestVerifySignature(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("test-signing-key"))
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	id := "msg_123"
	timestamp := fmt.Sprint(time.Now().Unix())

	adapter, err := NewAdapter("whsec_" + secret)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	header := http.Header{}
	header.Set(HeaderID, id)
	header.Set(HeaderTimestamp, timestamp)
	header.Set(HeaderSignature, "v1,"+sign([]byte("test-signing-key"), id, timestamp, payload))
	if err := adapter.Verify(payload, header); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	// Multiple signatures with one valid entry still verify.
	header.Set(HeaderSignature, "v1,bogus= v1,"+sign([]byte("test-signing-key"), id, timestamp, payload))
	if err := adapter.Verify(payload, header); err != nil {
		t.Fatalf("expected valid signature among several, got error: %v", err)
	}

	header.Set(HeaderSignature, "v1,"+sign([]byte("wrong-key"), id, timestamp, payload))
	if err := adapter.Verify(payload, header); err == nil {
		t.Fatalf("expected invalid signature error")
	}

	header.Del(HeaderTimestamp)
	if err := adapter.Verify(payload, header); err == nil {
		t.Fatalf("expected missing header error")
	}
}

func TestParseUserEvents(t *testing.T) {
	adapter, err := NewAdapter(base64.StdEncoding.EncodeToString([]byte("k")))
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	event, err := adapter.Parse([]byte(`{"type":"user.created","data":{"id":"user_1"}}`))
	if err != nil {
		t.Fatalf("parse created: %v", err)
	}
	if event.Type != EventUserCreated || event.UserID != "user_1" {
		t.Fatalf("unexpected event: %+v", event)
	}

	event, err = adapter.Parse([]byte(`{"type":"user.deleted","data":{"id":"user_2"}}`))
	if err != nil {
		t.Fatalf("parse deleted: %v", err)
	}
	if event.Type != EventUserDeleted || event.UserID != "user_2" {
		t.Fatalf("unexpected event: %+v", event)
	}

	if _, err := adapter.Parse([]byte(`{"type":"session.created","data":{"id":"sess_1"}}`)); !errors.Is(err, ErrEventIgnored) {
		t.Fatalf("expected ignored event, got %v", err)
	}
	if _, err := adapter.Parse([]byte(`{"type":"user.created","data":{}}`)); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected invalid event, got %v", err)
	}
	if _, err := adapter.Parse([]byte(`not json`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected invalid payload, got %v", err)
	}
}

func sign(key []byte, id, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(fmt.Sprintf("%s.%s.%s", id, timestamp, payload)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
