// Package protocol defines the chat wire envelopes and their JSON forms.
//
// Envelopes are tagged variants: a JSON object with exactly one key naming the
// variant and an object value carrying its fields. Clients send Send, the server
// sends NewMessage. Unknown variants and malformed payloads are decode errors;
// callers decide whether those are fatal (they are not, per the reader's policy).
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Send is the single inbound variant: a chat line typed by a client.
type Send struct {
	Text string `json:"text"`
}

// NewMessage is the single outbound variant: a chat line attributed to a sender.
type NewMessage struct {
	By   string `json:"by"`
	Text string `json:"text"`
}

// DecodeInbound parses a payload frame into its Send variant.
//
// The envelope must be an object with exactly one key, that key must be "Send",
// and the payload must carry a text field. Extra payload fields are ignored.
func DecodeInbound(data []byte) (Send, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Send{}, fmt.Errorf("invalid envelope: %w", err)
	}
	if len(envelope) != 1 {
		return Send{}, fmt.Errorf("expected exactly one variant key, got %d", len(envelope))
	}

	var body struct {
		Text *string `json:"text"`
	}
	for variant, payload := range envelope {
		if variant != "Send" {
			return Send{}, fmt.Errorf("unknown variant %q", variant)
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return Send{}, fmt.Errorf("invalid Send payload: %w", err)
		}
	}
	if body.Text == nil {
		return Send{}, errors.New("Send payload missing text field")
	}

	return Send{Text: *body.Text}, nil
}

// EncodeNewMessage wraps the message in its variant tag and marshals it.
func EncodeNewMessage(m NewMessage) ([]byte, error) {
	envelope := struct {
		NewMessage NewMessage `json:"NewMessage"`
	}{NewMessage: m}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}
