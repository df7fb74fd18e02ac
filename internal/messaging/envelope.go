package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/iudanet/gophsync/internal/geom"
)

const (
	fieldMessage   = "_message"
	fieldNetworkID = "_networkRootId"
	fieldType      = "_type"
)

type envelope struct {
	Message   string          `json:"_message"`
	Data      json.RawMessage `json:"_data,omitempty"`
	NetworkID string          `json:"_networkRootId"`
	ID        string          `json:"_id,omitempty"`
}

type tagged[T any] struct {
	Value T      `json:"value"`
	Type  string `json:"_type"`
}

func untag[T any](raw json.RawMessage) (any, error) {
	var v tagged[T]
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v.Value, nil
}

// encodePayload marshals payload, tagging geometric values so that they
// come back with their Go type.
func encodePayload(payload any) (json.RawMessage, error) {
	var v any
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	case geom.Vec2:
		v = tagged[geom.Vec2]{Type: "vec2", Value: p}
	case geom.Vec3:
		v = tagged[geom.Vec3]{Type: "vec3", Value: p}
	case geom.Vec4:
		v = tagged[geom.Vec4]{Type: "vec4", Value: p}
	case geom.Quat:
		v = tagged[geom.Quat]{Type: "quat", Value: p}
	default:
		v = payload
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return data, nil
}

// decodePayload restores tagged geometric values and falls back to the
// generic JSON representation for everything else.
func decodePayload(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var (
		target any
		err    error
	)
	switch gjson.GetBytes(raw, fieldType).String() {
	case "vec2":
		target, err = untag[geom.Vec2](raw)
	case "vec3":
		target, err = untag[geom.Vec3](raw)
	case "vec4":
		target, err = untag[geom.Vec4](raw)
	case "quat":
		target, err = untag[geom.Quat](raw)
	default:
		err = json.Unmarshal(raw, &target)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return target, nil
}

func encodeEnvelope(networkID, id, key string, payload any) ([]byte, json.RawMessage, error) {
	data, err := encodePayload(payload)
	if err != nil {
		return nil, nil, err
	}
	out, err := json.Marshal(envelope{
		Message:   key,
		Data:      data,
		NetworkID: networkID,
		ID:        id,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return out, data, nil
}

// decodeEnvelope parses raw if it is addressed to networkID. The routing
// tag is peeked first so that unrelated traffic is never fully decoded.
func decodeEnvelope(raw []byte, networkID string) (envelope, error) {
	if !gjson.ValidBytes(raw) {
		return envelope{}, ErrMalformedMessage
	}
	root := gjson.GetBytes(raw, fieldNetworkID)
	if !root.Exists() || root.String() != networkID {
		return envelope{}, ErrForeignMessage
	}
	if !gjson.GetBytes(raw, fieldMessage).Exists() {
		return envelope{}, fmt.Errorf("%w: no %s", ErrMalformedMessage, fieldMessage)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return env, nil
}
