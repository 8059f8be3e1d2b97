package storage

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is the envelope version written by EncodeVersioned
const CurrentVersion = 1

type envelope struct {
	V    int             `json:"v"`
	Data json.RawMessage `json:"data"`
}

// EncodeVersioned serializes v inside a {"v":N,"data":...} envelope
func EncodeVersioned(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	out, err := json.Marshal(envelope{V: CurrentVersion, Data: data})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return string(out), nil
}

// DecodeVersioned decodes raw into out and returns the blob version.
// Raw JSON written before envelopes existed is accepted as version 0.
// Versions newer than CurrentVersion are rejected.
func DecodeVersioned(raw string, out interface{}) (int, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err == nil && env.V > 0 && len(env.Data) > 0 {
		if env.V > CurrentVersion {
			return env.V, fmt.Errorf("unsupported blob version %d (max %d)", env.V, CurrentVersion)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.V, fmt.Errorf("decode v%d payload: %w", env.V, err)
		}
		return env.V, nil
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return 0, fmt.Errorf("decode legacy payload: %w", err)
	}
	return 0, nil
}
