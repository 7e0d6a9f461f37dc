package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoGeometry is returned for feature payloads without a geometry.
	ErrNoGeometry = errors.New("feature has no geometry")
)

// Feature is a GeoJSON feature. Geometry is carried as raw JSON and passed
// through unmodified; only Properties are merged with computed fields when
// building responses.
type Feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// ParseFeature decodes data as a GeoJSON feature and verifies it carries a
// geometry. It is used both on submission (client-supplied route_json) and
// on read (stored payloads, which may predate submission-time validation).
func ParseFeature(data []byte) (*Feature, error) {
	var f Feature
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse feature: %w", err)
	}
	if len(f.Geometry) == 0 || string(f.Geometry) == "null" {
		return nil, ErrNoGeometry
	}
	if f.Properties == nil {
		f.Properties = map[string]any{}
	}
	return &f, nil
}
