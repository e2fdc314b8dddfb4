package manifest

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ruledDecl mirrors the serialized rules-bearing capability declaration.
type ruledDecl struct {
	Default AccessTypeCapability `json:"default" yaml:"default"`
	Rules   []CapabilityRule     `json:"rules" yaml:"rules"`
}

// UnmarshalJSON canonicalizes the two serialized shapes of a capability
// declaration: a bare capability object, or {default, rules}. Either key
// marks the rules-bearing shape; a rules list without a default still gets
// its rules preserved over a zero default.
func (d *CapabilityDecl) UnmarshalJSON(data []byte) error {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return fmt.Errorf("capability declaration: %w", err)
	}

	_, hasDefault := shape["default"]
	_, hasRules := shape["rules"]
	if hasDefault || hasRules {
		var rd ruledDecl
		if err := json.Unmarshal(data, &rd); err != nil {
			return fmt.Errorf("capability declaration: %w", err)
		}
		*d = CapabilityDecl{Default: rd.Default, Rules: rd.Rules}
		return nil
	}

	var flat AccessTypeCapability
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("capability declaration: %w", err)
	}
	*d = FlatCapability(flat)
	return nil
}

// MarshalJSON writes the declaration back in the shape it was declared in.
func (d CapabilityDecl) MarshalJSON() ([]byte, error) {
	if d.flat {
		return json.Marshal(d.Default)
	}
	return json.Marshal(ruledDecl{Default: d.Default, Rules: d.Rules})
}

// UnmarshalYAML canonicalizes the capability declaration shapes for yaml.v3.
func (d *CapabilityDecl) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("capability declaration: expected mapping, got %v", value.Kind)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		if k := value.Content[i].Value; k == "default" || k == "rules" {
			var rd ruledDecl
			if err := value.Decode(&rd); err != nil {
				return fmt.Errorf("capability declaration: %w", err)
			}
			*d = CapabilityDecl{Default: rd.Default, Rules: rd.Rules}
			return nil
		}
	}

	var flat AccessTypeCapability
	if err := value.Decode(&flat); err != nil {
		return fmt.Errorf("capability declaration: %w", err)
	}
	*d = FlatCapability(flat)
	return nil
}

// UnmarshalJSON canonicalizes supported access-item types. The legacy shape
// is a flat string array; the current shape is an array of metadata objects.
// The shape is detected from the first element and resolved here, once.
func (s *SupportedTypes) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return fmt.Errorf("supported access-item types: %w", err)
	}

	out := make(SupportedTypes, 0, len(elems))
	for _, raw := range elems {
		if len(raw) > 0 && raw[0] == '"' {
			var t AccessItemType
			if err := json.Unmarshal(raw, &t); err != nil {
				return fmt.Errorf("supported access-item types: %w", err)
			}
			out = append(out, AccessItemTypeMetadata{Type: t})
			continue
		}
		var meta AccessItemTypeMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			return fmt.Errorf("supported access-item types: %w", err)
		}
		out = append(out, meta)
	}
	*s = out
	return nil
}

// UnmarshalYAML canonicalizes supported access-item types for yaml.v3.
func (s *SupportedTypes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("supported access-item types: expected sequence, got %v", value.Kind)
	}

	out := make(SupportedTypes, 0, len(value.Content))
	for _, elem := range value.Content {
		if elem.Kind == yaml.ScalarNode {
			out = append(out, AccessItemTypeMetadata{Type: AccessItemType(elem.Value)})
			continue
		}
		var meta AccessItemTypeMetadata
		if err := elem.Decode(&meta); err != nil {
			return fmt.Errorf("supported access-item types: %w", err)
		}
		out = append(out, meta)
	}
	*s = out
	return nil
}
