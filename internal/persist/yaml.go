package persist

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders a snapshot as block-style YAML with the same keys and
// key order as the JSON form.
func MarshalYAML(s Snapshot) ([]byte, error) {
	data, err := encode(s)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	unflow(&doc)
	return yaml.Marshal(&doc)
}

func unflow(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle | yaml.DoubleQuotedStyle
	for _, c := range n.Content {
		unflow(c)
	}
}

// YAMLToJSON converts a YAML snapshot into JSON that Import accepts. A YAML
// document that is not a mapping is malformed data.
func YAMLToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if _, ok := v.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: top level is not a mapping", ErrMalformedData)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	return out, nil
}
