package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Outputs is an insertion-ordered string-to-value mapping. It accumulates
// one entry per completed step, in step order, and keeps that order through
// JSON and YAML round trips. Ordering is what makes a partial result
// readable: the last key present is the last step that completed.
type Outputs struct {
	keys   []string
	values map[string]any
}

// NewOutputs returns an empty accumulator.
func NewOutputs() *Outputs {
	return &Outputs{values: make(map[string]any)}
}

// Set records a value under key. A repeated key keeps its original position.
func (o *Outputs) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value recorded under key.
func (o *Outputs) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Outputs) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of recorded entries.
func (o *Outputs) Len() int {
	return len(o.keys)
}

// MarshalJSON renders the outputs as a JSON object in insertion order.
func (o *Outputs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, fmt.Errorf("marshal output %q: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the outputs preserving the object's key order.
func (o *Outputs) UnmarshalJSON(data []byte) error {
	o.keys = nil
	o.values = make(map[string]any)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("outputs must be a JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("outputs key is not a string")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode output %q: %w", key, err)
		}
		o.Set(key, value)
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalYAML renders the outputs as a YAML mapping in insertion order.
func (o *Outputs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range o.keys {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(key); err != nil {
			return nil, err
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(o.values[key]); err != nil {
			return nil, fmt.Errorf("encode output %q: %w", key, err)
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

// UnmarshalYAML restores the outputs preserving the mapping's key order.
func (o *Outputs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("outputs must be a YAML mapping")
	}
	o.keys = nil
	o.values = make(map[string]any)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("decode output %q: %w", key, err)
		}
		o.Set(key, value)
	}
	return nil
}

// Result is the structured outcome of one workflow run and the
// serialization contract for every output renderer. Outputs reflects
// exactly how far execution got, even when Success is false.
type Result struct {
	// Success reports whether every step completed.
	Success bool `json:"success" yaml:"success"`

	// Message summarizes the run, or describes the failure.
	Message string `json:"message" yaml:"message"`

	// Outputs holds one entry per completed step, in step order.
	Outputs *Outputs `json:"outputs" yaml:"outputs"`
}

// NewResult returns an empty, not-yet-successful result.
func NewResult() *Result {
	return &Result{Outputs: NewOutputs()}
}
