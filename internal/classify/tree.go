// Package classify turns the model's answer into an ordered folder tree.
package classify

import (
	"bytes"
	"encoding/json"
)

// Node is one key of the folder tree. Folders carry Children; leaves carry
// Value, which is a synopsis for nested files or a folder name for
// top-level filename entries.
type Node struct {
	Key      string `json:"key" msgpack:"key"`
	Value    string `json:"value,omitempty" msgpack:"value,omitempty"`
	IsFolder bool   `json:"folder" msgpack:"folder"`
	Children Tree   `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Tree is an ordered JSON object. Key order follows the model's output.
type Tree []*Node

// Get returns the node stored under key.
func (t Tree) Get(key string) (*Node, bool) {
	for _, n := range t {
		if n.Key == key {
			return n, true
		}
	}
	return nil, false
}

// set inserts n or replaces an earlier node with the same key in place,
// so a repeated key keeps its first position and its last value.
func (t Tree) set(n *Node) Tree {
	for i, existing := range t {
		if existing.Key == n.Key {
			t[i] = n
			return t
		}
	}
	return append(t, n)
}

// MarshalJSON renders the tree back into the nested object shape the model
// produced, preserving key order.
func (t Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t Tree) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, n := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n.Key)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if n.IsFolder {
			if err := n.Children.writeJSON(buf); err != nil {
				return err
			}
			continue
		}
		val, err := json.Marshal(n.Value)
		if err != nil {
			return err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return nil
}
