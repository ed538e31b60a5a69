package document

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// MarshalYAML implements yaml.Marshaler, preserving key order.
func (n *Node) MarshalYAML() (any, error) {
	return n.yamlNode(), nil
}

func (n *Node) yamlNode() *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: TagNull, Value: "null"}
	}
	switch n.Kind {
	case KindMapping:
		y := &yaml.Node{Kind: yaml.MappingNode}
		for _, p := range n.Pairs {
			y.Content = append(y.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: TagString, Value: p.Key},
				p.Value.yamlNode())
		}
		return y
	case KindSequence:
		y := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range n.Items {
			y.Content = append(y.Content, item.yamlNode())
		}
		return y
	}
	tag := n.Tag
	if tag == "" {
		tag = TagString
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.Value}
}

// MarshalJSON implements json.Marshaler, preserving key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case KindMapping:
		buf.WriteByte('{')
		for i, p := range n.Pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(p.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := p.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}
	b, err := json.Marshal(n.Interface())
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
