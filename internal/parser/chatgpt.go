package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// conversationSeparator joins the text fragments of a ChatGPT export.
const conversationSeparator = "\n\n---\n\n"

// ParseChatGPT flattens a ChatGPT export into one text.
//
// Two shapes are understood:
//   - classic: an array of conversations, each with a "mapping" object whose
//     nodes carry message.content.parts (or a plain string content)
//   - simple: an object with a "messages" array of {content} entries
//
// ok is false for malformed JSON or any other shape.
func ParseChatGPT(text string) (merged string, ok bool) {
	var root json.RawMessage
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return "", false
	}

	root = bytes.TrimSpace(root)
	switch {
	case len(root) > 0 && root[0] == '[':
		out, err := parseClassic(root)
		if err != nil {
			return "", false
		}
		return out, true
	case len(root) > 0 && root[0] == '{':
		return parseSimple(root)
	default:
		return "", false
	}
}

// ─────────────────────────────
// Classic export
// ─────────────────────────────

var errNotClassic = errors.New("not a classic export")

type mappingNode struct {
	Message *struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

func parseClassic(root json.RawMessage) (string, error) {
	var conversations []json.RawMessage
	if err := json.Unmarshal(root, &conversations); err != nil {
		return "", err
	}
	if len(conversations) == 0 {
		return "", errNotClassic
	}

	var fragments []string
	for i, raw := range conversations {
		var conv struct {
			Mapping json.RawMessage `json:"mapping"`
		}
		if err := json.Unmarshal(raw, &conv); err != nil {
			return "", err
		}
		if !isObject(conv.Mapping) {
			// Only the first conversation decides the shape; a later one
			// without a mapping makes the whole document unreadable.
			if i == 0 {
				return "", errNotClassic
			}
			return "", fmt.Errorf("conversation %d has no mapping", i)
		}

		nodes, err := orderedValues(conv.Mapping)
		if err != nil {
			return "", err
		}
		for _, rawNode := range nodes {
			var node mappingNode
			if err := json.Unmarshal(rawNode, &node); err != nil || node.Message == nil {
				continue
			}
			if fragment, ok := contentText(node.Message.Content); ok {
				fragments = append(fragments, fragment)
			}
		}
	}

	return strings.Join(fragments, conversationSeparator), nil
}

// contentText reads content.parts joined by newlines, or content itself
// when it is a string.
func contentText(content json.RawMessage) (string, bool) {
	content = bytes.TrimSpace(content)
	if len(content) == 0 || bytes.Equal(content, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(content, &s); err == nil {
		return s, true
	}

	var c struct {
		Parts []json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(content, &c); err != nil || c.Parts == nil {
		return "", false
	}

	parts := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = partText(p)
	}
	return strings.Join(parts, "\n"), true
}

// partText renders a part as text. Strings are used verbatim, null is
// empty and anything else keeps its JSON form.
func partText(p json.RawMessage) string {
	p = bytes.TrimSpace(p)
	if len(p) == 0 || bytes.Equal(p, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(p, &s); err == nil {
		return s
	}
	return string(p)
}

// ─────────────────────────────
// Simple export
// ─────────────────────────────

func parseSimple(root json.RawMessage) (string, bool) {
	var doc struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(root, &doc); err != nil || doc.Messages == nil {
		return "", false
	}

	fragments := make([]string, 0, len(doc.Messages))
	for _, raw := range doc.Messages {
		text, ok := simpleMessageText(raw)
		if !ok {
			return "", false
		}
		fragments = append(fragments, text)
	}
	return strings.Join(fragments, conversationSeparator), true
}

// simpleMessageText renders one message of a simple export. A null message
// or a null content part makes the whole export unreadable (ok == false);
// any other unexpected shape renders as "".
func simpleMessageText(raw json.RawMessage) (text string, ok bool) {
	if isNull(raw) {
		return "", false
	}

	var m struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", true
	}

	var s string
	if err := json.Unmarshal(m.Content, &s); err == nil {
		return s, true
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(m.Content, &parts); err != nil {
		return "", true
	}
	texts := make([]string, len(parts))
	for i, p := range parts {
		if isNull(p) {
			return "", false
		}
		var part struct {
			Text json.RawMessage `json:"text"`
		}
		if err := json.Unmarshal(p, &part); err == nil {
			texts[i] = partText(part.Text)
		}
	}
	return strings.Join(texts, "\n"), true
}

// ─────────────────────────────
// Helpers
// ─────────────────────────────

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// orderedValues returns the values of a JSON object in document order.
// encoding/json maps lose key order, so the object is walked token by token.
func orderedValues(obj json.RawMessage) ([]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected object")
	}

	var values []json.RawMessage
	for dec.More() {
		if _, err := dec.Token(); err != nil { // key
			return nil, err
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
