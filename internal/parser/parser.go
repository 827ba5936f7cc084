// Package parser turns raw export files into ordered chat messages.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/archivist/internal/domain"
)

const (
	// SenderChatGPT is used for the single message built from a ChatGPT export
	SenderChatGPT = "ChatGPT"
	// SenderUnknown is used when the export format is not recognised
	SenderUnknown = "unknown"
)

// strategy tries one format. ok=false (or no messages) passes to the next one.
type strategy func(filename, text string) (msgs []domain.ParsedMessage, ok bool)

// strategies are evaluated in order; the first one producing messages wins.
var strategies = []strategy{
	chatGPTExport,
	structuredChat,
	legacyChat,
}

// Parse detects the export format from the filename extension and the
// content shape. It always returns at least one message: unrecognised
// input becomes a single message from SenderUnknown holding the raw text.
func Parse(filename, text string) []domain.ParsedMessage {
	for _, try := range strategies {
		if msgs, ok := try(filename, text); ok && len(msgs) > 0 {
			return msgs
		}
	}
	return []domain.ParsedMessage{plain(text)}
}

func chatGPTExport(filename, text string) ([]domain.ParsedMessage, bool) {
	if !hasExt(filename, ".json") {
		return nil, false
	}
	merged, ok := ParseChatGPT(text)
	if !ok || merged == "" {
		return nil, false
	}
	return []domain.ParsedMessage{{Sender: SenderChatGPT, Content: merged}}, true
}

func structuredChat(filename, text string) ([]domain.ParsedMessage, bool) {
	if !hasExt(filename, ".txt") {
		return nil, false
	}
	msgs := ParseStructured(text)
	return msgs, len(msgs) > 0
}

func legacyChat(filename, text string) ([]domain.ParsedMessage, bool) {
	if !hasExt(filename, ".txt") {
		return nil, false
	}
	msgs := ParseLegacy(text)
	return msgs, len(msgs) > 0
}

func plain(text string) domain.ParsedMessage {
	return domain.ParsedMessage{Sender: SenderUnknown, Content: text}
}

func hasExt(filename, ext string) bool {
	return strings.EqualFold(filepath.Ext(filename), ext)
}
