package parser

import (
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/archivist/internal/domain"
)

// structuredHeader matches "[DD/MM/YYYY, HH:MM:SS] Sender: text".
var structuredHeader = regexp.MustCompile(`^\[(\d{2}/\d{2}/\d{4}), (\d{2}:\d{2}:\d{2})\] ([^:]+): (.+)$`)

// legacyHeader matches the older "DD/MM/YYYY, HH:MM - Sender: text" layout,
// with -, / or . as date separators, optional seconds and AM/PM.
var legacyHeader = regexp.MustCompile(`^(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}),?\s*(\d{1,2}:\d{2}(?::\d{2})?\s?(?:AM|PM|am|pm)?)\s?[-–]\s(.+?):\s(.*)$`)

// ParseStructured parses bracketed chat exports line by line.
//
// A header line starts a new message. Any other line is appended to the
// current message after a "\n", unchanged. Lines before the first header
// are dropped.
func ParseStructured(text string) []domain.ParsedMessage {
	var msgs []domain.ParsedMessage

	for _, line := range strings.Split(text, "\n") {
		if m := structuredHeader.FindStringSubmatch(line); m != nil {
			msgs = append(msgs, domain.ParsedMessage{
				Date:    m[1],
				Time:    m[2],
				Sender:  m[3],
				Content: m[4],
			})
			continue
		}
		if len(msgs) > 0 {
			msgs[len(msgs)-1].Content += "\n" + line
		}
	}

	return msgs
}

// ParseLegacy parses the dash-separated export layout. Lines are split on
// "\n" or "\r\n" and blank lines are ignored.
func ParseLegacy(text string) []domain.ParsedMessage {
	var msgs []domain.ParsedMessage

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := legacyHeader.FindStringSubmatch(line); m != nil {
			msgs = append(msgs, domain.ParsedMessage{
				Date:    m[1],
				Time:    strings.TrimSpace(m[2]),
				Sender:  m[3],
				Content: m[4],
			})
			continue
		}
		if len(msgs) > 0 {
			msgs[len(msgs)-1].Content += "\n" + line
		}
	}

	return msgs
}
