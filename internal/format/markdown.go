package format

import (
	"regexp"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseResult contains plain text and message entities
type ParseResult struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

// UTF16Len calculates the UTF-16 length of a string.
// Telegram uses UTF-16 code units for entity offsets/lengths.
func UTF16Len(s string) int {
	length := 0
	for _, r := range s {
		if r == utf8.RuneError {
			length++
			continue
		}
		if r >= 0x10000 {
			length += 2 // surrogate pair
		} else {
			length++
		}
	}
	return length
}

var markupRe = regexp.MustCompile("\\*\\*(.+?)\\*\\*|`([^`]+?)`")

// ParseMarkdown converts **bold** and `code` spans into Telegram message
// entities, in one left-to-right pass so offsets stay exact.
func ParseMarkdown(text string) ParseResult {
	var (
		out      strings.Builder
		entities []tgbotapi.MessageEntity
		outLen   int
		last     int
	)

	for _, loc := range markupRe.FindAllStringSubmatchIndex(text, -1) {
		plain := text[last:loc[0]]
		out.WriteString(plain)
		outLen += UTF16Len(plain)

		typ, inner := "bold", ""
		if loc[2] != -1 {
			inner = text[loc[2]:loc[3]]
		} else {
			typ, inner = "code", text[loc[4]:loc[5]]
		}

		innerLen := UTF16Len(inner)
		entities = append(entities, tgbotapi.MessageEntity{
			Type:   typ,
			Offset: outLen,
			Length: innerLen,
		})
		out.WriteString(inner)
		outLen += innerLen
		last = loc[1]
	}
	out.WriteString(text[last:])

	return ParseResult{
		Text:     strings.TrimRight(out.String(), " \n"),
		Entities: entities,
	}
}
