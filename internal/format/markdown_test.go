package format

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 5, UTF16Len("hello"))
	assert.Equal(t, 2, UTF16Len("일정"))
	assert.Equal(t, 2, UTF16Len("📅"))
}

func TestParseMarkdown(t *testing.T) {
	got := ParseMarkdown("📅 **Standup** at `10:00`\n")

	assert.Equal(t, "📅 Standup at 10:00", got.Text)
	assert.Equal(t, []tgbotapi.MessageEntity{
		{Type: "bold", Offset: 3, Length: 7},
		{Type: "code", Offset: 14, Length: 5},
	}, got.Entities)
}

func TestParseMarkdown_PlainText(t *testing.T) {
	got := ParseMarkdown("nothing to see")
	assert.Equal(t, "nothing to see", got.Text)
	assert.Empty(t, got.Entities)
}
