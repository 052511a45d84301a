package render

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/deusflow/ainews/internal/news"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1).
			Width(80)
)

// Terminal renders records as boxed cards for a terminal.
func Terminal(category, language string, records []news.Record) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("📰 %s news (%s)", capitalize(category), language)))
	b.WriteString("\n\n")

	for i, r := range records {
		var card strings.Builder
		card.WriteString(titleStyle.Render(fmt.Sprintf("%d. %s", i+1, r.Title)))
		card.WriteString("\n")
		card.WriteString(infoStyle.Render("Source: " + r.Source))
		card.WriteString("\n\n")
		if r.Status == news.StatusError {
			card.WriteString(errorStyle.Render(r.Summary))
		} else {
			card.WriteString(r.Summary)
		}
		if r.URL != news.PlaceholderURL {
			card.WriteString("\n")
			card.WriteString(infoStyle.Render(r.URL))
		}
		b.WriteString(boxStyle.Render(card.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// TerminalMessage renders a batch-level message.
func TerminalMessage(msg string) string {
	return errorStyle.Render(msg) + "\n"
}

// TelegramLimit is the Bot API message length limit.
const TelegramLimit = 4096

const telegramFooter = "\n━━━━━━━━━━━━━━━━━━━━\n📱 AI News Digest"

// Telegram renders records as a Telegram HTML message. Articles that would
// push the message past TelegramLimit are dropped whole.
func Telegram(category, language string, records []news.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📰 <b>%s news</b> (%s)\n", html.EscapeString(capitalize(category)), html.EscapeString(language))
	b.WriteString("━━━━━━━━━━━━━━━━━━━━\n\n")

	n := 0
	for _, r := range records {
		if r.Status != news.StatusOK {
			continue
		}
		entry := telegramEntry(r, n+1)
		if utf8.RuneCountInString(b.String())+utf8.RuneCountInString(entry)+utf8.RuneCountInString(telegramFooter) > TelegramLimit {
			break
		}
		b.WriteString(entry)
		n++
	}

	b.WriteString(telegramFooter)
	return b.String()
}

func telegramEntry(r news.Record, number int) string {
	var b strings.Builder
	if r.URL != news.PlaceholderURL {
		fmt.Fprintf(&b, "🔥 <b>%d.</b> <a href=\"%s\">%s</a>\n", number, html.EscapeString(r.URL), html.EscapeString(r.Title))
	} else {
		fmt.Fprintf(&b, "🔥 <b>%d.</b> %s\n", number, html.EscapeString(r.Title))
	}
	fmt.Fprintf(&b, "<i>%s</i>\n\n", html.EscapeString(r.Source))
	b.WriteString(html.EscapeString(r.Summary))
	b.WriteString("\n\n")
	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}
