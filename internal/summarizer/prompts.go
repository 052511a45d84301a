package summarizer

import "fmt"

const (
	summarySystemPrompt = "You are an expert news analyst and summarizer. Provide concise, insightful summaries that capture the core of news articles, including key events, figures, and implications."
	summaryUserPrompt   = "Summarize this news article in 2-3 sentences. Highlight the main event, key figures, and any significant impacts or outcomes. Ensure the summary is informative and contextual. Article: %s"
	warmUpPrompt        = "Warm-up request"

	summaryMaxTokens   = 150
	summaryTemperature = 0.5
	translateMaxTokens = 250
	translateTemp      = 0.3
	warmUpMaxTokens    = 5
)

func summaryPrompt(text string, maxChars int) string {
	return fmt.Sprintf(summaryUserPrompt, Truncate(text, maxChars))
}

func translateSystemPrompt(target string) string {
	return fmt.Sprintf("You are a professional translator. Translate the following text to %s.", target)
}
