package tui

import (
	"fmt"
	"time"
)

// Canonical short status messages used across the app.
const (
	MsgAnalyzing      = "Analyzing article…"
	MsgAnalysisDone   = "Analysis complete"
	MsgAnalysisFailed = "Analysis failed"
	MsgAlreadyRunning = "An analysis is already running"
	MsgCleared        = "Cleared"
	MsgNothingToShow  = "Nothing to show yet"
	MsgNoFindings     = "The analysis returned no findings."
	MsgRenderingRaw   = "Rendering raw answer…"
	MsgCanceled       = "Analysis canceled"
	MsgSubmitPrompt   = "Enter a URL and a question to analyze any academic article."
	QueryPlaceholder  = `e.g., check this article and give me information on "amino acid Mutation" the url is https://journals.asm.org/doi/...`
	ResultsTitle      = "Analysis Complete"
	ErrorTitle        = "Error"
	SubmitButtonLabel = "Analyze Article"
)

func MsgElapsed(d time.Duration) string {
	return fmt.Sprintf("%s in %s", MsgAnalysisDone, d.Round(100*time.Millisecond))
}

func MsgArticleCount(n int) string {
	if n == 1 {
		return "1 article URL"
	}
	return fmt.Sprintf("%d article URLs", n)
}
