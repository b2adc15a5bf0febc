package seo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Bahjat/seo-insight/internal/model"
)

const (
	MinWordsPerSentence = 10
	MaxWordsPerSentence = 25
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Readability grades plain text by its average sentence length. It never
// fails: text without words or sentences yields a warning.
func Readability(text string) model.Finding {
	var sentences int
	for _, s := range sentenceBoundary.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	words := len(strings.Fields(text))

	if words == 0 || sentences == 0 {
		return warning("Content too short for readability analysis",
			"Add more content for accurate readability scoring")
	}

	avg := float64(words) / float64(sentences)
	switch {
	case avg > MaxWordsPerSentence:
		return warning("Sentences may be too long",
			fmt.Sprintf("Average %.1f words per sentence. Aim for 15-20 words.", avg))
	case avg < MinWordsPerSentence:
		return warning("Sentences may be too short",
			fmt.Sprintf("Average %.1f words per sentence. Aim for 15-20 words.", avg))
	default:
		return good("Good sentence length", fmt.Sprintf("Average %.1f words per sentence", avg))
	}
}
