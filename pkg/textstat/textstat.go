// Package textstat reports simple statistics about input and output text.
package textstat

import (
	"strings"
	"unicode/utf8"

	lingua "github.com/pemistahl/lingua-go"
)

// CountWords returns the number of whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// Stats summarizes a passage.
type Stats struct {
	Words      int    `json:"words"`
	Characters int    `json:"characters"`
	Language   string `json:"language,omitempty"`
	ISO        string `json:"iso,omitempty"`
}

// Detector identifies the language of a passage.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector builds a detector over the given languages, or over all
// supported languages when none are given.
func NewDetector(languages ...lingua.Language) *Detector {
	builder := lingua.NewLanguageDetectorBuilder()
	var detector lingua.LanguageDetector
	if len(languages) == 0 {
		detector = builder.FromAllLanguages().Build()
	} else {
		detector = builder.FromLanguages(languages...).Build()
	}
	return &Detector{detector: detector}
}

// Detect returns the language name and its ISO 639-1 code.
func (d *Detector) Detect(text string) (string, string, bool) {
	if d == nil || strings.TrimSpace(text) == "" {
		return "", "", false
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", "", false
	}
	return lang.String(), lang.IsoCode639_1().String(), true
}

// Analyze computes statistics for text. A nil detector skips language
// detection.
func Analyze(text string, d *Detector) Stats {
	s := Stats{
		Words:      CountWords(text),
		Characters: utf8.RuneCountInString(text),
	}
	s.Language, s.ISO, _ = d.Detect(text)
	return s
}
