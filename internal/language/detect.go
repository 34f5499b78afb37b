// Package language provides heuristic script and diacritic based language
// detection for chat text. It is shared by the request layer and the dialogue
// graph so both resolve the same tag for the same input.
package language

import "regexp"

// DefaultTag is returned when no rule matches.
const DefaultTag = "en-US"

type rule struct {
	tag     string
	pattern *regexp.Regexp
}

// Rules are evaluated in order and the first match wins. Script rules come
// strictly before Latin diacritic rules: a non-Latin script identifies its
// language unambiguously, while diacritic sets overlap between languages
// (e.g. the same accented vowels appear in Spanish, Italian and Portuguese),
// so earlier entries win ties.
var rules = []rule{
	// Script rules
	{"hi-IN", regexp.MustCompile(`[\x{0900}-\x{097F}]`)},       // Devanagari
	{"ko-KR", regexp.MustCompile(`[\x{AC00}-\x{D7AF}]`)},       // Hangul
	{"ja-JP", regexp.MustCompile(`[\x{3040}-\x{309F}\x{30A0}-\x{30FF}]`)}, // Hiragana/Katakana
	{"zh-CN", regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`)},       // CJK ideographs
	{"ta-IN", regexp.MustCompile(`[\x{0B80}-\x{0BFF}]`)},       // Tamil
	{"bn-IN", regexp.MustCompile(`[\x{0980}-\x{09FF}]`)},       // Bengali
	{"ar-SA", regexp.MustCompile(`[\x{0600}-\x{06FF}]`)},       // Arabic
	// Latin diacritic rules
	{"es-ES", regexp.MustCompile(`(?i)[áéíóúñ¿¡]`)},
	{"fr-FR", regexp.MustCompile(`(?i)[àâçéèêëîïôûùüÿœæ]`)},
	{"de-DE", regexp.MustCompile(`(?i)[äöüß]`)},
	{"it-IT", regexp.MustCompile(`(?i)[àèéìíîòóùú]`)},
	{"pt-BR", regexp.MustCompile(`(?i)[ãõâêîôûáéíóúç]`)},
	{"pl-PL", regexp.MustCompile(`(?i)[ąćęłńóśźż]`)},
}

// Detect returns the language tag of the first rule matching anywhere in
// text, or DefaultTag when nothing matches. A single matching character is
// enough; this is a heuristic, not a language identification model, and it
// has no notion of confidence or "unknown".
func Detect(text string) string {
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.tag
		}
	}
	return DefaultTag
}

// Resolve applies the request-level priority: a detected non-English tag wins
// over the caller-supplied one; otherwise the requested tag is kept, falling
// back to the default when the request carries none.
func Resolve(detected, requested string) string {
	if detected != DefaultTag {
		return detected
	}
	if requested != "" {
		return requested
	}
	return DefaultTag
}
