// Package normalizer cleans speech transcripts before grading: it removes
// conversational filler words sentence by sentence and repairs the
// punctuation spacing that tokenization introduces.
package normalizer

import (
	"regexp"
	"strings"
)

// fillerWords are single-token fillers, matched case-insensitively against
// the literal token text.
var fillerWords = map[string]bool{
	"um":   true,
	"uh":   true,
	"like": true,
	"hmm":  true,
}

// fillerPhrases are multi-token fillers, matched against consecutive tokens.
var fillerPhrases = [][]string{
	{"you", "know"},
}

var (
	sentenceRe = regexp.MustCompile(`[^.!?]*[.!?]`)

	// Words (including contractions) or single punctuation marks.
	tokenRe = regexp.MustCompile(`[\p{L}\p{N}']+|[^\p{L}\p{N}\s]`)

	spaceBeforePunct = regexp.MustCompile(`\s+([.,!?;:])`)
	spaceBeforeApos  = regexp.MustCompile(`\s+'`)
	spaceAfterApos   = regexp.MustCompile(`'\s+`)
	spaceBeforeQuote = regexp.MustCompile(`\s+"`)
	spaceAfterQuote  = regexp.MustCompile(`"\s+`)
)

// Normalize removes filler tokens from text and repairs spacing, one
// sentence at a time. Sentences left empty after filler removal are
// dropped; the survivors are rejoined with single spaces.
func Normalize(text string) string {
	var cleaned []string
	for _, sentence := range splitSentences(text) {
		if s := cleanSentence(sentence); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return strings.Join(cleaned, " ")
}

// splitSentences cuts text at sentence-ending punctuation. Trailing text
// without a terminator still counts as a sentence.
func splitSentences(text string) []string {
	var sentences []string
	rest := text
	for {
		loc := sentenceRe.FindStringIndex(rest)
		if loc == nil {
			break
		}
		sentences = append(sentences, rest[:loc[1]])
		rest = rest[loc[1]:]
	}
	if strings.TrimSpace(rest) != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func cleanSentence(sentence string) string {
	tokens := dropFillers(tokenRe.FindAllString(sentence, -1))
	s := strings.Join(tokens, " ")

	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = spaceBeforeApos.ReplaceAllString(s, "'")
	s = spaceAfterApos.ReplaceAllString(s, "'")
	s = spaceBeforeQuote.ReplaceAllString(s, `"`)
	s = spaceAfterQuote.ReplaceAllString(s, `"`)

	return strings.TrimSpace(s)
}

// dropFillers removes filler tokens. Multi-word fillers match as a run of
// consecutive tokens, so "you know" is removed even though it never appears
// as a single token.
func dropFillers(tokens []string) []string {
	var kept []string
	for i := 0; i < len(tokens); {
		if n := phraseLen(tokens[i:]); n > 0 {
			i += n
			continue
		}
		if fillerWords[strings.ToLower(tokens[i])] {
			i++
			continue
		}
		kept = append(kept, tokens[i])
		i++
	}
	return kept
}

// phraseLen reports the length of the filler phrase starting at tokens[0],
// or 0 when none matches.
func phraseLen(tokens []string) int {
	for _, phrase := range fillerPhrases {
		if len(tokens) < len(phrase) {
			continue
		}
		match := true
		for j, word := range phrase {
			if strings.ToLower(tokens[j]) != word {
				match = false
				break
			}
		}
		if match {
			return len(phrase)
		}
	}
	return 0
}
