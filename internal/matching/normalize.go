package matching

import "strings"

// isTokenByte reports whether c belongs to a token. '+' and '#' are kept so
// that "c++" and "c#" survive normalization.
func isTokenByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '+' || c == '#'
}

// Tokens lower-cases text and splits it into tokens. Everything that is not an
// ASCII letter, digit, '+' or '#' separates tokens. Stop-words are retained.
func Tokens(text string) []string {
	if text == "" {
		return nil
	}

	var (
		tokens []string
		word   strings.Builder
	)

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if isTokenByte(c) {
			word.WriteByte(c)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// Normalize returns the tokens of text joined by single spaces.
func Normalize(text string) string {
	return strings.Join(Tokens(text), " ")
}

// Clauses splits text at sentence and clause boundaries and tokenizes every
// clause. A period only ends a clause when followed by whitespace or the end
// of the text, so "node.js" stays in one clause.
func Clauses(text string) [][]string {
	var (
		clauses [][]string
		start   int
	)

	emit := func(end int) {
		if tokens := Tokens(text[start:end]); len(tokens) > 0 {
			clauses = append(clauses, tokens)
		}
		start = end + 1
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n', '\r', ';', '!', '?':
			emit(i)
		case '.', ':':
			if i+1 == len(text) || isSpace(text[i+1]) {
				emit(i)
			}
		}
	}
	if start < len(text) {
		emit(len(text))
	}

	return clauses
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// fold maps a token to the form used for phrase comparison. Simple plurals
// are folded so that "apis" matches "api".
func fold(token string) string {
	if len(token) > 3 && token[len(token)-1] == 's' && token[len(token)-2] != 's' {
		return token[:len(token)-1]
	}
	return token
}

func foldAll(tokens []string) []string {
	folded := make([]string, len(tokens))
	for i, t := range tokens {
		folded[i] = fold(t)
	}
	return folded
}

// stopWords are ignored when checking that the words of a multi-word skill
// appear near each other.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true, "for": true,
	"with": true, "in": true, "on": true, "to": true, "or": true, "using": true,
	"based": true, "experience": true,
}
