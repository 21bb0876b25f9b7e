// Package krutidev repairs legacy "visually Hindi" text typed with
// glyph-substitution fonts (Kruti Dev family). The underlying bytes of such
// text are Latin codepoints that only render as Devanagari under the font;
// this package detects that case and maps the glyphs back to real Devanagari
// codepoints. All functions are pure and safe for concurrent use.
package krutidev

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Detection thresholds. Legacy classification deliberately errs toward
// false negatives: genuine English must never be "repaired".
const (
	minLatinLetters = 6
	minLatinRatio   = 0.55
)

// tellMarks are punctuation characters the glyph mapping produces in almost
// any real Hindi sentence (e.g. ';' renders as the letter "ya"). Their
// presence separates legacy text from ordinary Latin prose.
const tellMarks = ";%^~`<>+\\"

// HasDevanagari reports whether s contains at least one Devanagari codepoint.
func HasDevanagari(s string) bool {
	for _, r := range s {
		if isDevanagari(r) {
			return true
		}
	}
	return false
}

func isDevanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}

// LooksLegacy classifies s as glyph-mapped legacy text.
// Requirements: no Devanagari codepoints, at least minLatinLetters Latin
// letters, at least one tell mark, and a Latin-letter share of at least
// minLatinRatio of all runes.
func LooksLegacy(s string) bool {
	if s == "" || HasDevanagari(s) {
		return false
	}

	letters := 0
	total := 0
	for _, r := range s {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	if letters < minLatinLetters {
		return false
	}
	if !strings.ContainsAny(s, tellMarks) {
		return false
	}
	return float64(letters)/float64(total) >= minLatinRatio
}

// Convert maps glyph sequences to Devanagari using the fixed table,
// longest match first (2-character sequences before 1-character).
// If the conversion yields no Devanagari at all it is discarded and the
// original string is returned: the table is never trusted blindly.
func Convert(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)

	rest := s
	for len(rest) > 0 {
		// The short i matra precedes its consonant in the glyph encoding
		// but follows it in Unicode. Convert the next cluster first.
		if rest[0] == 'f' {
			cluster, n := nextCluster(rest[1:])
			if cluster != "" {
				b.WriteString(cluster)
				b.WriteString("ि") // ि
				rest = rest[1+n:]
				continue
			}
		}

		if len(rest) >= 2 {
			if out, ok := twoCharGlyphs[rest[:2]]; ok {
				b.WriteString(out)
				rest = rest[2:]
				continue
			}
		}
		if out, ok := oneCharGlyphs[rest[:1]]; ok {
			b.WriteString(out)
			rest = rest[1:]
			continue
		}

		_, n := utf8.DecodeRuneInString(rest)
		b.WriteString(rest[:n])
		rest = rest[n:]
	}

	out := b.String()
	if !HasDevanagari(out) {
		return s
	}
	return norm.NFC.String(out)
}

// nextCluster converts the leading glyph cluster of s and returns it with
// the number of source bytes consumed. Returns "" when s does not start
// with a mapped consonant.
func nextCluster(s string) (string, int) {
	if len(s) >= 2 {
		if out, ok := twoCharGlyphs[s[:2]]; ok {
			return out, 2
		}
	}
	if len(s) >= 1 {
		if out, ok := oneCharGlyphs[s[:1]]; ok && !isMatra(out) {
			return out, 1
		}
	}
	return "", 0
}

func isMatra(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.Is(unicode.Mn, r) || (r >= 0x093E && r <= 0x094D)
}

// Normalize returns best-effort Unicode Devanagari for s.
// Already-Unicode text is NFC-normalized and otherwise untouched;
// ordinary Latin text passes through unchanged.
func Normalize(s string) string {
	if HasDevanagari(s) {
		return norm.NFC.String(s)
	}
	if LooksLegacy(s) {
		return Convert(s)
	}
	return s
}

// NormalizeSentence repairs generated strings that mix a machine-written
// prefix (an event-type label such as "Book issued: ") with possibly-legacy
// content. Only the part after a recognized prefix is evaluated, and quoted
// substrings are converted independently so an English carrier sentence
// survives around legacy fragments.
func NormalizeSentence(s string, prefixes ...string) string {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return p + normalizeQuotedAware(s[len(p):])
		}
	}
	return normalizeQuotedAware(s)
}

// normalizeQuotedAware normalizes quoted substrings on their own and the
// remaining text as a single unit.
func normalizeQuotedAware(s string) string {
	if !strings.ContainsAny(s, `'"`) {
		return Normalize(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	rest := s
	for {
		start := strings.IndexAny(rest, `'"`)
		if start < 0 {
			b.WriteString(Normalize(rest))
			return b.String()
		}
		quote := rest[start]
		end := strings.IndexByte(rest[start+1:], quote)
		if end < 0 {
			b.WriteString(Normalize(rest))
			return b.String()
		}

		b.WriteString(Normalize(rest[:start]))
		b.WriteByte(quote)
		b.WriteString(Normalize(rest[start+1 : start+1+end]))
		b.WriteByte(quote)
		rest = rest[start+1+end+1:]
	}
}
