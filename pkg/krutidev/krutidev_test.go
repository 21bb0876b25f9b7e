package krutidev

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasDevanagari(t *testing.T) {
	assert.True(t, HasDevanagari("किताब"))
	assert.True(t, HasDevanagari("mixed किताब text"))
	assert.False(t, HasDevanagari("plain latin"))
	assert.False(t, HasDevanagari(""))
}

func TestLooksLegacy(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{
			name: "enough letters with tell marks",
			in:   "abcdefghij;;",
			want: true,
		},
		{
			name: "enough letters but no tell marks",
			in:   "abcdefghij",
			want: false,
		},
		{
			name: "too few latin letters",
			in:   "ab;",
			want: false,
		},
		{
			name: "devanagari already present",
			in:   "किताब abcdefgh;",
			want: false,
		},
		{
			name: "latin ratio too low",
			in:   "abcdef; 123456789 123456789",
			want: false,
		},
		{
			name: "typical glyph-mapped fragment",
			in:   "fdrkc vkSj ;g",
			want: true,
		},
		{
			name: "empty",
			in:   "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLegacy(tt.in))
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "single char glyphs",
			in:   ";g",
			want: "यह",
		},
		{
			name: "word with matras",
			in:   "Hkkjr",
			want: "भारत",
		},
		{
			name: "short i matra reorders after consonant",
			in:   "fdrkc",
			want: "किताब",
		},
		{
			name: "short i matra before two-char cluster",
			in:   "f'k{kd",
			want: "शिक्षक",
		},
		{
			name: "no devanagari produced keeps original",
			in:   "123 456",
			want: "123 456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	// Already-Unicode Hindi passes through.
	assert.Equal(t, "किताब", Normalize("किताब"))

	// Ordinary English is never touched, even at legacy-like length.
	assert.Equal(t, "The Great Gatsby", Normalize("The Great Gatsby"))

	// Legacy text is repaired.
	assert.Equal(t, "किताब यह", Normalize("fdrkc ;g"))
}

func TestNormalizeSentence_PrefixPreserved(t *testing.T) {
	got := NormalizeSentence("Book added: fdrkc ;g", "Book issued: ", "Book added: ")
	assert.Equal(t, "Book added: किताब यह", got)
}

func TestNormalizeSentence_QuotedFragments(t *testing.T) {
	// The quoted legacy fragment converts; the English carrier survives.
	got := NormalizeSentence("'fdrkc ;g' held by Ramesh Kumar")
	assert.Equal(t, "'किताब यह' held by Ramesh Kumar", got)
}

func TestNormalizeSentence_NoPrefixNoQuotes(t *testing.T) {
	assert.Equal(t, "plain text", NormalizeSentence("plain text", "Book issued: "))
}
