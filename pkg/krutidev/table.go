package krutidev

// Glyph tables for the Kruti Dev 010 layout. Two-character sequences are
// matched before single characters; ordering inside each map is irrelevant.
// The tables cover letters, matras and the common signs; rare conjunct
// glyphs fall through and are copied verbatim.

var twoCharGlyphs = map[string]string{
	// vowels
	"vk": "आ",
	"bZ": "ई",
	",s": "ऐ",

	// consonants written as two glyphs
	"[k": "ख",
	"?k": "घ",
	".k": "ण",
	"Fk": "थ",
	"/k": "ध",
	"Hk": "भ",
	"'k": "श",
	"\"k": "ष",
	"{k": "क्ष",
	"=k": "त्र",
	"Ùk": "त्त",
	"Dr": "क्त",

	// matra combinations
	"ks": "ो",
	"kS": "ौ",
}

var oneCharGlyphs = map[string]string{
	// independent vowels
	"v": "अ",
	"b": "इ",
	"m": "उ",
	"Å": "ऊ",
	",": "ए",
	"_": "ऋ",

	// consonants
	"d": "क",
	"x": "ग",
	"M": "ड",
	"p": "च",
	"N": "छ",
	"t": "ज",
	">": "झ",
	"V": "ट",
	"B": "ठ",
	"<": "ढ",
	"r": "त",
	"n": "द",
	"u": "न",
	"i": "प",
	"Q": "फ",
	"c": "ब",
	"e": "म",
	";": "य",
	"j": "र",
	"y": "ल",
	"o": "व",
	"l": "स",
	"g": "ह",
	"K": "ज्ञ",
	"J": "श्र",
	"=": "त्र",

	// matras and signs
	"k": "ा",
	"h": "ी",
	"q": "ु",
	"w": "ू",
	"`": "ृ",
	"s": "े",
	"S": "ै",
	"a": "ं",
	"¡": "ँ",
	"%": "ः",
	"~": "्", // ्  (halant)
	"+": "़", // ़  (nukta)
	"Z": "र्", // reph र्
	"A": "।", // ।  danda
	"·": "ऽ",
	"^": "‘",
	"*": "’",
}
