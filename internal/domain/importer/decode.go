package importer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/encoding/unicode"
)

// Spreadsheet exports are not reliably UTF-8: legacy tools on the source
// systems emit UTF-16 with or without a BOM, and large files arrive
// gzip-compressed. DecodeText normalizes raw upload bytes to a UTF-8 string
// before any row parsing happens.
func DecodeText(raw []byte) (string, error) {
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return "", fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		inflated, err := io.ReadAll(zr)
		if err != nil {
			return "", fmt.Errorf("inflate upload: %w", err)
		}
		return DecodeText(inflated)
	}

	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return string(raw[3:]), nil
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return decodeUTF16(raw, unicode.LittleEndian)
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return decodeUTF16(raw, unicode.BigEndian)
	}

	// No BOM. ASCII-heavy UTF-16 text is roughly half null bytes; genuine
	// UTF-8 contains none. Favor UTF-16LE, the common Windows export.
	if nulls := bytes.Count(raw, []byte{0}); len(raw) > 0 && nulls*4 > len(raw) {
		return decodeUTF16(raw, unicode.LittleEndian)
	}

	return string(raw), nil
}

func decodeUTF16(raw []byte, endianness unicode.Endianness) (string, error) {
	dec := unicode.UTF16(endianness, unicode.ExpectBOM).NewDecoder()
	if len(raw) < 2 || (raw[0] != 0xFF && raw[0] != 0xFE) {
		dec = unicode.UTF16(endianness, unicode.IgnoreBOM).NewDecoder()
	}
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode utf-16: %w", err)
	}
	return string(out), nil
}
