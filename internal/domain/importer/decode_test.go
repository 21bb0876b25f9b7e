package importer

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utf16leBytes(s string, bom bool) []byte {
	var buf bytes.Buffer
	if bom {
		buf.Write([]byte{0xFF, 0xFE})
	}
	for _, r := range s {
		var u [2]byte
		binary.LittleEndian.PutUint16(u[:], uint16(r))
		buf.Write(u[:])
	}
	return buf.Bytes()
}

func utf16beBytes(s string, bom bool) []byte {
	var buf bytes.Buffer
	if bom {
		buf.Write([]byte{0xFE, 0xFF})
	}
	for _, r := range s {
		var u [2]byte
		binary.BigEndian.PutUint16(u[:], uint16(r))
		buf.Write(u[:])
	}
	return buf.Bytes()
}

func gzipBytes(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeText_PlainUTF8(t *testing.T) {
	got, err := DecodeText([]byte("title,author\nGodan,Premchand\n"))
	require.NoError(t, err)
	assert.Equal(t, "title,author\nGodan,Premchand\n", got)
}

func TestDecodeText_UTF8BOMStripped(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("title,author")...)
	got, err := DecodeText(raw)
	require.NoError(t, err)
	assert.Equal(t, "title,author", got)
}

func TestDecodeText_UTF16LEWithBOM(t *testing.T) {
	got, err := DecodeText(utf16leBytes("title,author", true))
	require.NoError(t, err)
	assert.Equal(t, "title,author", got)
}

func TestDecodeText_UTF16BEWithBOM(t *testing.T) {
	got, err := DecodeText(utf16beBytes("title,author", true))
	require.NoError(t, err)
	assert.Equal(t, "title,author", got)
}

func TestDecodeText_BOMlessUTF16ByNullDensity(t *testing.T) {
	// ASCII-heavy UTF-16LE without a BOM: every other byte is null.
	got, err := DecodeText(utf16leBytes("title,author\nGodan,Premchand\n", false))
	require.NoError(t, err)
	assert.Equal(t, "title,author\nGodan,Premchand\n", got)
}

func TestDecodeText_GzipWrapped(t *testing.T) {
	raw := gzipBytes(t, []byte("title,author\nGodan,Premchand\n"))
	got, err := DecodeText(raw)
	require.NoError(t, err)
	assert.Equal(t, "title,author\nGodan,Premchand\n", got)
}

func TestDecodeText_GzipWrappedUTF16(t *testing.T) {
	// Compression and encoding stack: gunzip first, then decode the BOM.
	raw := gzipBytes(t, utf16leBytes("title,author", true))
	got, err := DecodeText(raw)
	require.NoError(t, err)
	assert.Equal(t, "title,author", got)
}

func TestDecodeText_Empty(t *testing.T) {
	got, err := DecodeText(nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}
