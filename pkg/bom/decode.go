package bom

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// decoders maps the signature names this package detects onto an
// x/text encoding.Encoding, for callers that need to transcode a body
// rather than just strip its leading bytes. Charsets with no natural
// text encoding (pkzip, gzip, bzip, ANSI) are absent.
var decoders = map[string]encoding.Encoding{
	"cp1250":   charmap.Windows1250,
	"cp1251":   charmap.Windows1251,
	"cp1252":   charmap.Windows1252,
	"cp1253":   charmap.Windows1253,
	"cp1254":   charmap.Windows1254,
	"cp1255":   charmap.Windows1255,
	"cp1256":   charmap.Windows1256,
	"cp1257":   charmap.Windows1257,
	"cp1258":   charmap.Windows1258,
	"UTF-8":    unicode.UTF8,
	"UTF-16BE": unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM),
	"UTF-16LE": unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM),
}

// DecoderFor returns the text decoder registered for the named encoding,
// if one exists.
func DecoderFor(name string) (encoding.Encoding, bool) {
	dec, ok := decoders[name]
	return dec, ok
}

// EncoderFor returns the text encoder registered for the named encoding,
// if one exists, for transcoding a downloaded body to DownloadJob's
// optional write encoding (§3) before it's persisted to disk.
func EncoderFor(name string) (encoding.Encoding, bool) {
	enc, ok := decoders[name]
	return enc, ok
}
