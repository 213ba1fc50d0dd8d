// Package bom detects and strips byte-order-mark and pseudo-BOM signatures
// from the head of a stream, and offers text decoders for the charsets it
// recognizes.
package bom

import (
	"bytes"
	"io"
	"os"
)

// Result is the outcome of a signature match against a stream's header.
type Result struct {
	Encoding string
	Length   int
}

type signature struct {
	bytes    []byte
	encoding string
}

// signatures is matched in order: the first entry whose bytes are a
// prefix of the header wins. Several of the code-page pseudo-BOM
// sequences are byte-for-byte identical (cp1252, cp1254 and cp1258 all
// share the same three-byte-pair sequence); this duplication is preserved
// intentionally so cp1252 always shadows cp1254/cp1258, matching the
// upstream table this was ported from.
var signatures = []signature{
	{[]byte{0xc4, 0x8f, 0xc2, 0xbb, 0xc5, 0xbc}, "cp1250"},
	{[]byte{0xd0, 0xbf, 0xc2, 0xbb, 0xd1, 0x97}, "cp1251"},
	{[]byte{0xc3, 0xaf, 0xc2, 0xbb, 0xc2, 0xbf}, "cp1252"},
	{[]byte{0xce, 0xbf, 0xc2, 0xbb, 0xce, 0x8f}, "cp1253"},
	{[]byte{0xc3, 0xaf, 0xc2, 0xbb, 0xc2, 0xbf}, "cp1254"},
	{[]byte{0xd7, 0x9f, 0xc2, 0xbb, 0xc2, 0xbf}, "cp1255"},
	{[]byte{0xc3, 0xaf, 0xc2, 0xbb, 0xd8, 0x9f}, "cp1256"},
	{[]byte{0xc4, 0xbc, 0xc2, 0xbb, 0xc3, 0xa6}, "cp1257"},
	{[]byte{0xc3, 0xaf, 0xc2, 0xbb, 0xc2, 0xbf}, "cp1258"},
	{[]byte{0x00, 0x00, 0xfe, 0xff}, "UTF-32BE"},
	{[]byte{0xff, 0xfe, 0x00, 0x00}, "UTF-32LE"},
	{[]byte{0x50, 0x4b, 0x03, 0x04}, "pkzip"},
	{[]byte{0xef, 0xbb, 0xbf}, "UTF-8"},
	{[]byte{0xfe, 0xff}, "UTF-16BE"},
	{[]byte{0xff, 0xfe}, "UTF-16LE"},
	{[]byte{0x1f, 0x8b}, "gzip"},
	{[]byte{0x42, 0x5a}, "bzip"},
}

// headerSize is the number of leading bytes inspected, enough to cover
// the longest signature (the six-byte code-page pseudo-BOMs).
const headerSize = 6

// match finds the first signature (in table order) whose bytes prefix
// header, falling back to ("ANSI", 0) when nothing matches.
func match(header []byte) Result {
	for _, sig := range signatures {
		if bytes.HasPrefix(header, sig.bytes) {
			return Result{Encoding: sig.encoding, Length: len(sig.bytes)}
		}
	}
	return Result{Encoding: "ANSI", Length: 0}
}

// Detect reads up to the header size from r and returns the matched
// signature. r need not be seekable.
func Detect(r io.Reader) (Result, error) {
	header := make([]byte, headerSize)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Result{}, err
	}
	return match(header[:n]), nil
}

// DetectFile opens path and detects its BOM without consuming the file
// for any other purpose.
func DetectFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return Detect(f)
}

// RemoveBOM copies src to dst with any detected signature stripped from
// the front. When src has no recognized signature, dst is never created
// and the zero-length Result is returned with Length 0 — callers must
// check Result.Length before assuming dst exists.
func RemoveBOM(src, dst string) (Result, error) {
	in, err := os.Open(src)
	if err != nil {
		return Result{}, err
	}
	defer in.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(in, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Result{}, err
	}
	res := match(header[:n])

	if res.Length == 0 {
		return res, nil
	}

	if _, err := in.Seek(int64(res.Length), io.SeekStart); err != nil {
		return Result{}, err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return Result{}, err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return Result{}, err
	}
	return res, nil
}
