package bom

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectSignatures(t *testing.T) {
	tests := []struct {
		name     string
		header   []byte
		wantEnc  string
		wantLen  int
	}{
		{"utf8", []byte{0xef, 0xbb, 0xbf, 'h', 'i'}, "UTF-8", 3},
		{"utf16be", []byte{0xfe, 0xff, 'h', 'i'}, "UTF-16BE", 2},
		{"utf16le", []byte{0xff, 0xfe, 'h', 'i'}, "UTF-16LE", 2},
		{"gzip", []byte{0x1f, 0x8b, 0x08, 0x00}, "gzip", 2},
		{"bzip", []byte{0x42, 0x5a, 'h'}, "bzip", 2},
		{"pkzip", []byte{0x50, 0x4b, 0x03, 0x04}, "pkzip", 4},
		{"cp1252", []byte{0xc3, 0xaf, 0xc2, 0xbb, 0xc2, 0xbf}, "cp1252", 6},
		{"plain ansi", []byte("hello "), "ANSI", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Detect(bytes.NewReader(tt.header))
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if res.Encoding != tt.wantEnc || res.Length != tt.wantLen {
				t.Errorf("Detect() = %+v, want {%s %d}", res, tt.wantEnc, tt.wantLen)
			}
		})
	}
}

func TestCP1252ShadowsCP1254(t *testing.T) {
	// cp1252, cp1254 and cp1258 share an identical signature; table order
	// means cp1252 must always win.
	res, err := Detect(bytes.NewReader([]byte{0xc3, 0xaf, 0xc2, 0xbb, 0xc2, 0xbf}))
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if res.Encoding != "cp1252" {
		t.Errorf("Encoding = %q, want cp1252", res.Encoding)
	}
}

func TestRemoveBOMStripsSignature(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.csv")
	dst := filepath.Join(dir, "out.csv")

	body := append([]byte{0xef, 0xbb, 0xbf}, []byte("a,b\n1,2\n")...)
	if err := os.WriteFile(src, body, 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := RemoveBOM(src, dst)
	if err != nil {
		t.Fatalf("RemoveBOM() error = %v", err)
	}
	if res.Encoding != "UTF-8" || res.Length != 3 {
		t.Fatalf("RemoveBOM() result = %+v", res)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Errorf("stripped content = %q", got)
	}
}

func TestRemoveBOMNoSignatureLeavesDstAbsent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.csv")
	dst := filepath.Join(dir, "out.csv")

	if err := os.WriteFile(src, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := RemoveBOM(src, dst)
	if err != nil {
		t.Fatalf("RemoveBOM() error = %v", err)
	}
	if res.Length != 0 {
		t.Errorf("Length = %d, want 0", res.Length)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Errorf("expected dst to not exist, stat err = %v", err)
	}
}

func TestDecoderForKnownAndUnknown(t *testing.T) {
	if _, ok := DecoderFor("cp1252"); !ok {
		t.Errorf("expected cp1252 decoder to be registered")
	}
	if _, ok := DecoderFor("gzip"); ok {
		t.Errorf("gzip should not have a text decoder")
	}
}

func TestEncoderForKnownAndUnknown(t *testing.T) {
	if _, ok := EncoderFor("cp1252"); !ok {
		t.Errorf("expected cp1252 encoder to be registered")
	}
	if _, ok := EncoderFor("gzip"); ok {
		t.Errorf("gzip should not have a text encoder")
	}
}
