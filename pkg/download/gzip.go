package download

import (
	"io"
	"os"

	"github.com/fortified-go/fortifiedhttp/pkg/ferrors"
	"github.com/klauspost/compress/gzip"
)

// ungzipInPlace renames path to path+".gz", decompresses it back onto
// path, and removes the renamed copy — §4.7 step 5's gzip rehydration,
// run whenever bom.DetectFile recognizes the gzip signature on a
// downloaded body.
func ungzipInPlace(path string) error {
	gzPath := path + ".gz"
	if err := os.Rename(path, gzPath); err != nil {
		return ferrors.Module(ferrors.CodeSoftware, "failed to stage gzip file for decompression", ferrors.WithCause(err))
	}

	in, err := os.Open(gzPath)
	if err != nil {
		return ferrors.Module(ferrors.CodeSoftware, "failed to open staged gzip file", ferrors.WithCause(err))
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return ferrors.Module(ferrors.CodeSoftware, "failed to open gzip reader", ferrors.WithCause(err))
	}
	defer gz.Close()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return ferrors.Module(ferrors.CodeSoftware, "failed to create decompressed output file", ferrors.WithCause(err))
	}
	defer out.Close()

	if _, err := io.Copy(out, gz); err != nil {
		return ferrors.Module(ferrors.CodeSoftware, "failed to decompress gzip file", ferrors.WithCause(err))
	}

	if err := os.Remove(gzPath); err != nil && !os.IsNotExist(err) {
		return ferrors.Module(ferrors.CodeSoftware, "failed to remove staged gzip file", ferrors.WithCause(err))
	}
	return nil
}
