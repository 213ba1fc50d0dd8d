package download

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fortified-go/fortifiedhttp/pkg/bom"
	"github.com/fortified-go/fortifiedhttp/pkg/engine"
	"github.com/fortified-go/fortifiedhttp/pkg/ferrors"
	"github.com/fortified-go/fortifiedhttp/pkg/retry"
	"github.com/oklog/ulid/v2"
)

// chunkSize is the fixed write-chunk size from §4.7 step 3.
const chunkSize = 8192

// tempPath resolves job's staging file path, generating a ulid-based
// name when TempName is empty (§5's distinct-name requirement for
// concurrent downloads).
func tempPath(job Job) (string, error) {
	if err := os.MkdirAll(job.TempDir, 0o755); err != nil {
		return "", ferrors.Module(ferrors.CodeSoftware, "failed to create temp directory", ferrors.WithCause(err))
	}
	name := job.TempName
	if name == "" {
		name = ulid.Make().String()
	}
	path := filepath.Join(job.TempDir, name)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", ferrors.Module(ferrors.CodeSoftware, "failed to unlink existing temp file", ferrors.WithCause(err))
	}
	return path, nil
}

// writeResult is what one body-write attempt produces.
type writeResult struct {
	path           string
	chunkTotalSum  int64 // adds chunkSize per read, so a short (e.g. trailing partial) read over-reports by chunkSize minus the bytes read; preserved intentionally, see below
	bytesWritten   int64
	retryable      bool // true when the failure is a mid-stream corruption the caller should sleep-and-retry on
}

// writeBodyOnce streams resp.Body to path in chunkSize reads, flushing
// and fsyncing after every write. chunkTotalSum is incremented by the
// requested chunk size rather than the bytes a given Read call actually
// returned — this over-reports on the final, partial chunk. That is a
// direct port of download_csv's chunk_total_sum += CHUNK_SIZE and is
// kept verbatim rather than "fixed": callers that compare chunkTotalSum
// against the file's real size (os.Stat) should expect it to run a
// little high.
//
// When encodingWrite names a registered bom.EncoderFor encoding, the
// file is opened in text mode: each chunk is transcoded through that
// encoder before being written, per §4.7 step 3's "text mode when an
// explicit write-encoding was given". Binary mode (the default, empty
// encodingWrite) writes chunks through untranslated.
func writeBodyOnce(ctx context.Context, resp *http.Response, path string, encodingWrite string) (writeResult, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return writeResult{}, ferrors.Module(ferrors.CodeSoftware, "failed to open temp file for write", ferrors.WithCause(err))
	}
	defer f.Close()

	var dst io.Writer = f
	if encodingWrite != "" {
		if enc, ok := bom.EncoderFor(encodingWrite); ok {
			dst = enc.NewEncoder().Writer(f)
		}
	}

	buf := make([]byte, chunkSize)
	var result writeResult
	result.path = path

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return result, ferrors.Module(ferrors.CodeSoftware, "failed to write chunk", ferrors.WithCause(werr))
			}
			if serr := f.Sync(); serr != nil {
				return result, ferrors.Module(ferrors.CodeSoftware, "failed to fsync chunk", ferrors.WithCause(serr))
			}
			result.bytesWritten += int64(n)
			result.chunkTotalSum += chunkSize
		}

		if readErr != nil {
			if readErr == io.EOF {
				return result, nil
			}
			if isChunkedEncodingError(readErr) || isIncompleteRead(readErr) {
				result.retryable = true
				return result, nil
			}
			return result, ferrors.Module(ferrors.CodeSoftware, "failed reading response body", ferrors.WithCause(readErr))
		}
	}
}

// isChunkedEncodingError matches the Go shapes of the original's
// ChunkedEncodingError: a truncated chunked transfer surfaces as
// io.ErrUnexpectedEOF, or (through net/http's internal wrapping) a
// message containing "unexpected EOF" or "malformed chunked".
func isChunkedEncodingError(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "unexpected EOF") || strings.Contains(msg, "malformed chunked")
}

// isIncompleteRead matches the original's IncompleteRead: the server
// advertised Content-Length but closed the connection early.
func isIncompleteRead(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unexpected EOF") || strings.Contains(msg, "connection reset")
}

// invokeStream runs eng.Do with Stream: true set on the request, returning
// the raw, unread response for writeBodyOnce to consume.
func invokeStream(ctx context.Context, eng *engine.Engine, spec engine.RequestSpec, cfg retry.Config, policy retry.Policy) (*http.Response, error) {
	spec.Stream = true
	return eng.Do(ctx, spec, cfg, policy)
}
