package download

import (
	"context"
	"encoding/json"
	"os"

	"github.com/fortified-go/fortifiedhttp/pkg/bom"
	"github.com/fortified-go/fortifiedhttp/pkg/engine"
	"github.com/fortified-go/fortifiedhttp/pkg/ferrors"
	"github.com/fortified-go/fortifiedhttp/pkg/validate"
)

// JSON runs the streaming-download pipeline for a JSONWhole job and
// decodes the resulting file into v. Unlike CSV's 60-try/10s envelope,
// a corrupted body here retries in place against job.Retry.Tries —
// matching request_json_download's in-loop "if not _tries: raise"
// rather than download_csv's early return-for-outer-retry shape.
func JSON(ctx context.Context, eng *engine.Engine, job Job, v any) error {
	shape, ok := job.Shape.(JSONWhole)
	if !ok {
		return ferrors.Value("download.JSON requires a JSONWhole job shape")
	}

	path, err := tempPath(job)
	if err != nil {
		return err
	}

	tries := job.Retry.Tries
	if tries <= 0 {
		tries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		resp, err := invokeStream(ctx, eng, job.Spec, job.Retry, defaultStreamPolicy())
		if err != nil {
			return err
		}

		result, werr := writeBodyOnce(ctx, resp, path, shape.EncodingWrite)
		resp.Body.Close()
		if werr != nil {
			return werr
		}
		if !result.retryable {
			lastErr = nil
			break
		}
		lastErr = ferrors.Module(ferrors.CodeRequest, "body write failed mid-stream, retrying")
	}
	if lastErr != nil {
		return lastErr
	}

	return decodeJSONFile(path, v)
}

func decodeJSONFile(path string, v any) error {
	res, err := bom.DetectFile(path)
	if err != nil {
		return ferrors.Module(ferrors.CodeSoftware, "failed to detect BOM", ferrors.WithCause(err))
	}
	if res.Encoding == "gzip" {
		if err := ungzipInPlace(path); err != nil {
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return ferrors.Module(ferrors.CodeSoftware, "failed to open downloaded JSON file", ferrors.WithCause(err))
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		body, _ := os.ReadFile(path)
		return validate.HandleJSONDecodeError(body, err)
	}
	return nil
}
