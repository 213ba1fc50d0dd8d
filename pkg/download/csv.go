package download

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fortified-go/fortifiedhttp/pkg/bom"
	"github.com/fortified-go/fortifiedhttp/pkg/engine"
	"github.com/fortified-go/fortifiedhttp/pkg/ferrors"
	"github.com/fortified-go/fortifiedhttp/pkg/retry"
)

// CSVIterator streams dictionary-shaped rows from a downloaded CSV file.
// Close releases the underlying file handle.
type CSVIterator struct {
	file   *os.File
	reader *csv.Reader
	header []string

	skipLast bool
	buffered map[string]string
	hasBuf   bool
	done     bool
}

// Header returns the column names in file order (after HeaderOverride is
// applied, if set).
func (it *CSVIterator) Header() []string { return it.header }

// Close releases the file handle backing the iterator.
func (it *CSVIterator) Close() error { return it.file.Close() }

// Next returns the next row as a column-name-keyed map, or ok == false
// once rows are exhausted. When SkipLastRow was requested, the final row
// in the file is never yielded, per csv_skip_last_row's one-row
// lookahead.
func (it *CSVIterator) Next() (map[string]string, bool, error) {
	if it.done {
		return nil, false, nil
	}

	row, err := it.readRow()
	if err == io.EOF {
		it.done = true
		if it.skipLast {
			return nil, false, nil
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if !it.skipLast {
		return row, true, nil
	}

	if !it.hasBuf {
		it.buffered = row
		it.hasBuf = true
		return it.Next()
	}

	prev := it.buffered
	it.buffered = row
	return prev, true, nil
}

func (it *CSVIterator) readRow() (map[string]string, error) {
	fields, err := it.reader.Read()
	if err != nil {
		return nil, err
	}
	row := make(map[string]string, len(it.header))
	for i, name := range it.header {
		if i < len(fields) {
			row[name] = strings.Trim(fields[i], `"`)
		} else {
			row[name] = ""
		}
	}
	return row, nil
}

// CSV runs the full streaming-download pipeline for a CSVRows job:
// invoke the engine with Stream: true, write the body under the
// §4.7/§9 60-try/10s-delay envelope, post-process (BOM strip, optional
// gzip rehydration), and open a CSVIterator over the result.
func CSV(ctx context.Context, eng *engine.Engine, job Job) (*CSVIterator, error) {
	shape, ok := job.Shape.(CSVRows)
	if !ok {
		return nil, ferrors.Value("download.CSV requires a CSVRows job shape")
	}

	path, err := tempPath(job)
	if err != nil {
		return nil, err
	}

	if err := csvRetryLoop(ctx, eng, job, path); err != nil {
		return nil, err
	}

	resolvedPath, err := postProcess(path)
	if err != nil {
		return nil, err
	}

	return openCSV(resolvedPath, shape)
}

// csvRetryLoop is the CSV-path retry envelope described in §4.7/§9:
// bounded at 60 tries with a fixed 10-second delay, kept deliberately
// separate from pkg/retry since it reacts to mid-stream body corruption
// the engine's per-request retry loop never observes (the response
// headers were already ACCEPTed by the time this runs).
func csvRetryLoop(ctx context.Context, eng *engine.Engine, job Job, path string) error {
	var encodingWrite string
	if shape, ok := job.Shape.(CSVRows); ok {
		encodingWrite = shape.EncodingWrite
	}

	for attempt := 1; attempt <= csvRetryTries; attempt++ {
		resp, err := invokeStream(ctx, eng, job.Spec, job.Retry, defaultStreamPolicy())
		if err != nil {
			return err
		}

		result, werr := writeBodyOnce(ctx, resp, path, encodingWrite)
		resp.Body.Close()
		if werr != nil {
			return werr
		}
		if !result.retryable {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(csvRetryDelay):
		}
	}
	return ferrors.Module(ferrors.CodeRetryExhausted, "CSV download retry budget exhausted")
}

// defaultStreamPolicy disables response-level retries for the streaming
// invocation: the engine already returned a response once headers
// arrived, and mid-stream failures are handled by csvRetryLoop instead.
func defaultStreamPolicy() retry.Policy {
	return retry.DefaultPolicy()
}

// postProcess stats the downloaded file, detects its BOM/compression
// signature, and rehydrates a gzip body back onto the original path,
// matching §4.7 step 5.
func postProcess(path string) (string, error) {
	res, err := bom.DetectFile(path)
	if err != nil {
		return "", ferrors.Module(ferrors.CodeSoftware, "failed to detect BOM", ferrors.WithCause(err))
	}

	if res.Encoding == "gzip" {
		if err := ungzipInPlace(path); err != nil {
			return "", err
		}
	}

	return path, nil
}

func openCSV(path string, shape CSVRows) (*CSVIterator, error) {
	resolvedPath := path

	bomRes, err := bom.DetectFile(path)
	if err != nil {
		return nil, ferrors.Module(ferrors.CodeSoftware, "failed to detect BOM", ferrors.WithCause(err))
	}
	if bomRes.Length > 0 {
		strippedPath := path + "_wo_bom.csv"
		if _, err := bom.RemoveBOM(path, strippedPath); err != nil {
			return nil, ferrors.Module(ferrors.CodeSoftware, "failed to strip BOM", ferrors.WithCause(err))
		}
		resolvedPath = strippedPath
	}

	f, err := os.Open(resolvedPath)
	if err != nil {
		return nil, ferrors.Module(ferrors.CodeSoftware, "failed to open CSV file", ferrors.WithCause(err))
	}

	var body io.Reader = f
	if shape.EncodingRead != "" {
		if dec, ok := bom.DecoderFor(shape.EncodingRead); ok {
			body = dec.NewDecoder().Reader(f)
		}
	}
	bufReader := bufio.NewReader(body)

	if shape.ReadFirstRow {
		if _, err := readTrimmedLine(bufReader); err != nil {
			f.Close()
			return nil, ferrors.Module(ferrors.CodeUnexpectedValue, "failed to read report-name row", ferrors.WithCause(err))
		}
	} else if shape.SkipFirstRow {
		if _, err := readTrimmedLine(bufReader); err != nil {
			f.Close()
			return nil, ferrors.Module(ferrors.CodeUnexpectedValue, "failed to skip first row", ferrors.WithCause(err))
		}
	}

	headerLine, err := readTrimmedLine(bufReader)
	if err != nil {
		f.Close()
		return nil, ferrors.Module(ferrors.CodeUnexpectedValue, "failed to read CSV header", ferrors.WithCause(err))
	}

	delimiter := shape.Delimiter
	if delimiter == "" {
		delimiter = DefaultCSVDelimiter
	}

	header := shape.HeaderOverride
	if len(header) == 0 {
		header = splitTrim(headerLine, delimiter)
	}

	reader := csv.NewReader(bufReader)
	reader.Comma = rune(delimiter[0])
	reader.FieldsPerRecord = -1

	return &CSVIterator{
		file:     f,
		reader:   reader,
		header:   header,
		skipLast: shape.SkipLastRow,
	}, nil
}

// readTrimmedLine reads one line and strips its trailing newline plus any
// surrounding quotes, matching the original's strip('"\n') on the report
// name/header rows.
func readTrimmedLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.Trim(strings.TrimRight(line, "\r\n"), `"`), nil
}

func splitTrim(line, delimiter string) []string {
	parts := strings.Split(line, delimiter)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
