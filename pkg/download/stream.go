package download

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/fortified-go/fortifiedhttp/pkg/engine"
	"github.com/fortified-go/fortifiedhttp/pkg/ferrors"
	"github.com/fortified-go/fortifiedhttp/pkg/retry"
)

// Row is one parsed CSV data row, keyed by header column name.
type Row = map[string]string

// StreamCSV issues spec against engine and yields rows directly off the
// live response body, without staging to disk — a port of stream_csv.
// The header is taken from line one with the first bomLen bytes
// dropped. A parsed line producing fewer fields than the header is
// assumed to hold an embedded, quoted newline: it is buffered, its
// internal '\n'/'\r' bytes replaced with spaces, and re-parsed through
// encoding/csv exactly as the original does before re-invoking its own
// csv.reader. If the body ends (or a read fails) before the quoted field
// closes, iteration stops at that row; the returned iter.Seq carries no
// error, so the caller only sees a shorter sequence. A row that parses to
// more fields than the header keeps only the header's columns.
func StreamCSV(ctx context.Context, eng *engine.Engine, spec engine.RequestSpec, cfg retry.Config, delimiter string, bomLen int) (iter.Seq[Row], error) {
	if delimiter == "" {
		delimiter = DefaultCSVDelimiter
	}

	resp, err := invokeStream(ctx, eng, spec, cfg, defaultStreamPolicy())
	if err != nil {
		return nil, err
	}

	reader := bufio.NewReader(resp.Body)
	headerLine, err := readStreamLine(reader)
	if err != nil {
		resp.Body.Close()
		return nil, ferrors.Module(ferrors.CodeUnexpectedValue, "failed to read streamed CSV header", ferrors.WithCause(err))
	}
	if bomLen > 0 && len(headerLine) >= bomLen {
		headerLine = headerLine[bomLen:]
	}
	header := splitTrim(headerLine, delimiter)

	return streamRows(resp, reader, header, delimiter), nil
}

func streamRows(resp *http.Response, reader *bufio.Reader, header []string, delimiter string) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		defer resp.Body.Close()

		for {
			line, err := readStreamLine(reader)
			if err != nil {
				return
			}
			if line == "" {
				continue
			}

			fields, err := parseCSVLine(line, delimiter)
			if err != nil || len(fields) < len(header) {
				fields, err = continueQuotedLine(reader, line, delimiter, len(header))
				if err != nil {
					return
				}
			}

			row := make(Row, len(header))
			for i, name := range header {
				if i < len(fields) {
					row[name] = strings.Trim(fields[i], `"`)
				} else {
					row[name] = ""
				}
			}
			if !yield(row) {
				return
			}
		}
	}
}

// continueQuotedLine buffers additional lines, folding embedded newlines
// into spaces, until the re-parsed result has at least want fields or
// the stream ends.
func continueQuotedLine(reader *bufio.Reader, first string, delimiter string, want int) ([]string, error) {
	buffered := first
	for {
		fields, err := parseCSVLine(strings.NewReplacer("\n", " ", "\r", " ").Replace(buffered), delimiter)
		if err == nil && len(fields) >= want {
			return fields, nil
		}

		next, rerr := readStreamLine(reader)
		if rerr != nil {
			return nil, ferrors.Module(ferrors.CodeUnexpectedValue, "streamed CSV row has unmatched quoted field", ferrors.WithCause(rerr))
		}
		buffered += "\n" + next
	}
}

func parseCSVLine(line, delimiter string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = rune(delimiter[0])
	r.FieldsPerRecord = -1
	return r.Read()
}

func readStreamLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF && line == "" {
		return "", io.EOF
	}
	return strings.TrimRight(line, "\r\n"), nil
}
