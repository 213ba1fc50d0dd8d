// Package download implements the streaming download pipeline: invoking
// the retry engine with Stream: true, writing the response body to a
// temp file in fixed-size chunks, post-processing (BOM strip, optional
// gzip rehydration), then re-opening the file for structured iteration
// as either a whole-document JSON decode or a row-by-row CSV read.
// Ported end to end from requests_fortified_download.py.
package download

import (
	"time"

	"github.com/fortified-go/fortifiedhttp/pkg/engine"
	"github.com/fortified-go/fortifiedhttp/pkg/retry"
)

// JobShape is a sealed interface over the two download shapes §3 names:
// CSVRows and JSONWhole.
type JobShape interface{ isJobShape() }

// CSVRows configures the CSV read path: delimiter, header handling, and
// the SkipLastRow lookahead-buffer behavior from support/response/csv.py's
// csv_skip_last_row.
type CSVRows struct {
	Delimiter      string
	HeaderOverride []string
	ReadFirstRow   bool
	SkipFirstRow   bool
	SkipLastRow    bool

	// EncodingRead names an x/text encoding (see bom.DecoderFor) used to
	// transcode the file before CSV parsing. Empty means UTF-8 as-is.
	EncodingRead string

	// EncodingWrite names an x/text encoding (see bom.EncoderFor) the
	// downloaded body is transcoded to before it's persisted to disk.
	// Empty means the body is written in binary mode, untranslated.
	EncodingWrite string
}

func (CSVRows) isJobShape() {}

// JSONWhole configures the JSON read path: the whole file is decoded as
// one document, no streaming.
type JSONWhole struct {
	// EncodingWrite names an x/text encoding (see bom.EncoderFor) the
	// downloaded body is transcoded to before it's persisted to disk.
	// Empty means the body is written in binary mode, untranslated.
	EncodingWrite string
}

func (JSONWhole) isJobShape() {}

// Job describes one download: the request to issue, the per-attempt
// retry configuration for the underlying engine.Do call, the shape of
// the expected body, and where to stage it on disk.
type Job struct {
	Spec  engine.RequestSpec
	Retry retry.Config
	Shape JobShape

	// TempDir is created if missing. TempName defaults to a ulid when
	// empty, per §5's "two concurrent downloads MUST use distinct
	// TempName" rule.
	TempDir  string
	TempName string
}

// Default delimiter when CSVRows.Delimiter is empty.
const DefaultCSVDelimiter = ","

// csvRetryTries/csvRetryDelay are the CSV-path retry envelope from
// §4.7/§9: 60 tries, fixed 10s delay, deliberately not sharing pkg/retry
// — this loop absorbs mid-stream body corruption the engine's per-request
// retry never sees because headers were already ACCEPTed.
const (
	csvRetryTries = 60
	csvRetryDelay = 10 * time.Second
)
