package metrics

import "time"

// ResultLabel enumerates fetch result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultNotFound ResultLabel = "not_found"
)

// BuildOutcomeLabel enumerates final build outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// FetchKind distinguishes per-file queries from common-content queries.
type FetchKind string

const (
	FetchKindFile   FetchKind = "file"
	FetchKindCommon FetchKind = "common"
)

// Recorder defines observability hooks for binding runs.
type Recorder interface {
	ObserveFetchDuration(kind FetchKind, d time.Duration)
	IncFetchResult(kind FetchKind, result ResultLabel)
	IncFetchRetry()
	IncCacheLookup(hit bool)
	AddSynthesizedFiles(n int)
	IncFilenameCollision()
	IncUnresolvedFilename()
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFetchDuration(FetchKind, time.Duration) {}
func (NoopRecorder) IncFetchResult(FetchKind, ResultLabel)         {}
func (NoopRecorder) IncFetchRetry()                                {}
func (NoopRecorder) IncCacheLookup(bool)                           {}
func (NoopRecorder) AddSynthesizedFiles(int)                       {}
func (NoopRecorder) IncFilenameCollision()                         {}
func (NoopRecorder) IncUnresolvedFilename()                        {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)            {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)             {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
