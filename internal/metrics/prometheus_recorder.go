package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "contentbinder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	fetchDuration      *prom.HistogramVec
	fetchResults       *prom.CounterVec
	fetchRetries       prom.Counter
	cacheLookups       *prom.CounterVec
	synthesizedFiles   prom.Counter
	filenameCollisions prom.Counter
	unresolvedNames    prom.Counter
	buildDuration      prom.Histogram
	buildOutcome       *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of content API queries",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
		fetchResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_results_total",
			Help:      "Content API query results by kind and outcome",
		}, []string{"kind", "result"}),
		fetchRetries: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Content API requests retried after a transient failure",
		}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_lookups_total",
			Help:      "Query cache lookups by result",
		}, []string{"result"}),
		synthesizedFiles: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "synthesized_files_total",
			Help:      "Files synthesized from entries",
		}),
		filenameCollisions: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "filename_collisions_total",
			Help:      "Synthesized files that overwrote an existing file name",
		}),
		unresolvedNames: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_filenames_total",
			Help:      "Filename patterns that rendered the not-available sentinel",
		}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total binding run duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Binding runs by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		pr.fetchDuration, pr.fetchResults, pr.fetchRetries, pr.cacheLookups,
		pr.synthesizedFiles, pr.filenameCollisions, pr.unresolvedNames,
		pr.buildDuration, pr.buildOutcome,
	)
	return pr
}

func (p *PrometheusRecorder) ObserveFetchDuration(kind FetchKind, d time.Duration) {
	if p == nil {
		return
	}
	p.fetchDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFetchResult(kind FetchKind, result ResultLabel) {
	if p == nil {
		return
	}
	p.fetchResults.WithLabelValues(string(kind), string(result)).Inc()
}

func (p *PrometheusRecorder) IncFetchRetry() {
	if p == nil {
		return
	}
	p.fetchRetries.Inc()
}

func (p *PrometheusRecorder) IncCacheLookup(hit bool) {
	if p == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheLookups.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) AddSynthesizedFiles(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.synthesizedFiles.Add(float64(n))
}

func (p *PrometheusRecorder) IncFilenameCollision() {
	if p == nil {
		return
	}
	p.filenameCollisions.Inc()
}

func (p *PrometheusRecorder) IncUnresolvedFilename() {
	if p == nil {
		return
	}
	p.unresolvedNames.Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}
