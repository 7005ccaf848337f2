package ngram

import "github.com/prometheus/client_golang/prometheus"

var (
	lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ngram",
			Name:      "lookups_total",
			Help:      "N-gram lookups, by arity and result (hit, miss, rejected, corrupt).",
		},
		[]string{"arity", "result"})

	skippedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ngram",
			Name:      "build_skipped_records_total",
			Help:      "Input records rejected while building, by arity.",
		},
		[]string{"arity"})

	builds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ngram",
			Name:      "builds_total",
			Help:      "Finished builds, by builder (memory, streaming) and result.",
		},
		[]string{"builder", "result"})

	lastBuildSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ngram",
			Name:      "last_build_duration_seconds",
			Help:      "Wall-clock duration of the last successful build.",
		},
		[]string{"builder"})
)

const (
	resultHit = iota
	resultMiss
	resultRejected
	resultCorrupt
)

var resultNames = [...]string{"hit", "miss", "rejected", "corrupt"}

// lookupCounters caches the lookups children, indexed by Arity-1 and result.
var lookupCounters [3][len(resultNames)]prometheus.Counter

func lookupResult(a Arity, result int) {
	lookupCounters[a-1][result].Inc()
}

func init() {
	for _, a := range arities {
		for result, name := range resultNames {
			lookupCounters[a-1][result] = lookups.WithLabelValues(a.String(), name)
		}
	}
	prometheus.MustRegister(lookups)
	prometheus.MustRegister(skippedRecords)
	prometheus.MustRegister(builds)
	prometheus.MustRegister(lastBuildSeconds)
}

func recordBuild(builder string, stats *BuildStats, err error) {
	if err != nil {
		builds.WithLabelValues(builder, "error").Inc()
		return
	}
	builds.WithLabelValues(builder, "ok").Inc()
	lastBuildSeconds.WithLabelValues(builder).Set(stats.Duration.Seconds())
	for _, a := range arities {
		if n := stats.Skipped[a-1]; n > 0 {
			skippedRecords.WithLabelValues(a.String()).Add(float64(n))
		}
	}
}
