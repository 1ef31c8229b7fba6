package pathfind

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultDirect = "direct"
	resultFound  = "found"
	resultNoPath = "no_path"
	resultCapped = "capped"
)

var (
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "navgraph",
		Name:      "path_search_total",
		Help:      "Path searches by result",
	}, []string{"result"})

	searchIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "navgraph",
		Name:      "path_search_iterations",
		Help:      "Nodes popped per graph search",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 14), // 1 to 8192
	})
)

func observeSearch(result string, iterations int) {
	searchTotal.WithLabelValues(result).Inc()
	if result != resultDirect {
		searchIterations.Observe(float64(iterations))
	}
}
