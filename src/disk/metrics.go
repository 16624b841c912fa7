package disk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	poolHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pagedb",
		Subsystem: "buffer_pool",
		Name:      "hits_total",
		Help:      "FetchPage calls served from a resident frame.",
	})
	poolMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pagedb",
		Subsystem: "buffer_pool",
		Name:      "misses_total",
		Help:      "FetchPage calls that had to go to the block device.",
	})
	poolEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pagedb",
		Subsystem: "buffer_pool",
		Name:      "evictions_total",
		Help:      "Frames reclaimed through the replacer.",
	})
	poolFlushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pagedb",
		Subsystem: "buffer_pool",
		Name:      "flushes_total",
		Help:      "Page buffers written back to the block device.",
	})
)
