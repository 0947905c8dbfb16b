// Package metrics counts parse, fetch and load outcomes in a Prometheus
// registry that commands can dump to a node_exporter textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mmwrtab"

// Result label values for FilesTotal.
const (
	ResultParsed = "parsed"
	ResultFailed = "failed"
)

// Recorder owns a private registry so tests and repeated runs never
// collide with the global default registry.
type Recorder struct {
	registry *prometheus.Registry

	FilesTotal    *prometheus.CounterVec
	FailuresTotal *prometheus.CounterVec
	FetchTotal    *prometheus.CounterVec
	CellsStored   prometheus.Counter
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		FilesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Bulletins processed, by result.",
		}, []string{"result"}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Bulletin parse failures, by error kind.",
		}, []string{"kind"}),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Requests made to the bulletin site, by request kind and status.",
		}, []string{"kind", "status"}),
		CellsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_stored_total",
			Help:      "Table cells written to the database.",
		}),
	}

	r.registry.MustRegister(r.FilesTotal, r.FailuresTotal, r.FetchTotal, r.CellsStored)
	return r
}

// ObserveParse records one parsed bulletin, or one failure of the given kind.
func (r *Recorder) ObserveParse(failureKind string) {
	if r == nil {
		return
	}
	if failureKind == "" {
		r.FilesTotal.WithLabelValues(ResultParsed).Inc()
		return
	}
	r.FilesTotal.WithLabelValues(ResultFailed).Inc()
	r.FailuresTotal.WithLabelValues(failureKind).Inc()
}

// ObserveFetch records one request to the bulletin site.
func (r *Recorder) ObserveFetch(kind string, status int) {
	if r == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = fmt.Sprintf("%d", status)
	}
	r.FetchTotal.WithLabelValues(kind, label).Inc()
}

// AddCells records cells written to the store.
func (r *Recorder) AddCells(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.CellsStored.Add(float64(n))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
