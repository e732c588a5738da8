// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package riegelimetrics holds optional Prometheus instrumentation for the
// writer stack. Nothing in this module registers these metrics implicitly;
// a caller opts in via RegisterMonitoring.
package riegelimetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	bytesPushed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "riegeli_writer_bytes_pushed",
		Help: "Count of uncompressed bytes pushed into a writer stack.",
	})

	bytesCompressed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "riegeli_writer_bytes_compressed",
		Help: "Count of bytes written to a compressor's inner writer after compression.",
	})

	flushes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "riegeli_writer_flushes",
		Help: "Count of Flush calls by scope.",
	}, []string{"scope"})

	writerErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "riegeli_writer_errors",
		Help: "Count of writer failures by status code.",
	}, []string{"code"})

	limitRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "riegeli_limiting_writer_rejections",
		Help: "Count of writes rejected by a limiting writer for exceeding its position cap.",
	})
)

// RegisterMonitoring registers every metric in this package. Call once at
// process startup if metrics are wanted; nothing here is auto-registered.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		bytesPushed,
		bytesCompressed,
		flushes,
		writerErrors,
		limitRejections,
	)
}

// ObserveBytesPushed records n uncompressed bytes accepted by a writer.
func ObserveBytesPushed(n int) {
	if n > 0 {
		bytesPushed.Add(float64(n))
	}
}

// ObserveBytesCompressed records n bytes written to a compressor's inner
// writer after compression.
func ObserveBytesCompressed(n int) {
	if n > 0 {
		bytesCompressed.Add(float64(n))
	}
}

// ObserveFlush records a Flush call for the given scope name ("object",
// "process", "machine").
func ObserveFlush(scope string) {
	flushes.WithLabelValues(scope).Inc()
}

// ObserveError records a writer failure by its status code's string form.
func ObserveError(code string) {
	writerErrors.WithLabelValues(code).Inc()
}

// ObserveLimitRejection records one write rejected by a limiting writer.
func ObserveLimitRejection() {
	limitRejections.Inc()
}
