/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package telemetry exposes the runtime's own Prometheus gauges: worker
// capacity for the supervisor, and the last sampled value for every active
// resource-monitor sampler.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SupervisorActiveWorkers tracks how many client processes a
	// supervisor currently has spawned.
	SupervisorActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "slamd",
		Subsystem: "supervisor",
		Name:      "active_workers",
		Help:      "Number of worker client processes currently spawned by this supervisor.",
	})

	// SupervisorMaxClients mirrors the configured capacity ceiling.
	SupervisorMaxClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "slamd",
		Subsystem: "supervisor",
		Name:      "max_clients",
		Help:      "Configured maximum number of worker client processes.",
	})

	// ResmonLastSample reports the most recent value of each named
	// resource-monitor sampler.
	ResmonLastSample = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "slamd",
		Subsystem: "resmon",
		Name:      "last_sample",
		Help:      "Most recent value produced by a resource-monitor sampler.",
	}, []string{"sampler"})

	// JobActiveThreads reports how many threads a running job currently
	// has live.
	JobActiveThreads = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "slamd",
		Subsystem: "job",
		Name:      "active_threads",
		Help:      "Number of currently running threads for a job.",
	}, []string{"job_id"})
)
