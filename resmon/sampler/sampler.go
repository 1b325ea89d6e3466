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

// Package sampler holds the fixed set of host-resource samplers a resource
// monitor client can run, selected by the server-sent identifier rather
// than by loaded class bytes (spec §9 redesign note carried over to the
// resource-monitor variant of the client).
package sampler

import (
	"fmt"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/net"
)

// Sampler produces one numeric reading per call, suitable for feeding
// directly into a stattracker.Tracker.
type Sampler func() (float64, error)

// ByName resolves one of the fixed builtin samplers. ok is false for an
// unrecognized identifier, which the caller should answer the same way a
// ClassTransferRequest answers an unknown job class: "not available".
func ByName(name string) (Sampler, bool) {
	switch name {
	case "cpu.percent":
		return cpuPercent, true
	case "memory.usedPercent":
		return memUsedPercent, true
	case "disk.usedPercent":
		return diskUsedPercent, true
	case "network.bytesSent":
		return netBytesSent, true
	case "network.bytesRecv":
		return netBytesRecv, true
	default:
		return nil, false
	}
}

// Names lists every registered sampler identifier.
func Names() []string {
	return []string{
		"cpu.percent",
		"memory.usedPercent",
		"disk.usedPercent",
		"network.bytesSent",
		"network.bytesRecv",
	}
}

func cpuPercent() (float64, error) {
	pcts, err := cpu.Percent(0, false)
	if err != nil {
		return 0, fmt.Errorf("sampler: cpu.percent: %w", err)
	}
	if len(pcts) == 0 {
		return 0, nil
	}
	return pcts[0], nil
}

func memUsedPercent() (float64, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("sampler: memory.usedPercent: %w", err)
	}
	return v.UsedPercent, nil
}

func diskUsedPercent() (float64, error) {
	u, err := disk.Usage("/")
	if err != nil {
		return 0, fmt.Errorf("sampler: disk.usedPercent: %w", err)
	}
	return u.UsedPercent, nil
}

func netCounters() (net.IOCountersStat, error) {
	stats, err := net.IOCounters(false)
	if err != nil {
		return net.IOCountersStat{}, fmt.Errorf("sampler: network counters: %w", err)
	}
	if len(stats) == 0 {
		return net.IOCountersStat{}, nil
	}
	return stats[0], nil
}

func netBytesSent() (float64, error) {
	c, err := netCounters()
	if err != nil {
		return 0, err
	}
	return float64(c.BytesSent), nil
}

func netBytesRecv() (float64, error) {
	c, err := netCounters()
	if err != nil {
		return 0, err
	}
	return float64(c.BytesRecv), nil
}
