// Package memutil provides process memory usage snapshots for health
// reporting and startup diagnostics.
package memutil

import (
	"fmt"
	"runtime"
)

const oneMB = 1024 * 1024

// Usage is a point-in-time snapshot of process memory, MB-rounded for
// human-readable health responses.
type Usage struct {
	Alloc      string `json:"alloc"`
	TotalAlloc string `json:"totalAlloc"`
	Sys        string `json:"sys"`
	HeapInuse  string `json:"heapInuse"`
	NumGC      uint32 `json:"numGC"`
}

// Snapshot reads the current runtime memory statistics.
func Snapshot() Usage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Usage{
		Alloc:      fmt.Sprintf("%dMB", m.Alloc/oneMB),
		TotalAlloc: fmt.Sprintf("%dMB", m.TotalAlloc/oneMB),
		Sys:        fmt.Sprintf("%dMB", m.Sys/oneMB),
		HeapInuse:  fmt.Sprintf("%dMB", m.HeapInuse/oneMB),
		NumGC:      m.NumGC,
	}
}

// Critical reports whether heap usage exceeds the given limit in megabytes.
func Critical(limitMB uint64) bool {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapInuse/oneMB > limitMB
}
