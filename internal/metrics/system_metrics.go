package metrics

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// systemCollector gathers host and Go runtime metrics on a fixed interval.
// It only runs if ENABLE_SYSTEM_METRICS is set.
type systemCollector struct {
	cpuUsage    *prometheus.GaugeVec
	memoryUsage *prometheus.GaugeVec

	goroutines  prometheus.Gauge
	heapAlloc   prometheus.Gauge
	heapSys     prometheus.Gauge
	gcFraction  prometheus.Gauge
	processTime prometheus.Gauge
}

var (
	collector     *systemCollector
	collectorOnce sync.Once
)

func newSystemCollector() *systemCollector {
	sc := &systemCollector{
		cpuUsage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "system_cpu_usage_percent",
				Help: "Current CPU usage percentage",
			},
			[]string{"core"},
		),
		memoryUsage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "system_memory_usage_bytes",
				Help: "Current memory usage in bytes",
			},
			[]string{"type"},
		),
		goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "app_goroutines",
				Help: "Number of goroutines that currently exist",
			},
		),
		heapAlloc: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "app_heap_alloc_bytes",
				Help: "Heap memory usage in bytes",
			},
		),
		heapSys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "app_heap_sys_bytes",
				Help: "Heap memory reserved in bytes",
			},
		),
		gcFraction: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "app_gc_cpu_fraction",
				Help: "Fraction of CPU time used by GC",
			},
		),
		processTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "app_start_time_seconds",
				Help: "Start time of the process since unix epoch in seconds",
			},
		),
	}

	prometheus.MustRegister(
		sc.cpuUsage,
		sc.memoryUsage,
		sc.goroutines,
		sc.heapAlloc,
		sc.heapSys,
		sc.gcFraction,
		sc.processTime,
	)
	return sc
}

// StartSystemMetrics begins periodic collection of system and runtime
// metrics. Safe to call more than once; only the first call starts the
// collector goroutine.
func StartSystemMetrics(interval time.Duration) {
	if os.Getenv("ENABLE_SYSTEM_METRICS") != "true" {
		return
	}

	collectorOnce.Do(func() {
		collector = newSystemCollector()
		collector.processTime.Set(float64(time.Now().Unix()))

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for range ticker.C {
				collector.collect()
			}
		}()
	})
}

func (sc *systemCollector) collect() {
	if percentages, err := cpu.Percent(0, true); err == nil {
		for i, pct := range percentages {
			sc.cpuUsage.WithLabelValues(fmt.Sprintf("cpu%d", i)).Set(pct)
		}
	}

	if vmstat, err := mem.VirtualMemory(); err == nil {
		sc.memoryUsage.WithLabelValues("total").Set(float64(vmstat.Total))
		sc.memoryUsage.WithLabelValues("available").Set(float64(vmstat.Available))
		sc.memoryUsage.WithLabelValues("used").Set(float64(vmstat.Used))
		sc.memoryUsage.WithLabelValues("free").Set(float64(vmstat.Free))
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	sc.goroutines.Set(float64(runtime.NumGoroutine()))
	sc.heapAlloc.Set(float64(m.HeapAlloc))
	sc.heapSys.Set(float64(m.HeapSys))
	sc.gcFraction.Set(m.GCCPUFraction)
}
