// Package varz exports process and model file metrics for monitoring.
package varz

import (
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	started = time.Now()

	mu       sync.Mutex
	modelDir string
)

var (
	memAllocBytesGauge = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Subsystem: "process",
			Name:      "mem_alloc_bytes",
			Help:      "Bytes allocated and still in use.",
		},
		func() float64 {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			return float64(m.Alloc)
		},
	)

	availFSGauge = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "ngram_avail_fs_bytes",
			Help: "Number of available bytes on the filesystem holding the model file.",
		},
		func() float64 {
			avail, _ := availableBytes()
			return float64(avail)
		},
	)
)

// cpuTimeMetric reports the rusage CPU times of this process.
type cpuTimeMetric struct {
	desc *prometheus.Desc
}

func (ct *cpuTimeMetric) Describe(ch chan<- *prometheus.Desc) {
	ch <- ct.desc
}

func (ct *cpuTimeMetric) Collect(ch chan<- prometheus.Metric) {
	user, system, err := cpuTime()
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(ct.desc, prometheus.CounterValue, float64(user), "user")
	ch <- prometheus.MustNewConstMetric(ct.desc, prometheus.CounterValue, float64(system), "system")
}

func init() {
	prometheus.MustRegister(memAllocBytesGauge)
	prometheus.MustRegister(availFSGauge)
	prometheus.MustRegister(&cpuTimeMetric{prometheus.NewDesc(
		"process_cpu_nsec",
		"CPU time spent in ns, split by user/system.",
		[]string{"mode"},
		nil,
	)})
}

// SetModel makes the available-bytes metrics refer to the filesystem
// holding the model file at path.
func SetModel(path string) {
	mu.Lock()
	defer mu.Unlock()
	modelDir = filepath.Dir(path)
}

func availableBytes() (uint64, bool) {
	mu.Lock()
	dir := modelDir
	mu.Unlock()
	if dir == "" {
		return 0, false
	}
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return 0, false
	}
	return stat.Bavail * uint64(stat.Bsize), true
}

func cpuTime() (user, system int64, _ error) {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0, 0, err
	}
	return syscall.TimevalToNsec(rusage.Utime), syscall.TimevalToNsec(rusage.Stime), nil
}

// Varz writes a plain-text summary of the process state, one "key value"
// pair per line.
func Varz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Uptime", fmt.Sprintf("%d", time.Since(started)))
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Fprintf(w, "num-goroutine %d\n", runtime.NumGoroutine())
	fmt.Fprintf(w, "mem-alloc-bytes %d\n", m.Alloc)
	fmt.Fprintf(w, "last-gc-absolute-ns %d\n", m.LastGC)
	if avail, ok := availableBytes(); ok {
		fmt.Fprintf(w, "available-bytes %d\n", avail)
	}
	if user, system, err := cpuTime(); err == nil {
		fmt.Fprintf(w, "cpu-time-user-ns %d\n", user)
		fmt.Fprintf(w, "cpu-time-system-ns %d\n", system)
	}
}

// Goroutinez writes the stack traces of all goroutines.
func Goroutinez(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 64<<10)
	n := runtime.Stack(buf, true)
	for n == len(buf) {
		buf = make([]byte, 2*len(buf))
		n = runtime.Stack(buf, true)
	}
	w.Write(buf[:n])
}

// Handle registers the /metrics, /varz and /goroutinez handlers on mux.
func Handle(mux *http.ServeMux) {
	mux.Handle("/metrics", prometheus.Handler())
	mux.HandleFunc("/varz", Varz)
	mux.HandleFunc("/goroutinez", Goroutinez)
}
