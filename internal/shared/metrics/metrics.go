// Package metrics keeps process-local counters and a latency histogram and
// serves them in the Prometheus text format.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Outcomes used as the "outcome" label.
const (
	OK     = "ok"
	Failed = "failed"
)

var (
	imports  = newCounterVec("jobtailor_imports_total", "Résumé imports by outcome.", "outcome")
	llmCalls = newCounterVec("jobtailor_llm_calls_total", "Model calls by operation and outcome.", "op", "outcome")
	payments = newCounterVec("jobtailor_payments_total", "Simulated payments completed.")
	exports  = newCounterVec("jobtailor_exports_total", "Documents rendered by format.", "format")

	llmLatency = newHistogram("jobtailor_llm_duration_seconds", "Model call latency.",
		[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60})
)

// Import counts one résumé import.
func Import(err error) { imports.inc(outcome(err)) }

// LLMCall counts one analysis or tailoring call and records its latency.
func LLMCall(op string, d time.Duration, err error) {
	llmCalls.inc(op, outcome(err))
	llmLatency.observe(d.Seconds())
}

// Payment counts a completed simulated payment.
func Payment() { payments.inc() }

// Export counts a rendered document.
func Export(format string) { exports.inc(format) }

func outcome(err error) string {
	if err != nil {
		return Failed
	}
	return OK
}

// Handler serves every metric in the text exposition format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		c.Status(http.StatusOK)
		Write(c.Writer)
	}
}

// Write renders every metric to w.
func Write(w io.Writer) {
	for _, cv := range []*counterVec{imports, llmCalls, payments, exports} {
		cv.write(w)
	}
	llmLatency.write(w)
}

type counterVec struct {
	name   string
	help   string
	labels []string

	mu     sync.Mutex
	values map[string]uint64
}

func newCounterVec(name, help string, labels ...string) *counterVec {
	return &counterVec{name: name, help: help, labels: labels, values: map[string]uint64{}}
}

func (cv *counterVec) inc(labelValues ...string) {
	if len(labelValues) != len(cv.labels) {
		panic(fmt.Sprintf("metrics: %s wants %d labels, got %d", cv.name, len(cv.labels), len(labelValues)))
	}
	pairs := make([]string, len(cv.labels))
	for i, l := range cv.labels {
		pairs[i] = l + "=" + strconv.Quote(labelValues[i])
	}
	key := strings.Join(pairs, ",")

	cv.mu.Lock()
	cv.values[key]++
	cv.mu.Unlock()
}

func (cv *counterVec) get(labelValues ...string) uint64 {
	pairs := make([]string, len(cv.labels))
	for i, l := range cv.labels {
		pairs[i] = l + "=" + strconv.Quote(labelValues[i])
	}
	cv.mu.Lock()
	defer cv.mu.Unlock()
	return cv.values[strings.Join(pairs, ",")]
}

func (cv *counterVec) write(w io.Writer) {
	cv.mu.Lock()
	keys := make([]string, 0, len(cv.values))
	for k := range cv.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	snapshot := make([]uint64, len(keys))
	for i, k := range keys {
		snapshot[i] = cv.values[k]
	}
	cv.mu.Unlock()

	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", cv.name, cv.help, cv.name)
	if len(keys) == 0 && len(cv.labels) == 0 {
		fmt.Fprintf(w, "%s 0\n", cv.name)
	}
	for i, k := range keys {
		if k == "" {
			fmt.Fprintf(w, "%s %d\n", cv.name, snapshot[i])
			continue
		}
		fmt.Fprintf(w, "%s{%s} %d\n", cv.name, k, snapshot[i])
	}
}

type histogram struct {
	name   string
	help   string
	bounds []float64

	mu     sync.Mutex
	counts []uint64 // counts[i] holds observations <= bounds[i]; the last slot is +Inf
	sum    float64
}

func newHistogram(name, help string, bounds []float64) *histogram {
	return &histogram{name: name, help: help, bounds: bounds, counts: make([]uint64, len(bounds)+1)}
}

func (h *histogram) observe(v float64) {
	if v < 0 {
		v = 0
	}
	i := sort.SearchFloat64s(h.bounds, v)
	h.mu.Lock()
	h.counts[i]++
	h.sum += v
	h.mu.Unlock()
}

func (h *histogram) write(w io.Writer) {
	h.mu.Lock()
	counts := append([]uint64(nil), h.counts...)
	sum := h.sum
	h.mu.Unlock()

	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.name, h.help, h.name)
	var cumulative uint64
	for i, c := range counts {
		cumulative += c
		le := "+Inf"
		if i < len(h.bounds) {
			le = strconv.FormatFloat(h.bounds[i], 'g', -1, 64)
		}
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", h.name, le, cumulative)
	}
	fmt.Fprintf(w, "%s_sum %s\n%s_count %d\n", h.name, strconv.FormatFloat(sum, 'g', -1, 64), h.name, cumulative)
}
