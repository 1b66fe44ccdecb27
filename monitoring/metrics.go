package monitoring

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MetricType 指标类型
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric 指标快照
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Help      string            `json:"help,omitempty"`

	// 仅直方图
	Buckets []float64 `json:"buckets,omitempty"`
	Counts  []uint64  `json:"counts,omitempty"`
	Sum     float64   `json:"sum,omitempty"`
	Count   uint64    `json:"count,omitempty"`
}

type family struct {
	name   string
	typ    MetricType
	help   string
	series map[string]*Metric
}

// MetricsCollector 指标收集器
type MetricsCollector struct {
	families    map[string]*family
	metricsLock sync.RWMutex

	startTime time.Time
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		families:  make(map[string]*family),
		startTime: time.Now(),
	}
}

// seriesFor 返回 name+labels 对应的序列，必要时创建。调用方持有写锁。
func (mc *MetricsCollector) seriesFor(name string, typ MetricType, help string, labels map[string]string) (*Metric, error) {
	f, ok := mc.families[name]
	if !ok {
		f = &family{name: name, typ: typ, help: help, series: make(map[string]*Metric)}
		mc.families[name] = f
	}
	if f.typ != typ {
		return nil, fmt.Errorf("metric %s registered as %s, not %s", name, f.typ, typ)
	}
	key := labelString(labels)
	m, ok := f.series[key]
	if !ok {
		m = &Metric{Name: name, Type: typ, Help: help, Labels: copyLabels(labels)}
		f.series[key] = m
	}
	m.Timestamp = time.Now()
	return m, nil
}

// IncrCounter 增加计数器
func (mc *MetricsCollector) IncrCounter(name, help string, value float64, labels map[string]string) {
	if value < 0 {
		return
	}
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()
	if m, err := mc.seriesFor(name, MetricTypeCounter, help, labels); err == nil {
		m.Value += value
	}
}

// SetGauge 设置仪表
func (mc *MetricsCollector) SetGauge(name, help string, value float64, labels map[string]string) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()
	if m, err := mc.seriesFor(name, MetricTypeGauge, help, labels); err == nil {
		m.Value = value
	}
}

// AddGauge 调整仪表
func (mc *MetricsCollector) AddGauge(name, help string, delta float64, labels map[string]string) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()
	if m, err := mc.seriesFor(name, MetricTypeGauge, help, labels); err == nil {
		m.Value += delta
	}
}

// RecordHistogram 记录直方图。buckets 为升序上界，首次记录时确定。
func (mc *MetricsCollector) RecordHistogram(name, help string, value float64, labels map[string]string, buckets []float64) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()
	m, err := mc.seriesFor(name, MetricTypeHistogram, help, labels)
	if err != nil {
		return
	}
	if m.Buckets == nil {
		m.Buckets = append([]float64(nil), buckets...)
		m.Counts = make([]uint64, len(buckets))
	}
	for i, upper := range m.Buckets {
		if value <= upper {
			m.Counts[i]++
		}
	}
	m.Sum += value
	m.Count++
	m.Value = value
}

// GetMetric 获取指标
func (mc *MetricsCollector) GetMetric(name string, labels map[string]string) (*Metric, error) {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	f, ok := mc.families[name]
	if !ok {
		return nil, fmt.Errorf("metric %s not found", name)
	}
	m, ok := f.series[labelString(labels)]
	if !ok {
		return nil, fmt.Errorf("metric %s%s not found", name, labelString(labels))
	}
	metricCopy := *m
	metricCopy.Labels = copyLabels(m.Labels)
	metricCopy.Buckets = append([]float64(nil), m.Buckets...)
	metricCopy.Counts = append([]uint64(nil), m.Counts...)
	return &metricCopy, nil
}

// collectSystemMetrics 收集系统指标，导出时调用
func (mc *MetricsCollector) collectSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mc.SetGauge("memory_heap_alloc_bytes", "Memory heap allocated in bytes", float64(m.HeapAlloc), nil)
	mc.SetGauge("memory_heap_sys_bytes", "Memory heap system bytes", float64(m.HeapSys), nil)
	mc.SetGauge("memory_gc_count", "Number of garbage collections", float64(m.NumGC), nil)
	mc.SetGauge("system_goroutines", "Number of goroutines", float64(runtime.NumGoroutine()), nil)
	mc.SetGauge("process_uptime_seconds", "Seconds since the collector was created", mc.GetUptime().Seconds(), nil)
}

// ExportPrometheus 导出Prometheus文本格式
func (mc *MetricsCollector) ExportPrometheus() string {
	mc.collectSystemMetrics()

	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	names := make([]string, 0, len(mc.families))
	for name := range mc.families {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		f := mc.families[name]
		help := f.help
		if help == "" {
			help = fmt.Sprintf("Metric %s", name)
		}
		fmt.Fprintf(&b, "# HELP %s %s\n", name, help)
		fmt.Fprintf(&b, "# TYPE %s %s\n", name, f.typ)

		keys := make([]string, 0, len(f.series))
		for key := range f.series {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			m := f.series[key]
			if f.typ != MetricTypeHistogram {
				fmt.Fprintf(&b, "%s%s %s\n", name, key, formatValue(m.Value))
				continue
			}
			for i, upper := range m.Buckets {
				fmt.Fprintf(&b, "%s_bucket%s %d\n", name, withLabel(m.Labels, "le", formatValue(upper)), m.Counts[i])
			}
			fmt.Fprintf(&b, "%s_bucket%s %d\n", name, withLabel(m.Labels, "le", "+Inf"), m.Count)
			fmt.Fprintf(&b, "%s_sum%s %s\n", name, key, formatValue(m.Sum))
			fmt.Fprintf(&b, "%s_count%s %d\n", name, key, m.Count)
		}
	}
	return b.String()
}

// GetUptime 获取运行时间
func (mc *MetricsCollector) GetUptime() time.Duration {
	return time.Since(mc.startTime)
}

// GetSystemStats 获取系统统计
func (mc *MetricsCollector) GetSystemStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"uptime":     mc.GetUptime().String(),
		"goroutines": runtime.NumGoroutine(),
		"memory": map[string]interface{}{
			"alloc":      m.Alloc,
			"heap_alloc": m.HeapAlloc,
			"heap_sys":   m.HeapSys,
			"gc_count":   m.NumGC,
		},
		"num_cpu": runtime.NumCPU(),
	}
}

func labelString(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, labels[k])
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func withLabel(labels map[string]string, key, value string) string {
	merged := copyLabels(labels)
	if merged == nil {
		merged = make(map[string]string, 1)
	}
	merged[key] = value
	return labelString(merged)
}

func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
