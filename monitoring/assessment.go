package monitoring

import (
	"errors"
	"strconv"
	"time"

	"riskengine/ml"
	"riskengine/risk"
)

const (
	MetricAssessments     = "riskengine_assessments_total"
	MetricFailures        = "riskengine_assessment_failures_total"
	MetricScoringLatency  = "riskengine_scoring_latency_seconds"
	MetricProbability     = "riskengine_probability"
	MetricHTTPRequests    = "riskengine_http_requests_total"
	MetricLiveConnections = "riskengine_live_connections"
	MetricArtifactChanges = "riskengine_artifact_changes_total"
)

var (
	LatencyBuckets     = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}
	ProbabilityBuckets = []float64{risk.LowTierCutoff, risk.ModerateTierCutoff, 0.25, 0.5, 0.75, 1}
)

// AssessmentMetrics 将评估结果记录到收集器，实现 risk.Observer
type AssessmentMetrics struct {
	collector *MetricsCollector
}

func NewAssessmentMetrics(collector *MetricsCollector) *AssessmentMetrics {
	return &AssessmentMetrics{collector: collector}
}

func (am *AssessmentMetrics) ObserveAssessment(a risk.Assessment, latency time.Duration) {
	am.collector.IncrCounter(MetricAssessments, "Completed assessments by tier and flag", 1, map[string]string{
		"tier":    string(a.Tier),
		"flagged": strconv.FormatBool(a.Flagged),
	})
	am.collector.RecordHistogram(MetricScoringLatency, "Model inference latency in seconds",
		latency.Seconds(), nil, LatencyBuckets)
	am.collector.RecordHistogram(MetricProbability, "Distribution of predicted probabilities",
		a.Probability, nil, ProbabilityBuckets)
}

func (am *AssessmentMetrics) ObserveFailure(err error) {
	am.collector.IncrCounter(MetricFailures, "Assessments that produced no result", 1, map[string]string{
		"reason": failureReason(err),
	})
}

// ArtifactChanged 计数磁盘上模型文件的变更
func (am *AssessmentMetrics) ArtifactChanged() {
	am.collector.IncrCounter(MetricArtifactChanges, "Model artifact changes seen on disk since start", 1, nil)
}

func failureReason(err error) string {
	var verr risk.ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid_input"
	case errors.Is(err, ml.ErrInvalidProbability):
		return "invalid_probability"
	default:
		return "scoring_error"
	}
}
