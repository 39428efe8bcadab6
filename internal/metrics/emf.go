// Package metrics emits CloudWatch Embedded Metric Format (EMF) documents from
// the pipeline Lambdas. Each document is one JSON line on stdout; CloudWatch
// Logs extracts the metrics from it with no API call on the hot path.
//
// See: https://docs.aws.amazon.com/AmazonCloudWatch/latest/monitoring/CloudWatch_Embedded_Metric_Format_Specification.html
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Namespace is the CloudWatch namespace for every pipeline metric.
const Namespace = "CourtsideVideo"

// Standard CloudWatch metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitNone         = "None"
)

// Metric names emitted by the pipeline.
const (
	UploadsSkipped      = "UploadsSkipped"
	JobsSubmitted       = "JobsSubmitted"
	JobSubmitFailures   = "JobSubmitFailures"
	SubmitLatencyMs     = "SubmitLatencyMs"
	JobsCompleted       = "JobsCompleted"
	JobsFailed          = "JobsFailed"
	EventsDiscarded     = "EventsDiscarded"
	RecordWriteFailures = "RecordWriteFailures"
)

type metricDef struct {
	Name string `json:"Name"`
	Unit string `json:"Unit"`
}

type emfDirective struct {
	Timestamp         int64      `json:"Timestamp"`
	CloudWatchMetrics []cwMetric `json:"CloudWatchMetrics"`
}

type cwMetric struct {
	Namespace  string      `json:"Namespace"`
	Dimensions [][]string  `json:"Dimensions"`
	Metrics    []metricDef `json:"Metrics"`
}

// Recorder accumulates dimensions, metrics, and properties for one flush.
// It is not safe for concurrent use; create one per operation.
type Recorder struct {
	namespace  string
	out        io.Writer
	dimensions map[string]string
	metrics    map[string]metricDef
	values     map[string]interface{}
	properties map[string]interface{}
}

var (
	functionName string
	initOnce     sync.Once
)

func initFunctionName() {
	functionName = os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
}

// New creates a Recorder in the pipeline namespace writing to stdout. The
// FunctionName dimension is added automatically inside Lambda.
func New() *Recorder {
	return NewWithWriter(Namespace, os.Stdout)
}

// NewWithWriter creates a Recorder for an arbitrary namespace and destination.
func NewWithWriter(namespace string, out io.Writer) *Recorder {
	initOnce.Do(initFunctionName)
	r := &Recorder{
		namespace:  namespace,
		out:        out,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
		values:     make(map[string]interface{}),
		properties: make(map[string]interface{}),
	}
	if functionName != "" {
		r.dimensions["FunctionName"] = functionName
	}
	return r
}

// Dimension adds an indexed dimension.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a named value with a CloudWatch unit.
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit}
	r.values[name] = value
	return r
}

// Count records a count metric with value 1.
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Duration records d as a millisecond metric.
func (r *Recorder) Duration(name string, d time.Duration) *Recorder {
	return r.Metric(name, float64(d.Milliseconds()), UnitMilliseconds)
}

// Property adds a searchable, non-metric field.
func (r *Recorder) Property(key string, value interface{}) *Recorder {
	r.properties[key] = value
	return r
}

// Flush writes the EMF document as a single line. A recorder with no metrics
// writes nothing.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return
	}

	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	defs := make([]metricDef, 0, len(names))
	for _, name := range names {
		defs = append(defs, r.metrics[name])
	}

	dimKeys := make([]string, 0, len(r.dimensions))
	for k := range r.dimensions {
		dimKeys = append(dimKeys, k)
	}
	sort.Strings(dimKeys)

	doc := make(map[string]interface{}, 1+len(r.dimensions)+len(r.values)+len(r.properties))
	for k, v := range r.properties {
		doc[k] = v
	}
	for k, v := range r.dimensions {
		doc[k] = v
	}
	for k, v := range r.values {
		doc[k] = v
	}
	doc["_aws"] = emfDirective{
		Timestamp: time.Now().UnixMilli(),
		CloudWatchMetrics: []cwMetric{{
			Namespace:  r.namespace,
			Dimensions: [][]string{dimKeys},
			Metrics:    defs,
		}},
	}

	if err := json.NewEncoder(r.out).Encode(doc); err != nil {
		fmt.Fprintf(os.Stderr, "emf: failed to write metrics: %v\n", err)
	}
}
