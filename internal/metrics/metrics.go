// Package metrics records the outcome of a run for Prometheus. A batch job
// has no scrape endpoint, so the values are either written for the
// node-exporter textfile collector or pushed to a Pushgateway.
package metrics

import (
	"bufio"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/agentstation/locsync/pkg/constants"
	"github.com/agentstation/locsync/pkg/errors"
	"github.com/agentstation/locsync/pkg/reconciler"
)

const namespace = "locsync"

const lastSuccessName = namespace + "_last_success_timestamp_seconds"

// Recorder holds the run gauges in a private registry. The last-success
// gauge is only registered once a value is known, so a failed run never
// exports it as zero.
type Recorder struct {
	registry *prometheus.Registry
	hasLast  bool

	lastRun     prometheus.Gauge
	lastSuccess prometheus.Gauge
	success     prometheus.Gauge
	duration    prometheus.Gauge
	added       prometheus.Gauge
	removed     prometheus.Gauge
	collisions  prometheus.Gauge
	desired     prometheus.Gauge
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

// NewRecorder creates a Recorder with every gauge registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry:    prometheus.NewRegistry(),
		lastRun:     gauge("last_run_timestamp_seconds", "Unix time the last run finished."),
		lastSuccess: gauge("last_success_timestamp_seconds", "Unix time the last successful run finished."),
		success:     gauge("run_success", "1 if the last run reached done, 0 otherwise."),
		duration:    gauge("run_duration_seconds", "Wall time of the last run."),
		added:       gauge("values_added", "Allowed values added by the last run."),
		removed:     gauge("values_removed", "Allowed values removed by the last run."),
		collisions:  gauge("collisions", "Sanitization collisions seen by the last run."),
		desired:     gauge("desired_values", "Size of the desired allowed-value set in the last run."),
	}
	r.registry.MustRegister(
		r.lastRun, r.success, r.duration,
		r.added, r.removed, r.collisions, r.desired,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records the outcome of a run. result may be nil when the run
// failed before it started.
func (r *Recorder) Observe(result *reconciler.Result, err error) {
	now := float64(time.Now().Unix())
	r.lastRun.Set(now)

	if result != nil {
		r.duration.Set(result.Duration.Seconds())
		r.added.Set(float64(result.Added()))
		r.removed.Set(float64(result.Removed()))
		r.collisions.Set(float64(len(result.Collisions)))
		r.desired.Set(float64(result.DesiredCount))
	}

	if err == nil && result != nil && result.IsSuccess() {
		r.success.Set(1)
		r.setLastSuccess(now)
		return
	}
	r.success.Set(0)
}

func (r *Recorder) setLastSuccess(ts float64) {
	r.lastSuccess.Set(ts)
	if r.hasLast {
		return
	}
	if err := r.registry.Register(r.lastSuccess); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !stderrors.As(err, &are) {
			return
		}
	}
	r.hasLast = true
}

// WriteTextfile writes the gauges in the text exposition format. The file is
// replaced atomically so the collector never reads a partial write.
//
// Without a success in this process the previous file's last-success
// timestamp is carried over.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	if !r.hasLast {
		if ts, ok := previousSuccess(path); ok {
			r.setLastSuccess(ts)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// previousSuccess reads the last-success sample from an earlier textfile.
func previousSuccess(path string) (float64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != lastSuccessName {
			continue
		}
		ts, err := strconv.ParseFloat(fields[1], 64)
		return ts, err == nil
	}
	return 0, false
}

// Push sends the gauges to a Pushgateway under job. Metrics with the same
// names are replaced and the rest of the group is kept, so a failed run
// leaves the pushed last-success timestamp alone.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if job == "" {
		job = constants.DefaultMetricsJob
	}
	ctx, cancel := context.WithTimeout(ctx, constants.MetricsPushTimeout)
	defer cancel()

	if err := push.New(url, job).Gatherer(r.registry).AddContext(ctx); err != nil {
		return errors.WrapIO("push", url, err)
	}
	return nil
}
