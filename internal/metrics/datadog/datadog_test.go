package datadog

import (
	"context"
	"net/http"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/infinit3labs/udacity-dend-proj1/internal/metrics"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// fakeSubmitter captures submitted payloads instead of doing HTTP.
type fakeSubmitter struct {
	payloads []datadogV2.MetricPayload
	err      error
}

func (f *fakeSubmitter) SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	f.payloads = append(f.payloads, body)
	return datadogV2.IntakePayloadAccepted{}, nil, f.err
}

// newTestBackend builds a backend wired to a fake submitter with a ticker
// that never fires; tests drive Flush directly.
func newTestBackend(t *testing.T, fake *fakeSubmitter) *Backend {
	t.Helper()
	t.Setenv("ENV", "")
	t.Setenv("DD_ENV", "")
	b, err := NewBackend(context.Background(), Options{
		JobName:    "testjob",
		FlushEvery: time.Hour,
		now:        func() time.Time { return time.Unix(1700000000, 0) },
		newTicker:  func(d time.Duration) *time.Ticker { return time.NewTicker(time.Hour) },
		submitter:  fake,
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// seriesByMetric indexes a payload's series by metric name.
func seriesByMetric(p datadogV2.MetricPayload) map[string]datadogV2.MetricSeries {
	out := make(map[string]datadogV2.MetricSeries, len(p.Series))
	for _, s := range p.Series {
		out[s.Metric] = s
	}
	return out
}

func TestFlush_NothingBufferedSubmitsNothing(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(fake.payloads) != 0 {
		t.Fatalf("submitted %d payloads from empty buffers", len(fake.payloads))
	}
}

func TestFlush_SubmitsCountersAndResets(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)

	b.IncCounter("etl_files_total", 1, metrics.Labels{"batch": "songs", "status": "ok"})
	b.IncCounter("etl_files_total", 2, metrics.Labels{"batch": "songs", "status": "ok"})
	b.IncCounter("etl_records_total", 5, metrics.Labels{"kind": "songs"})
	b.IncCounter("etl_lookups_total", 3, metrics.Labels{"result": "miss"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(fake.payloads) != 1 {
		t.Fatalf("got %d payloads, want 1", len(fake.payloads))
	}

	got := seriesByMetric(fake.payloads[0])

	files, ok := got["etl.files.total"]
	if !ok {
		t.Fatal("no etl.files.total series")
	}
	if v := *files.Points[0].Value; v != 3 {
		t.Errorf("etl.files.total = %v, want 3 (deltas accumulate)", v)
	}
	wantTags := []string{"env:unknown", "job:testjob", "batch:songs", "status:ok"}
	if !reflect.DeepEqual(files.Tags, wantTags) {
		t.Errorf("tags = %v, want %v", files.Tags, wantTags)
	}
	if *files.Type != datadogV2.METRICINTAKETYPE_COUNT {
		t.Errorf("type = %v, want count", *files.Type)
	}

	if v := *got["etl.records.total"].Points[0].Value; v != 5 {
		t.Errorf("etl.records.total = %v, want 5", v)
	}
	if v := *got["etl.lookups.total"].Points[0].Value; v != 3 {
		t.Errorf("etl.lookups.total = %v, want 3", v)
	}

	// Buffers reset: a second flush has nothing to send.
	if err := b.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if len(fake.payloads) != 1 {
		t.Errorf("second flush submitted a payload from reset buffers")
	}
}

func TestFlush_HistogramPercentiles(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)

	for _, v := range []float64{0.5, 0.1, 0.9, 0.3, 0.7} {
		b.ObserveHistogram("etl_file_duration_seconds", v, metrics.Labels{"batch": "logs"})
	}

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	got := seriesByMetric(fake.payloads[0])

	checks := map[string]float64{
		"etl.file.duration_seconds.p50":     0.5,
		"etl.file.duration_seconds.max":     0.9,
		"etl.file.duration_seconds.samples": 5,
	}
	for metric, want := range checks {
		s, ok := got[metric]
		if !ok {
			t.Errorf("missing series %s", metric)
			continue
		}
		if v := *s.Points[0].Value; v != want {
			t.Errorf("%s = %v, want %v", metric, v, want)
		}
		if *s.Type != datadogV2.METRICINTAKETYPE_GAUGE {
			t.Errorf("%s type = %v, want gauge", metric, *s.Type)
		}
	}

	var names []string
	for m := range got {
		names = append(names, m)
	}
	sort.Strings(names)
	if len(names) != 6 {
		t.Errorf("series = %v, want the six duration gauges", names)
	}
}

func TestIncCounter_IgnoresNonPositiveAndUnknown(t *testing.T) {
	fake := &fakeSubmitter{}
	b := newTestBackend(t, fake)

	b.IncCounter("etl_files_total", 0, metrics.Labels{"batch": "songs", "status": "ok"})
	b.IncCounter("etl_files_total", -1, metrics.Labels{"batch": "songs", "status": "ok"})
	b.IncCounter("some_other_counter", 5, nil)
	b.ObserveHistogram("some_other_histogram", 5, nil)
	b.ObserveHistogram("etl_file_duration_seconds", -0.1, metrics.Labels{"batch": "songs"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(fake.payloads) != 0 {
		t.Fatalf("ignored observations still produced %d payloads", len(fake.payloads))
	}
}

func TestPercentileNearestRank(t *testing.T) {
	t.Parallel()

	s := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.5, 6},
		{0.9, 9},
		{1, 10},
	}
	for _, tc := range tests {
		if got := percentileNearestRank(s, tc.p); got != tc.want {
			t.Errorf("p=%v: got %v, want %v", tc.p, got, tc.want)
		}
	}
	if got := percentileNearestRank(nil, 0.5); got != 0 {
		t.Errorf("empty input: got %v, want 0", got)
	}
}

func TestParseTagsCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"env:prod", []string{"env:prod"}},
		{"env:prod, service:etl ,", []string{"env:prod", "service:etl"}},
	}
	for _, tc := range tests {
		if got := ParseTagsCSV(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseTagsCSV(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
