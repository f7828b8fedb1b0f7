// Cadence - Social Playlist Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getGaugeValue extracts the value from a Prometheus gauge
func getGaugeValue(gauge prometheus.Gauge) float64 {
	var m io_prometheus_client.Metric
	if err := gauge.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

// getHistogramCount extracts the sample count from a Prometheus histogram
func getHistogramCount(h prometheus.Observer) uint64 {
	metric, ok := h.(prometheus.Metric)
	if !ok {
		return 0
	}
	var m io_prometheus_client.Metric
	if err := metric.Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordPipelineRun(t *testing.T) {
	tests := []struct {
		name        string
		outcome     string
		wantSuccess bool
	}{
		{name: "success updates last success", outcome: OutcomeSuccess, wantSuccess: true},
		{name: "failure leaves last success", outcome: OutcomeFailed, wantSuccess: false},
		{name: "no data", outcome: OutcomeNoData, wantSuccess: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			PipelineLastSuccess.Set(0)
			before := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues(tt.outcome))

			RecordPipelineRun(tt.outcome, 2*time.Second)

			if got := testutil.ToFloat64(PipelineRunsTotal.WithLabelValues(tt.outcome)); got != before+1 {
				t.Errorf("runs[%s] = %v, want %v", tt.outcome, got, before+1)
			}
			if got := getGaugeValue(PipelineLastSuccess) > 0; got != tt.wantSuccess {
				t.Errorf("last success set = %v, want %v", got, tt.wantSuccess)
			}
		})
	}
}

func TestObservePhase(t *testing.T) {
	before := getHistogramCount(PipelinePhaseDuration.WithLabelValues("train"))

	ObservePhase("train", 150*time.Millisecond)
	ObservePhase("train", 250*time.Millisecond)

	if got := getHistogramCount(PipelinePhaseDuration.WithLabelValues("train")); got != before+2 {
		t.Errorf("train phase samples = %d, want %d", got, before+2)
	}
}

func TestRecordGridSearch(t *testing.T) {
	before := testutil.ToFloat64(GridSearchPointsEvaluated)

	RecordGridSearch(0.21, 0.14, 8, 1200)

	if got := getGaugeValue(GridSearchBestRMSE); got != 0.21 {
		t.Errorf("best RMSE = %v, want 0.21", got)
	}
	if got := getGaugeValue(GridSearchBestMAE); got != 0.14 {
		t.Errorf("best MAE = %v, want 0.14", got)
	}
	if got := testutil.ToFloat64(GridSearchPointsEvaluated); got != before+8 {
		t.Errorf("points = %v, want %v", got, before+8)
	}
	if got := getGaugeValue(TrainingSamples); got != 1200 {
		t.Errorf("samples = %v, want 1200", got)
	}
}

func TestRecordFallback(t *testing.T) {
	usersBefore := testutil.ToFloat64(FallbackUsersBackfilled)
	entriesBefore := testutil.ToFloat64(FallbackEntriesAppended)
	gapsBefore := testutil.ToFloat64(FriendLookupGaps)

	RecordFallback(3, 11, 2, 1)

	if got := testutil.ToFloat64(FallbackUsersBackfilled); got != usersBefore+3 {
		t.Errorf("users backfilled = %v, want %v", got, usersBefore+3)
	}
	if got := testutil.ToFloat64(FallbackEntriesAppended); got != entriesBefore+11 {
		t.Errorf("entries appended = %v, want %v", got, entriesBefore+11)
	}
	if got := testutil.ToFloat64(FriendLookupGaps); got != gapsBefore+2 {
		t.Errorf("gaps = %v, want %v", got, gapsBefore+2)
	}
	if got := getGaugeValue(ShortLists); got != 1 {
		t.Errorf("short lists = %v, want 1", got)
	}
}

func TestRecordPersistAndPredictions(t *testing.T) {
	replaceBefore := testutil.ToFloat64(RecommendationsPersisted.WithLabelValues("replace"))
	predsBefore := testutil.ToFloat64(PredictionsGenerated)

	RecordPersist("replace", 40)
	RecordPredictions(120)

	if got := testutil.ToFloat64(RecommendationsPersisted.WithLabelValues("replace")); got != replaceBefore+40 {
		t.Errorf("persisted = %v, want %v", got, replaceBefore+40)
	}
	if got := testutil.ToFloat64(PredictionsGenerated); got != predsBefore+120 {
		t.Errorf("predictions = %v, want %v", got, predsBefore+120)
	}
}

func TestRecordCheckpoint(t *testing.T) {
	okBefore := testutil.ToFloat64(CheckpointsSaved.WithLabelValues("success"))
	errBefore := testutil.ToFloat64(CheckpointsSaved.WithLabelValues("error"))

	RecordCheckpoint(nil)
	RecordCheckpoint(errors.New("disk full"))

	if got := testutil.ToFloat64(CheckpointsSaved.WithLabelValues("success")); got != okBefore+1 {
		t.Errorf("successful saves = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(CheckpointsSaved.WithLabelValues("error")); got != errBefore+1 {
		t.Errorf("failed saves = %v, want %v", got, errBefore+1)
	}
}

func TestRecordDBQuery(t *testing.T) {
	errBefore := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "recommendations"))

	RecordDBQuery("SELECT", "interactions", 5*time.Millisecond, nil)
	RecordDBQuery("INSERT", "recommendations", 20*time.Millisecond, errors.New("constraint"))

	if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "recommendations")); got != errBefore+1 {
		t.Errorf("errors = %v, want %v", got, errBefore+1)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/users/{userID}/playlist", "200"))

	RecordAPIRequest("GET", "/api/v1/users/{userID}/playlist", "200", 3*time.Millisecond)

	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/users/{userID}/playlist", "200")); got != before+1 {
		t.Errorf("requests = %v, want %v", got, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := getGaugeValue(APIActiveRequests)

	TrackActiveRequest(true)
	if got := getGaugeValue(APIActiveRequests); got != before+1 {
		t.Errorf("active after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := getGaugeValue(APIActiveRequests); got != before {
		t.Errorf("active after dec = %v, want %v", got, before)
	}
}

func TestEventMetrics(t *testing.T) {
	before := testutil.ToFloat64(EventsPublished.WithLabelValues("success"))

	RecordEventPublish("success")
	SetCircuitBreakerState("nats-publisher", 2)

	if got := testutil.ToFloat64(EventsPublished.WithLabelValues("success")); got != before+1 {
		t.Errorf("published = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("nats-publisher")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
}
