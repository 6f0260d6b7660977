package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jup-swap/pkg/confirm"
	"jup-swap/pkg/swap"
	"jup-swap/pkg/types"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve(":0")
	defer srv.Close()

	RunsTotal.WithLabelValues("confirmed").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "jupswap_runs_total" {
			found = true
			break
		}
	}
	assert.True(t, found, "jupswap_runs_total metric not found")
}

func TestServeHandler(t *testing.T) {
	srv := Serve("127.0.0.1:0")
	defer srv.Close()

	ObservePoll(confirm.Poll{Outcome: confirm.PollConfirmed})
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jupswap_")
}

func TestSinkCountsStages(t *testing.T) {
	okBuilds := testutil.ToFloat64(StageTotal.WithLabelValues("build", "ok"))
	failedBuilds := testutil.ToFloat64(StageTotal.WithLabelValues("build", "error"))
	failedRuns := testutil.ToFloat64(RunsTotal.WithLabelValues("failed"))
	timeouts := testutil.ToFloat64(RunsTotal.WithLabelValues("timeout"))

	var s Sink
	s.Emit(swap.Event{Stage: types.StageQuote, State: swap.StateQuoteRequested})
	s.Emit(swap.Event{Stage: types.StageBuild, State: swap.StateBuilt, Duration: 20 * time.Millisecond})
	s.Emit(swap.Event{Stage: types.StageBuild, State: swap.StateFailed})
	s.Emit(swap.Event{Stage: types.StageConfirm, State: swap.StateTimeout})

	assert.Equal(t, okBuilds+1, testutil.ToFloat64(StageTotal.WithLabelValues("build", "ok")))
	assert.Equal(t, failedBuilds+1, testutil.ToFloat64(StageTotal.WithLabelValues("build", "error")))
	assert.Equal(t, failedRuns+1, testutil.ToFloat64(RunsTotal.WithLabelValues("failed")))
	assert.Equal(t, timeouts+1, testutil.ToFloat64(RunsTotal.WithLabelValues("timeout")))
}

func TestObservePoll(t *testing.T) {
	before := testutil.ToFloat64(ConfirmPolls.WithLabelValues("pending"))
	ObservePoll(confirm.Poll{TransactionID: "abcd", Attempt: 1, Outcome: confirm.PollPending})
	assert.Equal(t, before+1, testutil.ToFloat64(ConfirmPolls.WithLabelValues("pending")))
}
