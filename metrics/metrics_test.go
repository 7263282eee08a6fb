package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gr-butler/alarmstation/alarm"
	"github.com/gr-butler/alarmstation/reporting"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterSetsGauges(t *testing.T) {
	cycles := testutil.ToFloat64(Prom_cycles)
	activations := testutil.ToFloat64(Prom_transitions.WithLabelValues("active"))

	require.NoError(t, Reporter{}.Emit(reporting.Report{Value: 842, State: alarm.Active, Changed: true}))
	assert.Equal(t, float64(842), testutil.ToFloat64(Prom_sensorValue))
	assert.Equal(t, float64(1), testutil.ToFloat64(Prom_alarmState))
	assert.Equal(t, float64(0), testutil.ToFloat64(Prom_sensorFault))

	require.NoError(t, Reporter{}.Emit(reporting.Report{Value: 843, State: alarm.Active}))
	assert.Equal(t, cycles+2, testutil.ToFloat64(Prom_cycles))
	assert.Equal(t, activations+1, testutil.ToFloat64(Prom_transitions.WithLabelValues("active")))

	require.NoError(t, Reporter{}.Emit(reporting.Report{Value: 5000, State: alarm.Inactive, Fault: true, Changed: true}))
	assert.Equal(t, float64(0), testutil.ToFloat64(Prom_alarmState))
	assert.Equal(t, float64(1), testutil.ToFloat64(Prom_sensorFault))
}

func TestReadError(t *testing.T) {
	before := testutil.ToFloat64(Prom_readErrors)
	ReadError()
	assert.Equal(t, before+1, testutil.ToFloat64(Prom_readErrors))
}

func TestHandlerServesMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "alarm_cycles_total"))
}
