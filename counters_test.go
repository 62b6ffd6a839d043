/*------------------------------------------------------------------------------
* gnsstt unit test driver : diagnostics counters
*-----------------------------------------------------------------------------*/
package gnsstt_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnsstt"
)

func Test_reason(t *testing.T) {
	assert := assert.New(t)
	cases := map[error]string{
		gnsstt.ErrOrbitDivergence: "orbit_divergence",
		gnsstt.ErrRangeResidual:   "range_residual",
		gnsstt.ErrBadHealth:       "bad_health",
		gnsstt.ErrEphemerisMiss:   "ephemeris_miss",
		gnsstt.ErrNoObservation:   "no_observation",
		gnsstt.ErrShortTrack:      "short_track",
		gnsstt.ErrLowElevation:    "low_elevation",
		gnsstt.ErrHighDSG:         "high_dsg",
		errors.New("disk on fire"): "other",
	}
	for err, want := range cases {
		assert.Equal(want, gnsstt.Reason(err))
		assert.Equal(want, gnsstt.Reason(fmt.Errorf("G05 tod=30: %w", err)))
	}
}

func Test_diagnostics(t *testing.T) {
	assert := assert.New(t)
	d := gnsstt.NewDiagnostics()

	d.Ephemerides(120, 3, 1)
	d.TrackAccepted("GPS C1")
	d.TrackAccepted("GPS C1")
	d.TrackURAExceeded("GPS C1")
	d.TrackRejected("GAL C1", gnsstt.ErrShortTrack)
	d.SampleRejected("GPS C1", fmt.Errorf("x: %w", gnsstt.ErrRangeResidual))

	expected := `
# HELP gnsstt_tracks_total Fitted tracks by outcome.
# TYPE gnsstt_tracks_total counter
gnsstt_tracks_total{outcome="accepted",output="GPS C1"} 2
gnsstt_tracks_total{outcome="short_track",output="GAL C1"} 1
gnsstt_tracks_total{outcome="ura_exceeded",output="GPS C1"} 1
`
	assert.NoError(testutil.GatherAndCompare(d.Registry, strings.NewReader(expected), "gnsstt_tracks_total"))

	assert.Equal(120.0, d.Count("gnsstt_ephemerides_total", map[string]string{"outcome": "stored"}))
	assert.Equal(3.0, d.Count("gnsstt_ephemerides_total", map[string]string{"outcome": "duplicate"}))
	assert.Equal(1.0, d.Count("gnsstt_samples_rejected_total",
		map[string]string{"output": "GPS C1", "reason": "range_residual"}))
	assert.Equal(0.0, d.Count("gnsstt_samples_rejected_total",
		map[string]string{"output": "GAL C1", "reason": "range_residual"}))
	assert.Equal(0.0, d.Count("gnsstt_unknown_total", nil))

	var sb strings.Builder
	require.NoError(t, d.Summary(&sb))
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	assert.Len(lines, 7)
	assert.True(strings.HasPrefix(lines[0], "gnsstt_ephemerides_total"), lines[0])
	assert.Contains(sb.String(), "outcome=ura_exceeded,output=GPS C1")
}

/* track jobs increment counters concurrently */
func Test_diagnostics_concurrent(t *testing.T) {
	d := gnsstt.NewDiagnostics()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				d.SampleRejected("GPS C1", gnsstt.ErrBadHealth)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1600.0, d.Count("gnsstt_samples_rejected_total",
		map[string]string{"output": "GPS C1", "reason": "bad_health"}))
}
