/*------------------------------------------------------------------------------
* gnsstt unit test driver : day processing
*-----------------------------------------------------------------------------*/
package gnsstt_test

import (
	"bufio"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnsstt"
)

/* scenario ------------------------------------------------------------------------
* antenna at the ecef origin sees every satellite at zenith, no troposphere and
* no ionosphere. G05 is tracked over a full window with refsys 12.34+-0.5 ns
* in a + - - + pattern, G12 has only an ephemeris with large ura, G07 has garbage
* pseudoranges for 12 epochs and G20 has no ephemeris.
*-----------------------------------------------------------------------------*/
type scenario struct {
	slot gnsstt.TrackSlot
	ephs []gnsstt.Ephemeris
	obs  map[gnsstt.SatID]map[float64]float64 /* tod -> C1 */
}

var (
	satG05 = gnsstt.SatID{Sys: gnsstt.GPS, PRN: 5}
	satG07 = gnsstt.SatID{Sys: gnsstt.GPS, PRN: 7}
	satG12 = gnsstt.SatID{Sys: gnsstt.GPS, PRN: 12}
	satG20 = gnsstt.SatID{Sys: gnsstt.GPS, PRN: 20}
)

func originCorrector() *gnsstt.Corrector {
	return &gnsstt.Corrector{Sys: gnsstt.GPS, Code: gnsstt.C1, Antenna: gnsstt.NewAntenna(0, 0, 0, "ITRF")}
}

func newScenario(t *testing.T) *scenario {
	slot := gnsstt.Tracks(testMJD, gnsstt.SECDAY)[10]
	toe := math.Floor(float64(slot.Start+390+18)/7200.0) * 7200.0

	g05, g07, g12 := testEph(5, toe), testEph(7, toe), testEph(12, toe)
	g12.URA = 5.0
	sc := &scenario{
		slot: slot,
		ephs: []gnsstt.Ephemeris{g05, g07, g12},
		obs:  make(map[gnsstt.SatID]map[float64]float64),
	}
	for _, sat := range []gnsstt.SatID{satG05, satG07, satG12, satG20} {
		sc.obs[sat] = make(map[float64]float64)
	}
	c := originCorrector()
	for k := 0; k < 26; k++ {
		tod := float64(slot.Start + 30*k)
		noise := 0.5
		if k%4 == 1 || k%4 == 2 {
			noise = -0.5
		}
		sc.obs[satG05][tod] = pseudorange(t, c, &g05, testGpst(tod), 12.34+noise)
		sc.obs[satG12][tod] = 2.2e7
		sc.obs[satG20][tod] = 2.3e7
		if k < 12 {
			sc.obs[satG07][tod] = 1.0e7
		}
	}
	return sc
}

func (sc *scenario) day() *gnsstt.DayData {
	nav := gnsstt.NewNavData()
	for _, e := range sc.ephs {
		nav.Store.Insert(e)
	}
	grid := gnsstt.NewObsGrid(testMJD, gnsstt.EPOCHS_PER_DAY)
	for sat, m := range sc.obs {
		for tod, pr := range m {
			grid.Set(sat, tod, gnsstt.C1, pr)
		}
	}
	return &gnsstt.DayData{
		MJD:   testMJD,
		Day0:  gnsstt.MJD2Time(testMJD),
		Leap:  -18.0,
		Nav:   nav,
		Obs:   grid,
		Limit: gnsstt.SECDAY,
	}
}

func scenarioOptions(dir string) *gnsstt.Options {
	opt := gnsstt.DefaultOptions()
	opt.CGGTTS.SurfaceRefractivity = 0.0
	opt.CGGTTS.OutputDir = filepath.Join(dir, "cggtts")
	opt.Inputs.Observations = filepath.Join(dir, "site%n0.%yo")
	opt.Inputs.Navigation = filepath.Join(dir, "brdc%n0.%yn")
	opt.Lab = gnsstt.LabOpt{Name: "XLAB", Code: "XX", ReceiverCode: "01", Reference: "UTC(XLAB)"}
	opt.Outputs = []gnsstt.OutputOpt{{Constellation: "GPS", Code: "C1"}}
	return opt
}

func checkScenarioRecord(t *testing.T, sc *scenario, r gnsstt.TrackResult) {
	assert := assert.New(t)
	assert.Equal(satG05, r.Sat)
	assert.Equal(testMJD, r.MJD)
	assert.Equal(sc.slot.Start, r.Start)
	assert.Equal(780, r.TrackLength)
	assert.Equal(900, r.Elevation)
	assert.Equal(0, r.Azimuth)
	assert.Equal(int64(123), r.REFSYS)
	assert.Equal(int64(0), r.SRSYS)
	assert.Equal(int64(5), r.DSG)
	assert.Equal(sc.ephs[0].IODE, r.IOE)
	assert.Equal(int64(0), r.MDTR)
	assert.Equal(int64(0), r.SMDT)
	assert.Equal(int64(0), r.MDIO)
	assert.Equal(int64(0), r.SMDI)
	assert.Equal("L1C", r.FRC)
}

func Test_process_day(t *testing.T) {
	assert := assert.New(t)
	sc := newScenario(t)
	opt := scenarioOptions(t.TempDir())
	outs, err := opt.ResolveOutputs()
	require.NoError(t, err)

	rc := gnsstt.NewRunContext(opt, testMJD, true, nil)
	results, err := rc.ProcessDay(context.Background(), sc.day(), outs[0])
	require.NoError(t, err)
	require.Len(t, results, 1)
	checkScenarioRecord(t, sc, results[0])

	d := rc.Diag
	tracks := func(outcome string) float64 {
		return d.Count("gnsstt_tracks_total", map[string]string{"output": "GPS C1", "outcome": outcome})
	}
	samples := func(reason string) float64 {
		return d.Count("gnsstt_samples_rejected_total", map[string]string{"output": "GPS C1", "reason": reason})
	}
	assert.Equal(1.0, tracks(gnsstt.OutcomeAccepted))
	assert.Equal(1.0, tracks(gnsstt.OutcomeURAExceeded))
	assert.Equal(1.0, tracks("short_track"))
	assert.Equal(26.0, samples("ephemeris_miss"))
	assert.Equal(12.0, samples("range_residual"))

	/* results do not depend on scheduling */
	again, err := gnsstt.NewRunContext(opt, testMJD, true, nil).ProcessDay(context.Background(), sc.day(), outs[0])
	require.NoError(t, err)
	assert.Equal(results, again)

	/* looser ura limit turns the G12 track into a rejected one */
	opt.CGGTTS.MaxURA = 10.0
	rc = gnsstt.NewRunContext(opt, testMJD, true, nil)
	_, err = rc.ProcessDay(context.Background(), sc.day(), outs[0])
	require.NoError(t, err)
	assert.Equal(0.0, rc.Diag.Count("gnsstt_tracks_total",
		map[string]string{"output": "GPS C1", "outcome": gnsstt.OutcomeURAExceeded}))
	assert.Equal(26.0+12.0, rc.Diag.Count("gnsstt_samples_rejected_total",
		map[string]string{"output": "GPS C1", "reason": "range_residual"}))
	assert.Equal(2.0, rc.Diag.Count("gnsstt_tracks_total",
		map[string]string{"output": "GPS C1", "outcome": "short_track"}))
}

func Test_process_day_ordering(t *testing.T) {
	sc := newScenario(t)
	day := sc.day()
	/* same satellite over the next window */
	second := gnsstt.Tracks(testMJD, gnsstt.SECDAY)[11]
	toe := math.Floor(float64(second.Start+390+18)/7200.0) * 7200.0
	e := testEph(5, toe)
	day.Nav.Store.Insert(e)
	c := originCorrector()
	for k := 0; k < 26; k++ {
		tod := float64(second.Start + 30*k)
		day.Obs.Set(satG05, tod, gnsstt.C1, pseudorange(t, c, &e, testGpst(tod), -3.0))
	}
	opt := scenarioOptions(t.TempDir())
	outs, err := opt.ResolveOutputs()
	require.NoError(t, err)

	results, err := gnsstt.NewRunContext(opt, testMJD, true, nil).ProcessDay(context.Background(), day, outs[0])
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, sort.SliceIsSorted(results, func(i, j int) bool { return results[i].Start < results[j].Start }))
	assert.Equal(t, second.Start, results[1].Start)
	assert.Equal(t, int64(-30), results[1].REFSYS)
	assert.Equal(t, int64(0), results[1].DSG)

	/* outputs only see satellites of their system */
	gal := gnsstt.Output{Sys: gnsstt.Galileo, Code: gnsstt.C1}
	results, err = gnsstt.NewRunContext(opt, testMJD, true, nil).ProcessDay(context.Background(), day, gal)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func Test_process_day_cancel(t *testing.T) {
	sc := newScenario(t)
	opt := scenarioOptions(t.TempDir())
	outs, err := opt.ResolveOutputs()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gnsstt.NewRunContext(opt, testMJD, true, nil).ProcessDay(ctx, sc.day(), outs[0])
	assert.True(t, errors.Is(err, context.Canceled))
}

/* write the scenario as rinex files named by the options */
func (sc *scenario) writeFiles(t *testing.T, opt *gnsstt.Options) {
	day0 := gnsstt.MJD2Time(testMJD)
	nav := writeNav2(18, gnsstt.Klobuchar{}, sc.ephs)
	require.NoError(t, os.WriteFile(gnsstt.RepPath(opt.Inputs.Navigation, day0), []byte(nav), 0o644))

	byTod := make(map[float64][]obsSat)
	for sat, m := range sc.obs {
		for tod, pr := range m {
			byTod[tod] = append(byTod[tod], obsSat{id: sat.String(), vals: map[string]float64{"C1": pr}})
		}
	}
	tods := make([]float64, 0, len(byTod))
	for tod := range byTod {
		tods = append(tods, tod)
	}
	sort.Float64s(tods)
	epochs := make([]obsEpoch, 0, len(tods))
	for _, tod := range tods {
		sats := byTod[tod]
		sort.Slice(sats, func(i, j int) bool { return sats[i].id < sats[j].id })
		epochs = append(epochs, obsEpoch{t: testGpst(tod), sats: sats})
	}
	obs := writeObs2("G", []string{"C1", "L1"}, epochs)
	require.NoError(t, os.WriteFile(gnsstt.RepPath(opt.Inputs.Observations, day0), []byte(obs), 0o644))
}

func Test_run(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	sc := newScenario(t)
	opt := scenarioOptions(dir)
	sc.writeFiles(t, opt)

	rc := gnsstt.NewRunContext(opt, testMJD, false, nil)
	written, err := rc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, written, 1)

	out := written[0]
	assert.Equal("GPS C1", out.Output.String())
	assert.Equal(filepath.Join(dir, "cggtts", "57754.cctf"), out.Path)
	require.Len(t, out.Results, 1)
	checkScenarioRecord(t, sc, out.Results[0])

	assert.Equal(3.0, rc.Diag.Count("gnsstt_ephemerides_total", map[string]string{"outcome": "stored"}))

	fp, err := os.Open(out.Path)
	require.NoError(t, err)
	defer fp.Close()
	var rows []string
	sc2 := bufio.NewScanner(fp)
	for sc2.Scan() {
		if strings.HasPrefix(sc2.Text(), "G") && len(sc2.Text()) == 113 {
			rows = append(rows, sc2.Text())
		}
	}
	require.Len(t, rows, 1)
	r, err := gnsstt.ParseRecord(rows[0], gnsstt.V2E, false)
	require.NoError(t, err)
	assert.Equal(out.Results[0], r)

	/* bipm naming */
	opt.CGGTTS.Naming = "bipm"
	written, err = gnsstt.NewRunContext(opt, testMJD, true, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(filepath.Join(dir, "cggtts", "GZXX0157.754"), written[0].Path)
}

func Test_run_errors(t *testing.T) {
	dir := t.TempDir()
	sc := newScenario(t)
	opt := scenarioOptions(dir)

	/* inputs missing */
	_, err := gnsstt.NewRunContext(opt, testMJD, true, nil).Run(context.Background())
	assert.ErrorIs(t, err, gnsstt.ErrNoInput)

	sc.writeFiles(t, opt)
	opt.Inputs.Navigation = filepath.Join(dir, "other%n0.%yn")
	_, err = gnsstt.NewRunContext(opt, testMJD, true, nil).Run(context.Background())
	assert.ErrorIs(t, err, gnsstt.ErrNoInput)
	opt.Inputs.Navigation = filepath.Join(dir, "brdc%n0.%yn")

	/* two outputs on the same file name */
	opt.Outputs = append(opt.Outputs, gnsstt.OutputOpt{Constellation: "GPS", Code: "P1"})
	_, err = gnsstt.NewRunContext(opt, testMJD, true, nil).Run(context.Background())
	assert.ErrorIs(t, err, gnsstt.ErrConfig)

	opt.Outputs = nil
	_, err = gnsstt.NewRunContext(opt, testMJD, true, nil).Run(context.Background())
	assert.ErrorIs(t, err, gnsstt.ErrConfig)
}
