/*------------------------------------------------------------------------------
* process.go : day processing
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* notes   : inputs are loaded fully before processing. (track, satellite) jobs
*           run on a bounded worker pool, each job writes its own result slot.
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

/* run context ---------------------------------------------------------------------*/
type RunContext struct {
	ID      uuid.UUID
	Opt     *Options
	Trace   *Tracer
	Diag    *Diagnostics
	MJD     int
	Shorten bool /* do not read next day data */
}

func NewRunContext(opt *Options, mjd int, shorten bool, tr *Tracer) *RunContext {
	return &RunContext{
		ID:      uuid.New(),
		Opt:     opt,
		Trace:   tr,
		Diag:    NewDiagnostics(),
		MJD:     mjd,
		Shorten: shorten,
	}
}

/* loaded inputs of a day ----------------------------------------------------------
* Leap is utc-gpst (s). Limit is the end of the observation grid (s of day).
*-----------------------------------------------------------------------------*/
type DayData struct {
	MJD   int
	Day0  Gtime
	Leap  float64
	Nav   *NavData
	Obs   *ObsGrid
	Limit int
}

/* utc-gpst of the day: option override, nav header, table */
func (rc *RunContext) leap(day0 Gtime, nav *NavData) float64 {
	if rc.Opt.Inputs.LeapSeconds != 0 {
		return -float64(rc.Opt.Inputs.LeapSeconds)
	}
	if nav.Leap != 0 {
		return float64(nav.Leap)
	}
	return LeapSeconds(day0)
}

/* load navigation and observation data ------------------------------------------
* the day's files are required. next day files extend the last tracks past
* 24h unless shortened, missing ones are traced and skipped.
*-----------------------------------------------------------------------------*/
func LoadDay(ctx context.Context, rc *RunContext) (*DayData, error) {
	day0 := MJD2Time(rc.MJD)
	next := TimeAdd(day0, SECDAY)
	in := &rc.Opt.Inputs

	nav := NewNavData()
	file := RepPath(in.Navigation, day0)
	n, err := ReadRnxNavFile(file, nav, rc.Trace)
	if err != nil {
		return nil, err
	}
	rc.Trace.Trace(2, "navigation: file=%s n=%d\n", file, n)
	if !rc.Shorten {
		file = RepPath(in.Navigation, next)
		if n, err = ReadRnxNavFile(file, nav, rc.Trace); err != nil {
			rc.Trace.Trace(2, "next day navigation skipped: %v\n", err)
		} else {
			rc.Trace.Trace(2, "navigation: file=%s n=%d\n", file, n)
		}
	}
	rc.Diag.Ephemerides(nav.Store.Len(), nav.Store.Duplicates(), nav.Store.Invalid())

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	day := &DayData{MJD: rc.MJD, Day0: day0, Nav: nav, Limit: SECDAY}
	day.Leap = rc.leap(day0, nav)

	slots := EPOCHS_PER_DAY
	if !rc.Shorten {
		slots += (TRACK_LEN + EPOCH_INTERVAL - 1) / EPOCH_INTERVAL
	}
	day.Obs = NewObsGrid(rc.MJD, slots)
	rd := &ObsReader{Grid: day.Obs, Day0: day0, Leap: day.Leap, Trace: rc.Trace}

	file = RepPath(in.Observations, day0)
	if n, err = rd.ReadFile(file); err != nil {
		return nil, err
	}
	rc.Trace.Trace(2, "observation: file=%s n=%d\n", file, n)
	if !rc.Shorten {
		file = RepPath(in.Observations, next)
		if n, err = rd.ReadFile(file); err != nil {
			rc.Trace.Trace(2, "next day observation skipped: %v\n", err)
		} else {
			rc.Trace.Trace(2, "observation: file=%s n=%d\n", file, n)
			day.Limit = slots * EPOCH_INTERVAL
		}
	}
	return day, nil
}

func (rc *RunContext) corrector(day *DayData, out Output) *Corrector {
	return &Corrector{
		Sys:     out.Sys,
		Code:    out.Code,
		Antenna: rc.Opt.AntennaPos(),
		Ion:     day.Nav.Ion(out.Sys),
		IonB1I:  out.Sys == BeiDou && !day.Nav.IonBDS.IsZero(),
		Ns:      rc.Opt.CGGTTS.SurfaceRefractivity,
		Delay:   out.Delays.Applied(out.Code),
	}
}

/* process one (track, satellite) --------------------------------------------------
* return : record, nil if the track produced none (rejections are counted)
*-----------------------------------------------------------------------------*/
func (rc *RunContext) processTrack(day *DayData, out Output, corr *Corrector, tr TrackSlot,
	sat SatID) *TrackResult {
	name := out.String()

	samples := Window(day.Obs, tr, sat, out.Code)
	if len(samples) == 0 {
		return nil
	}
	/* one ephemeris per track, selected at the track midpoint */
	mid := TimeAdd(day.Day0, float64(tr.Start+TRACK_LEN/2)-day.Leap)
	tow := SysTow(sat.Sys, mid)
	eph, ok := day.Nav.Store.Nearest(sat, tow, rc.Opt.CGGTTS.MaxURA)
	if !ok {
		if _, ok := day.Nav.Store.Nearest(sat, tow, math.Inf(1)); ok {
			rc.Trace.Trace(4, "ura exceeded: sat=%s start=%d\n", sat, tr.Start)
			rc.Diag.TrackURAExceeded(name)
			return nil
		}
		for range samples {
			rc.Diag.SampleRejected(name, ErrEphemerisMiss)
		}
		return nil
	}
	trk := Track{Sat: sat, Start: tr.Start, Stop: tr.Stop}
	for _, s := range samples {
		gpst := TimeAdd(day.Day0, s.Tod-day.Leap)
		pt, err := corr.Correct(eph, gpst, s)
		if err != nil {
			rc.Trace.Trace(5, "sample rejected: sat=%s tod=%.0f err=%v\n", sat, s.Tod, err)
			rc.Diag.SampleRejected(name, err)
			continue
		}
		trk.Points = append(trk.Points, pt)
	}
	res, err := FitTrack(&trk, day.MJD, FreqCode(out.Sys, out.Code), out.Code.DualFrequency(),
		rc.Opt.Limits())
	if err != nil {
		rc.Trace.Trace(4, "track rejected: sat=%s start=%d n=%d err=%v\n", sat, tr.Start,
			len(trk.Points), err)
		rc.Diag.TrackRejected(name, err)
		return nil
	}
	rc.Diag.TrackAccepted(name)
	return &res
}

/* process a day for one output -----------------------------------------------------
* args   : ctx      I   context
*          day      I   loaded inputs
*          out      I   output
* return : records sorted by (start, satellite), error
*-----------------------------------------------------------------------------*/
func (rc *RunContext) ProcessDay(ctx context.Context, day *DayData, out Output) ([]TrackResult, error) {
	type job struct {
		tr  TrackSlot
		sat SatID
	}
	var jobs []job
	sats := day.Obs.Satellites(out.Sys)
	for _, tr := range Tracks(day.MJD, day.Limit) {
		for _, sat := range sats {
			jobs = append(jobs, job{tr, sat})
		}
	}
	rc.Trace.Trace(3, "processday: output=%s sats=%d jobs=%d\n", out, len(sats), len(jobs))

	corr := rc.corrector(day, out)
	slots := make([]*TrackResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range jobs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = rc.processTrack(day, out, corr, jobs[i].tr, jobs[i].sat)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	results := make([]TrackResult, 0, len(jobs))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Start != results[j].Start {
			return results[i].Start < results[j].Start
		}
		return results[i].Sat.Less(results[j].Sat)
	})
	return results, nil
}

/* records of one written output */
type OutputResult struct {
	Output  Output
	Path    string
	Results []TrackResult
}

/* process all outputs of a day and write the cggtts files -------------------------
* args   : ctx      I   context
* return : written outputs, error (ErrConfig, ErrNoInput, ErrFieldOverflow,
*          ErrFileWrite)
*-----------------------------------------------------------------------------*/
func (rc *RunContext) Run(ctx context.Context) ([]OutputResult, error) {
	outs, err := rc.Opt.ResolveOutputs()
	if err != nil {
		return nil, err
	}
	naming, _ := ParseNaming(rc.Opt.CGGTTS.Naming)

	rc.Trace.Tracet(1, "run: id=%s mjd=%d outputs=%d\n", rc.ID, rc.MJD, len(outs))
	day, err := LoadDay(ctx, rc)
	if err != nil {
		return nil, err
	}
	dir := rc.Opt.CGGTTS.OutputDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	var written []OutputResult
	for _, out := range outs {
		results, err := rc.ProcessDay(ctx, day, out)
		if err != nil {
			return written, err
		}
		name := FileName(naming, out.Sys, out.Code.DualFrequency(), rc.Opt.Lab.Code,
			rc.Opt.Lab.ReceiverCode, rc.MJD)
		path := filepath.Join(dir, name)
		for _, o := range written {
			if o.Path == path {
				return written, fmt.Errorf("%w: outputs %s and %s write the same file %s",
					ErrConfig, o.Output, out, path)
			}
		}
		if err := WriteCGGTTSFile(path, rc.Opt.Header(out), results); err != nil {
			if errors.Is(err, ErrFieldOverflow) {
				return written, fmt.Errorf("%s: %w", path, err)
			}
			return written, err
		}
		rc.Trace.Tracet(2, "output: %s file=%s tracks=%d\n", out, path, len(results))
		written = append(written, OutputResult{Output: out, Path: path, Results: results})
	}
	return written, nil
}
