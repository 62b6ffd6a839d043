/*------------------------------------------------------------------------------
* trackfit.go : track regression and quality gates
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

/* corrected points of one satellite in one track window */
type Track struct {
	Sat    SatID
	Start  int
	Stop   int
	Points []CorrectedPoint
}

/* quality limits */
type FitLimits struct {
	MinElevation   float64 /* deg */
	MaxDSG         float64 /* ns */
	MinTrackLength int     /* s */
}

func DefaultFitLimits() FitLimits {
	return FitLimits{MinElevation: 10.0, MaxDSG: 100.0, MinTrackLength: 390}
}

/* cggtts record in fixed point --------------------------------------------------
* angles in 0.1 deg, delays in 0.1 ns, slopes in 0.1 ps/s
*-----------------------------------------------------------------------------*/
type TrackResult struct {
	Sat         SatID
	Class       string
	MJD         int
	Start       int /* s of day */
	TrackLength int /* s */
	Elevation   int
	Azimuth     int
	REFSV       int64
	SRSV        int64
	REFSYS      int64
	SRSYS       int64
	DSG         int64
	IOE         int
	MDTR        int64
	SMDT        int64
	MDIO        int64
	SMDI        int64
	MSIO        int64
	SMSI        int64
	ISG         int64
	FR          int
	HC          int
	FRC         string
	Dual        bool
}

/* straight line fit at a reference time */
type LineFit struct {
	Mid   float64 /* value at reference time */
	Slope float64 /* per second */
	RMS   float64 /* rms of residuals */
}

/* least squares line ------------------------------------------------------------
* args   : t        I   times (s)
*          y        I   values
*          tc       I   reference time (s)
* return : fit at tc
*-----------------------------------------------------------------------------*/
func FitLine(t, y []float64, tc float64) LineFit {
	n := len(t)
	if n == 0 {
		return LineFit{}
	}
	x := make([]float64, n)
	for i := range t {
		x[i] = t[i] - tc
	}
	if n == 1 {
		return LineFit{Mid: y[0]}
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)

	res := make([]float64, n)
	for i := range x {
		res[i] = y[i] - (alpha + beta*x[i])
	}
	return LineFit{Mid: alpha, Slope: beta, RMS: math.Sqrt(floats.Dot(res, res) / float64(n))}
}

/* continuous azimuth series across north (deg) */
func unwrapAz(az []float64) []float64 {
	out := make([]float64, len(az))
	off := 0.0
	for i := range az {
		if i > 0 {
			d := az[i] + off - out[i-1]
			if d > 180.0 {
				off -= 360.0
			} else if d < -180.0 {
				off += 360.0
			}
		}
		out[i] = az[i] + off
	}
	return out
}

/* fixed point with round half away from zero */
func fix(v, scale float64) int64 {
	return int64(math.Round(v * scale))
}

/* fit a track -------------------------------------------------------------------
* regression of each observable against the track midpoint start+390 s,
* followed by the quality gates.
* args   : tr       I   track with corrected points
*          mjd      I   modified julian date of the day
*          frc      I   frequency code
*          dual     I   dual frequency (fit msio)
*          lim      I   quality limits
* return : record, error
*          ErrShortTrack, ErrLowElevation, ErrHighDSG
*-----------------------------------------------------------------------------*/
func FitTrack(tr *Track, mjd int, frc string, dual bool, lim FitLimits) (TrackResult, error) {
	var res TrackResult
	n := len(tr.Points)

	if n == 0 || n*EPOCH_INTERVAL < lim.MinTrackLength {
		return res, ErrShortTrack
	}
	tc := float64(tr.Start + TRACK_LEN/2)

	t := make([]float64, n)
	el, az := make([]float64, n), make([]float64, n)
	refsv, refsys := make([]float64, n), make([]float64, n)
	mdtr, mdio, msio := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, p := range tr.Points {
		t[i], el[i], az[i] = p.Tod, p.El, p.Az
		refsv[i], refsys[i] = p.REFSV, p.REFSYS
		mdtr[i], mdio[i], msio[i] = p.MDTR, p.MDIO, p.MSIO
	}
	fel := FitLine(t, el, tc)
	if fel.Mid < lim.MinElevation {
		return res, ErrLowElevation
	}
	fsys := FitLine(t, refsys, tc)
	if fsys.RMS > lim.MaxDSG {
		return res, ErrHighDSG
	}
	faz := FitLine(t, unwrapAz(az), tc)
	fsv := FitLine(t, refsv, tc)
	ftr := FitLine(t, mdtr, tc)
	fio := FitLine(t, mdio, tc)

	azm := math.Mod(faz.Mid, 360.0)
	if azm < 0.0 {
		azm += 360.0
	}
	res = TrackResult{
		Sat:         tr.Sat,
		Class:       "FF",
		MJD:         mjd,
		Start:       tr.Start,
		TrackLength: n * EPOCH_INTERVAL,
		Elevation:   int(fix(fel.Mid, 10)),
		Azimuth:     int(fix(azm, 10) % 3600),
		REFSV:       fix(fsv.Mid, 10),
		SRSV:        fix(fsv.Slope, 1e4),
		REFSYS:      fix(fsys.Mid, 10),
		SRSYS:       fix(fsys.Slope, 1e4),
		DSG:         fix(fsys.RMS, 10),
		IOE:         tr.Points[n/2].IOE,
		MDTR:        fix(ftr.Mid, 10),
		SMDT:        fix(ftr.Slope, 1e4),
		MDIO:        fix(fio.Mid, 10),
		SMDI:        fix(fio.Slope, 1e4),
		FRC:         frc,
		Dual:        dual,
	}
	if dual {
		fms := FitLine(t, msio, tc)
		res.MSIO = fix(fms.Mid, 10)
		res.SMSI = fix(fms.Slope, 1e4)
		res.ISG = fix(fms.RMS, 10)
	}
	return res, nil
}
