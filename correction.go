/*------------------------------------------------------------------------------
* correction.go : per-epoch pseudorange corrections
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* references :
*     [1] IS-GPS-200, 20.3.3.3.3 user algorithm for sv clock correction
*     [2] CCTF-CGGTTS V2E, 2015
*
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"math"
)

/* corrected observables of one epoch, delays and clocks in ns, angles in deg */
type CorrectedPoint struct {
	Tod          float64
	Az, El       float64
	ClockOffset  float64 /* satellite clock incl. relativity and group delay */
	Relativistic float64
	GroupDelay   float64
	MDTR         float64
	MDIO         float64 /* modelled ionosphere for the code */
	MSIO         float64 /* measured ionosphere (dual frequency) */
	REFSV        float64
	REFSYS       float64
	IOE          int
}

/* correction context of one output ------------------------------------------------
* Delay is the total instrumental delay of the output code (ns).
* Ion gives the L1 delay unless IonB1I (beidou broadcast coefficients).
*-----------------------------------------------------------------------------*/
type Corrector struct {
	Sys     Constellation
	Code    Code
	Antenna Antenna
	Ion     Klobuchar
	IonB1I  bool
	Ns      float64
	Delay   float64
}

/* group delay of the code (s) */
func (c *Corrector) groupDelay(eph *Ephemeris) float64 {
	switch c.Code {
	case P2:
		return GAMMA12 * eph.TGD
	case P3:
		return 0.0
	}
	return eph.TGD
}

/* correct one observation -------------------------------------------------------
* args   : eph      I   selected ephemeris (nil: none)
*          gpst     I   reception time by receiver clock (gpst)
*          s        I   pseudorange sample
* return : corrected point, error
*          ErrEphemerisMiss, ErrBadHealth, ErrNoObservation,
*          ErrOrbitDivergence, ErrRangeResidual
*-----------------------------------------------------------------------------*/
func (c *Corrector) Correct(eph *Ephemeris, gpst Gtime, s Sample) (CorrectedPoint, error) {
	var pt CorrectedPoint

	if eph == nil {
		return pt, ErrEphemerisMiss
	}
	if eph.Health != 0 {
		return pt, ErrBadHealth
	}
	pr, ok := s.Pseudorange(c.Code)
	if !ok {
		return pt, ErrNoObservation
	}
	pt.Tod, pt.IOE = s.Tod, eph.IODE

	/* transmit time by satellite clock, then by system time */
	trx := SysTow(c.Sys, gpst)
	ttx := trx - pr/CLIGHT
	ttx -= ClockPoly(eph, ttx)

	E, rs, err := SolveKepler(eph, ttx)
	if err != nil {
		return pt, err
	}
	rel := Relativity(eph, E)
	tgd := c.groupDelay(eph)
	dts := ClockPoly(eph, ttx) + rel - tgd

	rr := c.Antenna.ECEF()
	rng, los := GeoDist(rs, rr, c.Sys.omge())

	if resid := (pr/CLIGHT + dts - rng/CLIGHT) * 1e9; math.Abs(resid) >= MAX_RESIDUAL_NS {
		return pt, ErrRangeResidual
	}
	pos := c.Antenna.Pos()
	az, el := SatAzel(pos, los)
	if el < 0.0 {
		el = 0.0
	}
	pt.Az, pt.El = az*R2D, el*R2D

	/* ellipsoidal height stands in for height above sea level (no geoid) */
	pt.MDTR = TropDelay(el, pos[2], c.Ns)
	pt.MDIO = c.Ion.Delay(gpst, pos, az, el)
	if c.Sys == BeiDou && !c.IonB1I {
		pt.MDIO *= GAMMA1C
	}
	applied := pt.MDIO
	switch c.Code {
	case P2:
		pt.MDIO *= GAMMA12
		applied = pt.MDIO
	case P3:
		applied = 0.0
		pt.MSIO = (s.P2 - s.P1) / (GAMMA12 - 1.0) / CLIGHT * 1e9
	}
	pt.ClockOffset = dts * 1e9
	pt.Relativistic = rel * 1e9
	pt.GroupDelay = tgd * 1e9
	pt.REFSV = (pr-rng)/CLIGHT*1e9 - pt.MDTR - applied - c.Delay
	pt.REFSYS = pt.REFSV + pt.ClockOffset
	return pt, nil
}
