/*------------------------------------------------------------------------------
* orbit.go : satellite orbit and clock from broadcast ephemeris
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* references :
*     [1] IS-GPS-200, 20.3.3.4.3 user algorithm for ephemeris determination
*     [2] Galileo OS SIS ICD, 5.1.1 ephemeris
*     [3] BeiDou SIS ICD open service signal B1I, 5.2.4.12 GEO satellites
*
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	SIN_5 = -0.0871557427476582 /* sin(-5.0 deg) */
	COS_5 = 0.9961946980917456  /* cos(-5.0 deg) */
)

/* wrap a time difference into [-302400,302400] */
func weekWrap(dt float64) float64 {
	if dt > HALFWEEK {
		dt -= SECWEEK
	} else if dt < -HALFWEEK {
		dt += SECWEEK
	}
	return dt
}

/* beidou geostationary satellite */
func (s SatID) geo() bool {
	return s.Sys == BeiDou && (s.PRN <= 5 || s.PRN >= 59)
}

/* solve kepler equation and satellite position ----------------------------------
* args   : eph      I   broadcast ephemeris
*          t        I   transmit time (s of week, system time)
* return : eccentric anomaly (rad), satellite position at t (ecef, m), error
*          ErrOrbitDivergence if newton iteration does not converge within
*          MAX_ITER_KEPLER steps
*-----------------------------------------------------------------------------*/
func SolveKepler(eph *Ephemeris, t float64) (float64, r3.Vec, error) {
	mu, omge := eph.Sat.Sys.mu(), eph.Sat.Sys.omge()

	A := eph.SqrtA * eph.SqrtA
	if A <= 0.0 {
		return 0, r3.Vec{}, ErrOrbitDivergence
	}
	tk := weekWrap(t - eph.Toe)
	M := eph.M0 + (math.Sqrt(mu/(A*A*A))+eph.Deln)*tk

	E, converged := M, false
	for n := 0; n < MAX_ITER_KEPLER; n++ {
		dE := (E - eph.E*math.Sin(E) - M) / (1.0 - eph.E*math.Cos(E))
		E -= dE
		if math.Abs(dE) < RTOL_KEPLER {
			converged = true
			break
		}
	}
	if !converged {
		return 0, r3.Vec{}, ErrOrbitDivergence
	}
	sinE, cosE := math.Sin(E), math.Cos(E)

	u := math.Atan2(math.Sqrt(1.0-eph.E*eph.E)*sinE, cosE-eph.E) + eph.Omg
	r := A * (1.0 - eph.E*cosE)
	i := eph.I0 + eph.Idot*tk
	sin2u, cos2u := math.Sin(2.0*u), math.Cos(2.0*u)
	u += eph.Cus*sin2u + eph.Cuc*cos2u
	r += eph.Crs*sin2u + eph.Crc*cos2u
	i += eph.Cis*sin2u + eph.Cic*cos2u
	x, y := r*math.Cos(u), r*math.Sin(u)
	cosi := math.Cos(i)

	if eph.Sat.geo() {
		O := eph.OMG0 + eph.OMGd*tk - omge*eph.Toe
		sinO, cosO := math.Sin(O), math.Cos(O)
		xg := x*cosO - y*cosi*sinO
		yg := x*sinO + y*cosi*cosO
		zg := y * math.Sin(i)
		sino, coso := math.Sin(omge*tk), math.Cos(omge*tk)
		return E, r3.Vec{
			X: xg*coso + yg*sino*COS_5 + zg*sino*SIN_5,
			Y: -xg*sino + yg*coso*COS_5 + zg*coso*SIN_5,
			Z: -yg*SIN_5 + zg*COS_5,
		}, nil
	}
	O := eph.OMG0 + (eph.OMGd-omge)*tk - omge*eph.Toe
	sinO, cosO := math.Sin(O), math.Cos(O)
	return E, r3.Vec{
		X: x*cosO - y*cosi*sinO,
		Y: x*sinO + y*cosi*cosO,
		Z: y * math.Sin(i),
	}, nil
}

/* satellite clock polynomial ------------------------------------------------------
* args   : eph      I   broadcast ephemeris
*          t        I   time by satellite clock (s of week, system time)
* return : clock bias af0+af1*dt+af2*dt^2 (s), without relativity and group
*          delay. dt is solved for the clock bias itself.
*-----------------------------------------------------------------------------*/
func ClockPoly(eph *Ephemeris, t float64) float64 {
	ts := weekWrap(t - eph.Toc)
	dt := ts
	for i := 0; i < 2; i++ {
		dt = ts - (eph.Af0 + eph.Af1*dt + eph.Af2*dt*dt)
	}
	return eph.Af0 + eph.Af1*dt + eph.Af2*dt*dt
}

/* relativistic clock correction F*e*sqrtA*sin(E) (s) */
func Relativity(eph *Ephemeris, E float64) float64 {
	return F_REL * eph.E * eph.SqrtA * math.Sin(E)
}

/* satellite clock correction ------------------------------------------------------
* polynomial plus relativistic term at t, E from SolveKepler at t (s)
*-----------------------------------------------------------------------------*/
func SatClock(eph *Ephemeris, t, E float64) float64 {
	return ClockPoly(eph, t) + Relativity(eph, E)
}
