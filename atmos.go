/*------------------------------------------------------------------------------
* atmos.go : tropospheric and ionospheric delay models
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* references :
*     [1] IS-GPS-200, 20.3.3.5.2.5 ionospheric model
*     [2] NATO STANAG 4294, tropospheric refraction model
*
*-----------------------------------------------------------------------------*/
package gnsstt

import "math"

/* broadcast ionosphere coefficients {a0,a1,a2,a3} {b0,b1,b2,b3} */
type Klobuchar struct {
	Alpha [4]float64
	Beta  [4]float64
}

func (k Klobuchar) IsZero() bool {
	return k == Klobuchar{}
}

/* ionosphere model ------------------------------------------------------------
* L1 ionospheric delay by the broadcast Klobuchar model
* args   : t        I   time (gpst)
*          pos      I   receiver position {lat,lon,h} (rad,m)
*          az,el    I   azimuth/elevation angle (rad)
* return : ionospheric delay (L1) (ns)
* notes  : all-zero coefficients give no delay
*-----------------------------------------------------------------------------*/
func (k Klobuchar) Delay(t Gtime, pos [3]float64, az, el float64) float64 {
	if pos[2] < -1e3 || el <= 0 || k.IsZero() {
		return 0.0
	}
	/* earth centered angle (semi-circle) */
	psi := 0.0137/(el/PI+0.11) - 0.022

	/* subionospheric latitude/longitude (semi-circle) */
	phi := pos[0]/PI + psi*math.Cos(az)
	if phi > 0.416 {
		phi = 0.416
	} else if phi < -0.416 {
		phi = -0.416
	}
	lam := pos[1]/PI + psi*math.Sin(az)/math.Cos(phi*PI)

	/* geomagnetic latitude (semi-circle) */
	phi += 0.064 * math.Cos((lam-1.617)*PI)

	/* local time (s) */
	tow, _ := Time2GpsT(t)
	tt := 43200.0*lam + tow
	tt -= math.Floor(tt/86400.0) * 86400.0

	/* slant factor */
	f := 1.0 + 16.0*math.Pow(0.53-el/PI, 3.0)

	amp := k.Alpha[0] + phi*(k.Alpha[1]+phi*(k.Alpha[2]+phi*k.Alpha[3]))
	per := k.Beta[0] + phi*(k.Beta[1]+phi*(k.Beta[2]+phi*k.Beta[3]))
	if amp < 0.0 {
		amp = 0.0
	}
	if per < 72000.0 {
		per = 72000.0
	}
	x := 2.0 * PI * (tt - 50400.0) / per
	if math.Abs(x) < 1.57 {
		return 1e9 * f * (5e-9 + amp*(1.0+x*x*(-0.5+x*x/24.0)))
	}
	return 1e9 * f * 5e-9
}

/* troposphere model -------------------------------------------------------------
* three layer exponential refractivity profile scaled by surface refractivity,
* integrated from the antenna height, with an elevation mapping function
* args   : el       I   elevation angle (rad)
*          h        I   antenna height (m), negative heights are taken as 0
*          ns       I   surface refractivity (N units, 0: model off)
* return : tropospheric delay (ns)
*-----------------------------------------------------------------------------*/
func TropDelay(el, h, ns float64) float64 {
	if ns <= 0.0 {
		return 0.0
	}
	return TropZenith(h, ns) / CLIGHT * 1e9 * TropMap(el)
}

/* zenith delay (m) */
func TropZenith(h, ns float64) float64 {
	if ns <= 0.0 {
		return 0.0
	}
	hk := math.Max(h, 0.0) / 1000.0 /* km */

	dn := -7.32 * math.Exp(0.005577*ns)
	n1 := ns + dn /* refractivity at 1 km */
	c := math.Log(n1/105.0) / 8.0

	var integral float64 /* N km */
	if hk < 1.0 {
		integral += ns*(1.0-hk) + dn*(1.0-hk*hk)/2.0
	}
	if lo := math.Max(hk, 1.0); lo < 9.0 {
		integral += n1 / c * (math.Exp(-c*(lo-1.0)) - math.Exp(-c*8.0))
	}
	lo := math.Max(hk, 9.0)
	integral += 105.0 / 0.1424 * math.Exp(-0.1424*(lo-9.0))

	return 1e-3 * integral
}

/* elevation mapping function */
func TropMap(el float64) float64 {
	if el < 0.0 {
		el = 0.0
	}
	return 1.0 / (math.Sin(el) + 0.00143/(math.Tan(el)+0.0455))
}
