/*------------------------------------------------------------------------------
* coord.go : antenna coordinates, local frames and satellite geometry
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

/* receiver antenna ------------------------------------------------------------
* fixed ecef position (m) and frame label. geodetic position {lat,lon,h}
* (rad,m) is derived once at construction.
*-----------------------------------------------------------------------------*/
type Antenna struct {
	X, Y, Z float64
	Frame   string
	pos     [3]float64
}

func NewAntenna(x, y, z float64, frame string) Antenna {
	a := Antenna{X: x, Y: y, Z: z, Frame: frame}
	a.pos = Ecef2Pos(a.ECEF())
	return a
}

func (a Antenna) ECEF() r3.Vec { return r3.Vec{X: a.X, Y: a.Y, Z: a.Z} }

/* geodetic position {lat,lon,h} (rad,m) */
func (a Antenna) Pos() [3]float64 { return a.pos }

/* transform ecef to geodetic position -----------------------------------------
* args   : r        I   ecef position {x,y,z} (m)
* return : geodetic position {lat,lon,h} (rad,m)
* notes  : WGS84, ellipsoidal height
*-----------------------------------------------------------------------------*/
func Ecef2Pos(r r3.Vec) [3]float64 {
	var pos [3]float64
	e2 := FE_WGS84 * (2.0 - FE_WGS84)
	r2 := r.X*r.X + r.Y*r.Y
	v := RE_WGS84

	z, zk := r.Z, 0.0
	for math.Abs(z-zk) >= 1e-4 {
		zk = z
		sinp := z / math.Sqrt(r2+z*z)
		v = RE_WGS84 / math.Sqrt(1.0-e2*sinp*sinp)
		z = r.Z + v*e2*sinp
	}
	switch {
	case r2 > 1e-12:
		pos[0] = math.Atan(z / math.Sqrt(r2))
		pos[1] = math.Atan2(r.Y, r.X)
	case r.Z > 0.0:
		pos[0] = PI / 2.0
	default:
		pos[0] = -PI / 2.0
	}
	pos[2] = math.Sqrt(r2+z*z) - v
	return pos
}

/* transform geodetic to ecef position ---------------------------------------*/
func Pos2Ecef(pos [3]float64) r3.Vec {
	sinp, cosp := math.Sin(pos[0]), math.Cos(pos[0])
	sinl, cosl := math.Sin(pos[1]), math.Cos(pos[1])
	e2 := FE_WGS84 * (2.0 - FE_WGS84)
	v := RE_WGS84 / math.Sqrt(1.0-e2*sinp*sinp)

	return r3.Vec{
		X: (v + pos[2]) * cosp * cosl,
		Y: (v + pos[2]) * cosp * sinl,
		Z: (v*(1.0-e2) + pos[2]) * sinp,
	}
}

/* transform ecef vector to local east-north-up ------------------------------*/
func Ecef2Enu(pos [3]float64, r r3.Vec) r3.Vec {
	sinp, cosp := math.Sin(pos[0]), math.Cos(pos[0])
	sinl, cosl := math.Sin(pos[1]), math.Cos(pos[1])

	return r3.Vec{
		X: -sinl*r.X + cosl*r.Y,
		Y: -sinp*cosl*r.X - sinp*sinl*r.Y + cosp*r.Z,
		Z: cosp*cosl*r.X + cosp*sinl*r.Y + sinp*r.Z,
	}
}

/* geometric distance with earth rotation ----------------------------------------
* the antenna is rotated into the ecef frame of the transmit time by
* omge*range/c before the distance is taken.
* args   : rs       I   satellite position at transmit time (ecef, m)
*          rr       I   antenna position (ecef, m)
*          omge     I   earth rotation rate of the satellite system (rad/s)
* return : range (m), receiver-to-satellite unit vector (ecef)
*-----------------------------------------------------------------------------*/
func GeoDist(rs, rr r3.Vec, omge float64) (float64, r3.Vec) {
	los := r3.Sub(rs, rr)
	rng := r3.Norm(los)

	a := omge * rng / CLIGHT
	sina, cosa := math.Sin(a), math.Cos(a)
	rot := r3.Vec{
		X: rr.X*cosa - rr.Y*sina,
		Y: rr.X*sina + rr.Y*cosa,
		Z: rr.Z,
	}
	return r3.Norm(r3.Sub(rs, rot)), r3.Unit(los)
}

/* satellite azimuth/elevation angle ---------------------------------------------
* args   : pos      I   geodetic position {lat,lon,h} (rad,m)
*          e        I   receiver-to-satellite unit vector (ecef)
* return : azimuth (0<=az<2pi), elevation (-pi/2<=el<=pi/2) (rad)
*-----------------------------------------------------------------------------*/
func SatAzel(pos [3]float64, e r3.Vec) (az, el float64) {
	az, el = 0.0, PI/2.0

	if pos[2] > -RE_WGS84 {
		enu := Ecef2Enu(pos, e)
		if enu.X*enu.X+enu.Y*enu.Y >= 1e-12 {
			az = math.Atan2(enu.X, enu.Y)
		}
		if az < 0.0 {
			az += 2 * PI
		}
		el = math.Asin(enu.Z)
	}
	return az, el
}
