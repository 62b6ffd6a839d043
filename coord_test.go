/*------------------------------------------------------------------------------
* gnsstt unit test driver : coordinates and geometry
*-----------------------------------------------------------------------------*/
package gnsstt_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"gnsstt"
)

/* ecef2pos(), pos2ecef() */
func Test_ecef2pos(t *testing.T) {
	assert := assert.New(t)
	D2R := gnsstt.D2R
	for _, pos := range [][3]float64{
		{35 * D2R, 140 * D2R, 100.0},
		{-80 * D2R, -170 * D2R, 1000.0},
		{48.8 * D2R, 2.3 * D2R, 75.0},
		{0.0, 0.0, 0.0},
	} {
		p := gnsstt.Ecef2Pos(gnsstt.Pos2Ecef(pos))
		assert.InDelta(pos[0], p[0], 1e-9)
		assert.InDelta(pos[1], p[1], 1e-9)
		assert.InDelta(pos[2], p[2], 1e-3)
	}
	r := gnsstt.Pos2Ecef([3]float64{0, 0, 0})
	assert.InDelta(gnsstt.RE_WGS84, r.X, 1e-6)

	/* ecef origin */
	o := gnsstt.NewAntenna(0, 0, 0, "ITRF").Pos()
	assert.InDelta(-gnsstt.RE_WGS84, o[2], 1e-6)
}

/* satazel() */
func Test_satazel(t *testing.T) {
	assert := assert.New(t)
	pos := [3]float64{45 * gnsstt.D2R, 10 * gnsstt.D2R, 0.0}
	rr := gnsstt.Pos2Ecef(pos)

	up := gnsstt.Pos2Ecef([3]float64{pos[0], pos[1], 2.0e7})
	_, el := gnsstt.SatAzel(pos, r3.Unit(r3.Sub(up, rr)))
	assert.InDelta(90.0, el*gnsstt.R2D, 1e-5)

	/* east on the horizon */
	east := r3.Vec{X: -math.Sin(pos[1]), Y: math.Cos(pos[1]), Z: 0.0}
	az, el := gnsstt.SatAzel(pos, east)
	assert.InDelta(90.0, az*gnsstt.R2D, 1e-9)
	assert.InDelta(0.0, el, 1e-9)

	/* west gives 270, not -90 */
	az, _ = gnsstt.SatAzel(pos, r3.Scale(-1, east))
	assert.InDelta(270.0, az*gnsstt.R2D, 1e-9)

	/* antenna at the ecef origin sees every satellite at zenith */
	az, el = gnsstt.SatAzel(gnsstt.NewAntenna(0, 0, 0, "").Pos(), r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3}))
	assert.Equal(0.0, az)
	assert.Equal(gnsstt.PI/2.0, el)
}

/* geodist() */
func Test_geodist(t *testing.T) {
	assert := assert.New(t)
	rs := r3.Vec{X: 1.5e7, Y: 1.8e7, Z: 1.2e7}
	rr := r3.Vec{X: 4.0e6, Y: 1.0e6, Z: 4.8e6}

	rng, e := gnsstt.GeoDist(rs, rr, 0.0)
	assert.InDelta(r3.Norm(r3.Sub(rs, rr)), rng, 1e-6)
	assert.InDelta(1.0, r3.Norm(e), 1e-12)

	rng, _ = gnsstt.GeoDist(rs, rr, gnsstt.OMGE)
	sagnac := gnsstt.OMGE * (rs.X*rr.Y - rs.Y*rr.X) / gnsstt.CLIGHT
	assert.InDelta(r3.Norm(r3.Sub(rs, rr))+sagnac, rng, 1e-2)
	assert.Greater(math.Abs(sagnac), 10.0)
}
