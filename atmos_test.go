/*------------------------------------------------------------------------------
* gnsstt unit test driver : atmospheric models
*-----------------------------------------------------------------------------*/
package gnsstt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gnsstt"
)

/* metres of l1 delay to ns */
func m2ns(m float64) float64 { return m / gnsstt.CLIGHT * 1e9 }

/* klobuchar.delay() */
func Test_klobuchar(t *testing.T) {
	t1 := gnsstt.Epoch2Time([6]float64{2007, 1, 16, 1, 0, 0})
	t2 := gnsstt.Epoch2Time([6]float64{2007, 1, 16, 13, 0, 0})
	t3 := gnsstt.Epoch2Time([6]float64{2007, 1, 16, 22, 0, 0})
	ion := gnsstt.Klobuchar{
		Alpha: [4]float64{0.2e-7, -0.8e-8, -0.5e-7, 0.1e-6},
		Beta:  [4]float64{0.2e+6, 0.2e+6, -0.1e+6, -0.1e+7},
	}
	D2R := gnsstt.D2R
	pos1 := [3]float64{35 * D2R, 140 * D2R, 100.0}
	pos2 := [3]float64{-80 * D2R, -170 * D2R, 1000.0}
	pos3 := [3]float64{10 * D2R, 30 * D2R, 0.0}
	azel1 := [2]float64{60 * D2R, 75 * D2R}
	azel2 := [2]float64{190 * D2R, 3 * D2R}
	azel3 := [2]float64{350 * D2R, 60 * D2R}
	azel4 := [2]float64{0 * D2R, 90 * D2R}

	cases := []struct {
		t    gnsstt.Gtime
		pos  [3]float64
		azel [2]float64
		m    float64
	}{
		{t1, pos1, azel1, 6.73590532099438},
		{t1, pos2, azel1, 3.56895382197387},
		{t1, pos3, azel1, 3.80716435655161},
		{t2, pos1, azel1, 5.21796954585452},
		{t3, pos1, azel1, 5.90190539264777},
		{t1, pos1, azel2, 21.6345415123632},
		{t1, pos1, azel3, 7.33844278822561},
		{t1, pos1, azel4, 6.58339711400694},
	}
	for i, c := range cases {
		d := ion.Delay(c.t, c.pos, c.azel[0], c.azel[1])
		assert.InDelta(t, m2ns(c.m), d, 1e-6, "case %d", i)
	}
}

func Test_klobuchar_off(t *testing.T) {
	assert := assert.New(t)
	t1 := gnsstt.Epoch2Time([6]float64{2007, 1, 16, 1, 0, 0})
	pos := [3]float64{35 * gnsstt.D2R, 140 * gnsstt.D2R, 100.0}
	ion := gnsstt.Klobuchar{
		Alpha: [4]float64{0.2e-7, -0.8e-8, -0.5e-7, 0.1e-6},
		Beta:  [4]float64{0.2e+6, 0.2e+6, -0.1e+6, -0.1e+7},
	}
	assert.True(gnsstt.Klobuchar{}.IsZero())
	assert.False(ion.IsZero())
	assert.Equal(0.0, gnsstt.Klobuchar{}.Delay(t1, pos, 1.0, 1.0))
	assert.Equal(0.0, ion.Delay(t1, pos, 1.0, 0.0))
	assert.Equal(0.0, ion.Delay(t1, pos, 1.0, -0.1))
	assert.Equal(0.0, ion.Delay(t1, [3]float64{0, 0, -gnsstt.RE_WGS84}, 1.0, 1.0))

	/* night term only */
	night := gnsstt.Klobuchar{Beta: [4]float64{72000.0}}
	tn := gnsstt.Epoch2Time([6]float64{2007, 1, 16, 12, 0, 0})
	assert.InDelta(5.0, night.Delay(tn, [3]float64{}, 0.0, gnsstt.PI/2.0), 0.2)
}

/* tropzenith(), tropmap(), tropdelay() */
func Test_troposphere(t *testing.T) {
	assert := assert.New(t)
	ns := gnsstt.NS_SURFACE

	z0 := gnsstt.TropZenith(0.0, ns)
	assert.InDelta(2.467, z0, 0.01)
	assert.Equal(z0, gnsstt.TropZenith(-200.0, ns))
	assert.Less(gnsstt.TropZenith(1000.0, ns), z0)
	assert.Less(gnsstt.TropZenith(10000.0, ns), gnsstt.TropZenith(1000.0, ns))
	assert.Greater(gnsstt.TropZenith(10000.0, ns), 0.0)
	assert.Equal(0.0, gnsstt.TropZenith(0.0, 0.0))

	assert.InDelta(1.0, gnsstt.TropMap(gnsstt.PI/2.0), 1e-9)
	assert.InDelta(10.21, gnsstt.TropMap(5.0*gnsstt.D2R), 0.02)
	assert.Greater(gnsstt.TropMap(0.0), gnsstt.TropMap(5.0*gnsstt.D2R))

	assert.InDelta(m2ns(z0), gnsstt.TropDelay(gnsstt.PI/2.0, 0.0, ns), 1e-6)
	assert.InDelta(m2ns(z0)*gnsstt.TropMap(0.3), gnsstt.TropDelay(0.3, 0.0, ns), 1e-6)
	assert.Equal(0.0, gnsstt.TropDelay(0.3, 0.0, 0.0))
}
