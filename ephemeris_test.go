/*------------------------------------------------------------------------------
* gnsstt unit test driver : ephemeris store
*-----------------------------------------------------------------------------*/
package gnsstt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gnsstt"
)

func Test_ephinsert(t *testing.T) {
	assert := assert.New(t)
	s := gnsstt.NewEphemerisStore()

	assert.True(s.Insert(testEph(3, 14400.0)))
	assert.True(s.Insert(testEph(3, 7200.0)))
	assert.True(s.Insert(testEph(3, 21600.0)))
	assert.False(s.Insert(testEph(3, 7200.0)))
	assert.True(s.Insert(testEph(1, 0.0)))

	bad := testEph(1, 0.0)
	bad.Sat.PRN = 40
	assert.False(s.Insert(bad))
	bad.Sat = gnsstt.SatID{Sys: gnsstt.BeiDou, PRN: 0}
	assert.False(s.Insert(bad))

	assert.Equal(4, s.Len())
	assert.Equal(1, s.Duplicates())
	assert.Equal(2, s.Invalid())
	assert.Equal([]gnsstt.SatID{{Sys: gnsstt.GPS, PRN: 1}, {Sys: gnsstt.GPS, PRN: 3}}, s.Satellites())

	/* ordered by toc */
	list := s.Ephemerides(gnsstt.SatID{Sys: gnsstt.GPS, PRN: 3})
	if assert.Len(list, 3) {
		assert.Equal(7200.0, list[0].Toc)
		assert.Equal(14400.0, list[1].Toc)
		assert.Equal(21600.0, list[2].Toc)
	}
}

/* toc order spans the week number */
func Test_ephorder_week(t *testing.T) {
	assert := assert.New(t)
	s := gnsstt.NewEphemerisStore()
	e1 := testEph(9, 1800.0)
	e1.Week = testWeek + 1
	e2 := testEph(9, 597600.0)
	assert.True(s.Insert(e1))
	assert.True(s.Insert(e2))

	list := s.Ephemerides(gnsstt.SatID{Sys: gnsstt.GPS, PRN: 9})
	if assert.Len(list, 2) {
		assert.Equal(597600.0, list[0].Toe)
		assert.Equal(1800.0, list[1].Toe)
	}
}

func Test_nearest(t *testing.T) {
	sat := gnsstt.SatID{Sys: gnsstt.GPS, PRN: 3}
	s := gnsstt.NewEphemerisStore()
	for _, toe := range []float64{0.0, 7200.0, 14400.0} {
		s.Insert(testEph(3, toe))
	}
	worse := testEph(3, 21600.0)
	worse.URA = 6.85
	s.Insert(worse)
	unknown := testEph(3, 28800.0)
	unknown.URA = -1.0
	s.Insert(unknown)

	cases := []struct {
		tow    float64
		maxura float64
		toe    float64
		ok     bool
	}{
		{0.0, 3.0, 0.0, true},
		{7199.0, 3.0, 0.0, true},
		{7200.0, 3.0, 7200.0, true},
		{20000.0, 3.0, 14400.0, true},
		{22000.0, 3.0, 14400.0, true},
		{22000.0, 10.0, 21600.0, true},
		{14400.0 + 8640.0, 3.0, 0.0, false},
		{30000.0, 3.0, 28800.0, true},
		{-10.0, 3.0, 0.0, false},
	}
	for _, c := range cases {
		eph, ok := s.Nearest(sat, c.tow, c.maxura)
		assert.Equal(t, c.ok, ok, "tow=%.0f maxura=%.1f", c.tow, c.maxura)
		if c.ok && assert.NotNil(t, eph) {
			assert.Equal(t, c.toe, eph.Toe, "tow=%.0f maxura=%.1f", c.tow, c.maxura)
		}
	}
	_, ok := s.Nearest(gnsstt.SatID{Sys: gnsstt.GPS, PRN: 4}, 100.0, 3.0)
	assert.False(t, ok)
}

/* ephemeris of the previous week is used after the week rollover */
func Test_nearest_rollover(t *testing.T) {
	s := gnsstt.NewEphemerisStore()
	s.Insert(testEph(3, 601200.0))
	eph, ok := gnsstt.NewEphemerisStore().Nearest(gnsstt.SatID{Sys: gnsstt.GPS, PRN: 3}, 100.0, 3.0)
	assert.False(t, ok)
	assert.Nil(t, eph)

	eph, ok = s.Nearest(gnsstt.SatID{Sys: gnsstt.GPS, PRN: 3}, 1800.0, 3.0)
	if assert.True(t, ok) {
		assert.Equal(t, 601200.0, eph.Toe)
	}
}

func Test_ura(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0, gnsstt.UraIndex(2.0))
	assert.Equal(1, gnsstt.UraIndex(3.0))
	assert.Equal(6, gnsstt.UraIndex(24.0))
	assert.Equal(15, gnsstt.UraIndex(10000.0))
	assert.Equal(2.4, gnsstt.UraValue(0))
	assert.Equal(-1.0, gnsstt.UraValue(15))
	assert.Equal(-1.0, gnsstt.UraValue(-1))
}
