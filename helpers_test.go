/*------------------------------------------------------------------------------
* gnsstt unit test driver : shared fixtures
*-----------------------------------------------------------------------------*/
package gnsstt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gnsstt"
)

/* 2017/01/01 00:00:00 utc, gps week 1930 */
const (
	testMJD  = 57754
	testWeek = 1930
)

/* plausible gps ephemeris with toe=toc */
func testEph(prn int, toe float64) gnsstt.Ephemeris {
	return gnsstt.Ephemeris{
		Sat:   gnsstt.SatID{Sys: gnsstt.GPS, PRN: prn},
		IODE:  42 + int(toe/7200.0),
		IODC:  42,
		Week:  testWeek,
		Toe:   toe,
		Toc:   toe,
		Af0:   1.0e-5,
		Af1:   1.0e-12,
		SqrtA: 5153.6,
		E:     0.01,
		I0:    0.96,
		OMG0:  1.0 + 0.1*float64(prn),
		Omg:   0.5,
		M0:    0.3 * float64(prn),
		Deln:  4.5e-9,
		Idot:  1.0e-10,
		OMGd:  -8.0e-9,
		Crs:   20.0,
		Crc:   200.0,
		Cus:   5.0e-6,
		Cuc:   -1.0e-6,
		Cis:   1.0e-7,
		Cic:   -5.0e-8,
		TGD:   -5.0e-9,
		URA:   2.0,
	}
}

/* gpst of a utc second of the test day */
func testGpst(tod float64) gnsstt.Gtime {
	day0 := gnsstt.MJD2Time(testMJD)
	return gnsstt.TimeAdd(day0, tod+18.0)
}

/* pseudorange (m) that makes the corrector report refsys (ns) ------------------*/
func pseudorange(t *testing.T, c *gnsstt.Corrector, eph *gnsstt.Ephemeris, gpst gnsstt.Gtime,
	refsys float64) float64 {
	tow := gnsstt.SysTow(c.Sys, gpst)
	E, rs, err := gnsstt.SolveKepler(eph, tow-0.075)
	require.NoError(t, err)
	rng, _ := gnsstt.GeoDist(rs, c.Antenna.ECEF(), gnsstt.OMGE)
	dts := gnsstt.SatClock(eph, tow-0.075, E) - eph.TGD
	pr := rng - dts*gnsstt.CLIGHT

	for i := 0; i < 5; i++ {
		pt, err := c.Correct(eph, gpst, gnsstt.Sample{C1: pr, P1: pr})
		require.NoError(t, err)
		pr += (refsys - pt.REFSYS) * 1e-9 * gnsstt.CLIGHT
	}
	return pr
}
