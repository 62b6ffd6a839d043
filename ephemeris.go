/*------------------------------------------------------------------------------
* ephemeris.go : broadcast ephemeris store
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* references :
*     [1] IS-GPS-200, 20.3.3.3 navigation message user algorithm
*     [2] Galileo OS SIS ICD, 5.1.12 SISA
*
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"sort"
)

/* broadcast ephemeris ---------------------------------------------------------
* times of week (toe, toc, ttr) are in the system time of the satellite:
* gpst for gps and galileo, bdt for beidou.
*-----------------------------------------------------------------------------*/
type Ephemeris struct {
	Sat      SatID
	IODE     int     /* IODE (gps), IODnav (galileo), AODE (beidou) */
	IODC     int     /* IODC (gps), AODC (beidou) */
	Week     int     /* week of toe (system week) */
	Toe      float64 /* reference time of ephemeris (s of week) */
	Toc      float64 /* reference time of clock (s of week) */
	Ttr      float64 /* transmission time (s of week) */
	Af0      float64 /* sv clock parameters (s, s/s, s/s^2) */
	Af1      float64
	Af2      float64
	SqrtA    float64 /* sqrt of semi-major axis (m^0.5) */
	E        float64 /* eccentricity */
	I0       float64 /* inclination at toe (rad) */
	OMG0     float64 /* longitude of ascending node at week start (rad) */
	Omg      float64 /* argument of perigee (rad) */
	M0       float64 /* mean anomaly at toe (rad) */
	Deln     float64 /* mean motion difference (rad/s) */
	Idot     float64 /* rate of inclination (rad/s) */
	OMGd     float64 /* rate of right ascension (rad/s) */
	Crs, Crc float64 /* harmonic corrections to radius (m) */
	Cus, Cuc float64 /* harmonic corrections to argument of latitude (rad) */
	Cis, Cic float64 /* harmonic corrections to inclination (rad) */
	TGD      float64 /* group delay (s): TGD, BGD E5a/E1, TGD1 B1/B3 */
	URA      float64 /* user range accuracy or SISA (m) */
	URAIndex int     /* ura index */
	Health   int     /* sv health (0:ok) */
	Fit      float64 /* fit interval (h) */
}

var uraEph = [...]float64{ /* ura values (ref [1] 20.3.3.3.1.1) */
	2.4, 3.4, 4.85, 6.85, 9.65, 13.65, 24.0, 48.0, 96.0, 192.0, 384.0, 768.0, 1536.0,
	3072.0, 6144.0,
}

/* ura value (m) to ura index */
func UraIndex(value float64) int {
	i := 0
	for ; i < len(uraEph); i++ {
		if uraEph[i] >= value {
			break
		}
	}
	return i
}

/* ura index to ura nominal value (m), -1 for unknown */
func UraValue(index int) float64 {
	if index < 0 || index >= len(uraEph) {
		return -1.0
	}
	return uraEph[index]
}

/* ephemeris store ---------------------------------------------------------------
* per-satellite ephemerides ordered by toc. populated once per run and read
* concurrently afterwards.
*-----------------------------------------------------------------------------*/
type EphemerisStore struct {
	sats       map[SatID][]*Ephemeris
	duplicates int
	invalid    int
}

func NewEphemerisStore() *EphemerisStore {
	return &EphemerisStore{sats: make(map[SatID][]*Ephemeris)}
}

/* insert ephemeris --------------------------------------------------------------
* return : true if stored, false for an invalid satellite or a duplicate
*          (same satellite and toe)
*-----------------------------------------------------------------------------*/
func (s *EphemerisStore) Insert(eph Ephemeris) bool {
	if !eph.Sat.Valid() {
		s.invalid++
		return false
	}
	list := s.sats[eph.Sat]
	for _, e := range list {
		if e.Toe == eph.Toe {
			s.duplicates++
			return false
		}
	}
	key := eph.tocKey()
	i := len(list)
	list = append(list, nil)
	for ; i > 0 && list[i-1].tocKey() > key; i-- {
		list[i] = list[i-1]
	}
	list[i] = &eph
	s.sats[eph.Sat] = list
	return true
}

func (e *Ephemeris) tocKey() float64 {
	return float64(e.Week)*SECWEEK + e.Toc
}

/* select ephemeris --------------------------------------------------------------
* most recent ephemeris with toe at or before tow and age below MAXDTOE whose
* ura does not exceed maxura. a negative ura (accuracy unknown) is accepted.
* args   : sat      I   satellite
*          tow      I   time of week (system time of the satellite)
*          maxura   I   max user range accuracy (m)
* return : ephemeris, false if none qualifies
*-----------------------------------------------------------------------------*/
func (s *EphemerisStore) Nearest(sat SatID, tow, maxura float64) (*Ephemeris, bool) {
	var best *Ephemeris
	tmin := MAXDTOE

	for _, e := range s.sats[sat] {
		dt := tow - e.Toe
		if dt < -5.0*SECDAY {
			dt += SECWEEK
		}
		if dt < 0.0 || dt >= tmin || e.URA > maxura {
			continue
		}
		best, tmin = e, dt
	}
	return best, best != nil
}

func (s *EphemerisStore) Ephemerides(sat SatID) []*Ephemeris {
	return s.sats[sat]
}

/* satellites with at least one ephemeris, sorted */
func (s *EphemerisStore) Satellites() []SatID {
	sats := make([]SatID, 0, len(s.sats))
	for sat := range s.sats {
		sats = append(sats, sat)
	}
	sort.Slice(sats, func(i, j int) bool { return sats[i].Less(sats[j]) })
	return sats
}

func (s *EphemerisStore) Len() int {
	n := 0
	for _, list := range s.sats {
		n += len(list)
	}
	return n
}

func (s *EphemerisStore) Duplicates() int { return s.duplicates }
func (s *EphemerisStore) Invalid() int    { return s.invalid }
