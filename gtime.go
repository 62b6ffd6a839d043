/*------------------------------------------------------------------------------
* gtime.go : time systems, leap seconds and modified julian date
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* notes   : time is held as integer seconds since 1970-01-01 plus a fraction.
*           gps, galileo and utc share the same origin. bdt is gpst-14s.
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

type Gtime struct {
	Time int64   /* time (s) expressed by standard time_t */
	Sec  float64 /* fraction of second under 1 s */
}

var (
	gpst0 = [6]float64{1980, 1, 6, 0, 0, 0} /* gps time reference */
	bdt0  = [6]float64{2006, 1, 1, 0, 0, 0} /* beidou time reference */
)

var leaps = [...][7]float64{ /* leap seconds (y,m,d,h,m,s,utc-gpst) */
	{2017, 1, 1, 0, 0, 0, -18},
	{2015, 7, 1, 0, 0, 0, -17},
	{2012, 7, 1, 0, 0, 0, -16},
	{2009, 1, 1, 0, 0, 0, -15},
	{2006, 1, 1, 0, 0, 0, -14},
	{1999, 1, 1, 0, 0, 0, -13},
	{1997, 7, 1, 0, 0, 0, -12},
	{1996, 1, 1, 0, 0, 0, -11},
	{1994, 7, 1, 0, 0, 0, -10},
	{1993, 7, 1, 0, 0, 0, -9},
	{1992, 7, 1, 0, 0, 0, -8},
	{1991, 1, 1, 0, 0, 0, -7},
	{1990, 1, 1, 0, 0, 0, -6},
	{1988, 1, 1, 0, 0, 0, -5},
	{1985, 7, 1, 0, 0, 0, -4},
	{1983, 7, 1, 0, 0, 0, -3},
	{1982, 7, 1, 0, 0, 0, -2},
	{1981, 7, 1, 0, 0, 0, -1},
}

/* convert calendar day/time to time -------------------------------------------
* args   : ep       I   day/time {year,month,day,hour,min,sec}
* return : gtime struct (zero time for years outside 1970-2099)
*-----------------------------------------------------------------------------*/
func Epoch2Time(ep [6]float64) Gtime {
	doy := [12]int{1, 32, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335}
	var t Gtime
	year, mon, day := int(ep[0]), int(ep[1]), int(ep[2])

	if year < 1970 || 2099 < year || mon < 1 || 12 < mon {
		return t
	}
	/* leap year if year%4==0 in 1901-2099 */
	days := (year-1970)*365 + (year-1969)/4 + doy[mon-1] + day - 2
	if year%4 == 0 && mon >= 3 {
		days++
	}
	sec := math.Floor(ep[5])
	t.Time = int64(days)*86400 + int64(ep[3])*3600 + int64(ep[4])*60 + int64(sec)
	t.Sec = ep[5] - sec
	return t
}

/* time to calendar day/time ---------------------------------------------------*/
func Time2Epoch(t Gtime) [6]float64 {
	mday := [48]int{ /* # of days in a month */
		31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31,
		31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	var ep [6]float64

	days := int(t.Time / 86400)
	sec := int(t.Time - int64(days)*86400)
	mon, day := 0, days%1461
	for ; mon < 48; mon++ {
		if day < mday[mon] {
			break
		}
		day -= mday[mon]
	}
	ep[0] = float64(1970 + days/1461*4 + mon/12)
	ep[1] = float64(mon%12 + 1)
	ep[2] = float64(day + 1)
	ep[3] = float64(sec / 3600)
	ep[4] = float64(sec % 3600 / 60)
	ep[5] = float64(sec%60) + t.Sec
	return ep
}

func TimeAdd(t Gtime, sec float64) Gtime {
	t.Sec += sec
	tt := math.Floor(t.Sec)
	t.Time += int64(tt)
	t.Sec -= tt
	return t
}

/* t1-t2 (s) */
func TimeDiff(t1, t2 Gtime) float64 {
	return float64(t1.Time-t2.Time) + t1.Sec - t2.Sec
}

/* week and tow in gps time to time ------------------------------------------*/
func GpsT2Time(week int, sec float64) Gtime {
	t := Epoch2Time(gpst0)
	if sec < -1e9 || 1e9 < sec {
		sec = 0.0
	}
	return TimeAdd(TimeAdd(t, float64(week)*SECWEEK), sec)
}

/* time to gps week and time of week -----------------------------------------*/
func Time2GpsT(t Gtime) (tow float64, week int) {
	t0 := Epoch2Time(gpst0)
	sec := t.Time - t0.Time
	week = int(sec / (86400 * 7))
	return float64(sec-int64(week)*86400*7) + t.Sec, week
}

/* beidou week and tow to time (bdt) -----------------------------------------*/
func BDT2Time(week int, sec float64) Gtime {
	t := Epoch2Time(bdt0)
	if sec < -1e9 || 1e9 < sec {
		sec = 0.0
	}
	return TimeAdd(TimeAdd(t, float64(week)*SECWEEK), sec)
}

func Time2BDT(t Gtime) (tow float64, week int) {
	t0 := Epoch2Time(bdt0)
	sec := t.Time - t0.Time
	week = int(sec / (86400 * 7))
	return float64(sec-int64(week)*86400*7) + t.Sec, week
}

func GpsT2BDT(t Gtime) Gtime { return TimeAdd(t, -14.0) }
func BDT2GpsT(t Gtime) Gtime { return TimeAdd(t, 14.0) }

/* time of week in the system time of a constellation, from gpst ---------------*/
func SysTow(sys Constellation, gpst Gtime) float64 {
	if sys == BeiDou {
		tow, _ := Time2BDT(GpsT2BDT(gpst))
		return tow
	}
	tow, _ := Time2GpsT(gpst)
	return tow
}

/* utc-gpst at a utc time from the leap second table (s) ---------------------*/
func LeapSeconds(utc Gtime) float64 {
	for i := range leaps {
		if TimeDiff(utc, Epoch2Time([6]float64(leaps[i][:6]))) >= 0.0 {
			return leaps[i][6]
		}
	}
	return 0.0
}

func GpsT2Utc(t Gtime) Gtime {
	for i := range leaps {
		tu := TimeAdd(t, leaps[i][6])
		if TimeDiff(tu, Epoch2Time([6]float64(leaps[i][:6]))) >= 0.0 {
			return tu
		}
	}
	return t
}

func Utc2GpsT(t Gtime) Gtime {
	return TimeAdd(t, -LeapSeconds(t))
}

/* modified julian date to utc time at 0h ------------------------------------*/
func MJD2Time(mjd int) Gtime {
	y, m, d := julian.JDToCalendar(float64(mjd) + 2400000.5)
	return Epoch2Time([6]float64{float64(y), float64(m), math.Floor(d + 1e-9), 0, 0, 0})
}

/* modified julian day number of a time --------------------------------------*/
func Time2MJD(t Gtime) int {
	ep := Time2Epoch(t)
	jd := julian.CalendarGregorianToJD(int(ep[0]), int(ep[1]), ep[2])
	return int(math.Floor(jd - 2400000.5 + 1e-9))
}

/* current utc time */
func TimeGet() Gtime {
	now := time.Now().UTC()
	return Gtime{Time: now.Unix(), Sec: float64(now.Nanosecond()) * 1e-9}
}

/* day of year (1-366) */
func Time2Doy(t Gtime) int {
	ep := Time2Epoch(t)
	ep[1], ep[2], ep[3], ep[4], ep[5] = 1, 1, 0, 0, 0
	return int(TimeDiff(t, Epoch2Time(ep))/86400.0) + 1
}

/* time to string "yyyy/mm/dd hh:mm:ss.ssss" with n decimals ------------------*/
func TimeStr(t Gtime, n int) string {
	if n < 0 {
		n = 0
	} else if n > 12 {
		n = 12
	}
	if 1.0-t.Sec < 0.5/math.Pow10(n) {
		t.Time++
		t.Sec = 0.0
	}
	ep := Time2Epoch(t)
	w := 2
	if n > 0 {
		w = n + 3
	}
	return fmt.Sprintf("%04.0f/%02.0f/%02.0f %02.0f:%02.0f:%0*.*f", ep[0], ep[1], ep[2],
		ep[3], ep[4], w, n, ep[5])
}
