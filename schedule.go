/*------------------------------------------------------------------------------
* schedule.go : cggtts track schedule and observation windowing
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* references :
*     [1] CCTF-CGGTTS V2E, 2015, tracking schedule
*
* notes   : track starts drift by -4 min per day from 00:02 on mjd 50722 so
*           that tracks follow the sidereal repeat of the gps constellation.
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"math"
	"sort"
)

/* track window in seconds of day [Start,Stop) */
type TrackSlot struct {
	Start int
	Stop  int
}

/* track start times of a day ----------------------------------------------------
* args   : mjd      I   modified julian date
* return : start minutes of day, ascending (89 or 90 tracks)
*-----------------------------------------------------------------------------*/
func Schedule(mjd int) []int {
	starts := make([]int, NTRACKS, NTRACKS+1)
	for i := range starts {
		s := 2 + 16*i - 4*(mjd-MJD_SCHEDULE_REF)
		if s < 0 {
			s += 1436 * int(math.Ceil(float64(-s)/1436.0))
		}
		starts[i] = s
	}
	sort.Ints(starts)

	if last := starts[NTRACKS-1]; last%60 < 43 {
		starts = append(starts, last+16)
	}
	return starts
}

/* track windows of a day --------------------------------------------------------
* args   : mjd      I   modified julian date
*          limit    I   end of available data (s of day), 86400 or later when
*                       the next day is loaded
* return : windows with stop clipped to limit
*-----------------------------------------------------------------------------*/
func Tracks(mjd, limit int) []TrackSlot {
	starts := Schedule(mjd)
	slots := make([]TrackSlot, 0, len(starts))
	for _, m := range starts {
		tr := TrackSlot{Start: m * 60, Stop: m*60 + TRACK_LEN}
		if tr.Stop > limit {
			tr.Stop = limit
		}
		if tr.Start < tr.Stop {
			slots = append(slots, tr)
		}
	}
	return slots
}

/* samples of a satellite inside a track window with the code present -----------*/
func Window(g *ObsGrid, tr TrackSlot, sat SatID, code Code) []Sample {
	var samples []Sample
	for slot := tr.Start / EPOCH_INTERVAL; slot*EPOCH_INTERVAL < tr.Stop; slot++ {
		s, ok := g.At(sat, slot)
		if !ok {
			continue
		}
		if _, ok := s.Pseudorange(code); ok {
			samples = append(samples, s)
		}
	}
	return samples
}
