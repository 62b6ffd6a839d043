/*------------------------------------------------------------------------------
* obs.go : day observation grid at 30 s resolution
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"math"
	"sort"
)

/* pseudoranges of one satellite at one epoch --------------------------------------
* tod is utc seconds from 0h of the grid day, values beyond 86400 belong to
* the next day. pseudoranges in metres, 0 when absent. for galileo and beidou
* C1 holds E1 and B1I.
*-----------------------------------------------------------------------------*/
type Sample struct {
	Tod float64
	C1  float64
	P1  float64
	P2  float64
}

/* pseudorange of a code (m), P3 is the ionosphere-free P1/P2 combination */
func (s Sample) Pseudorange(code Code) (float64, bool) {
	switch code {
	case C1:
		return s.C1, s.C1 != 0.0
	case P1:
		return s.P1, s.P1 != 0.0
	case P2:
		return s.P2, s.P2 != 0.0
	case P3:
		if s.P1 == 0.0 || s.P2 == 0.0 {
			return 0.0, false
		}
		return (GAMMA12*s.P1 - s.P2) / (GAMMA12 - 1.0), true
	}
	return 0.0, false
}

func (s Sample) empty() bool {
	return s.C1 == 0.0 && s.P1 == 0.0 && s.P2 == 0.0
}

/* observation grid ----------------------------------------------------------------
* dense per-satellite arrays indexed by floor(tod/30). filled once by the
* observation reader and read concurrently afterwards.
*-----------------------------------------------------------------------------*/
type ObsGrid struct {
	MJD   int
	Slots int
	sats  map[SatID][]Sample
}

/* grid of slots*30 s starting at 0h utc of mjd */
func NewObsGrid(mjd, slots int) *ObsGrid {
	return &ObsGrid{MJD: mjd, Slots: slots, sats: make(map[SatID][]Sample)}
}

func Slot(tod float64) int {
	return int(math.Floor(tod / EPOCH_INTERVAL))
}

/* store a pseudorange, return false if tod lies outside the grid */
func (g *ObsGrid) Set(sat SatID, tod float64, code Code, pr float64) bool {
	slot := Slot(tod)
	if slot < 0 || slot >= g.Slots || pr == 0.0 {
		return false
	}
	arr, ok := g.sats[sat]
	if !ok {
		arr = make([]Sample, g.Slots)
		g.sats[sat] = arr
	}
	s := &arr[slot]
	s.Tod = tod
	switch code {
	case C1:
		s.C1 = pr
	case P1:
		s.P1 = pr
	case P2:
		s.P2 = pr
	default:
		return false
	}
	return true
}

func (g *ObsGrid) At(sat SatID, slot int) (Sample, bool) {
	arr, ok := g.sats[sat]
	if !ok || slot < 0 || slot >= len(arr) || arr[slot].empty() {
		return Sample{}, false
	}
	return arr[slot], true
}

/* satellites of a system with observations, sorted (0: all systems) */
func (g *ObsGrid) Satellites(sys Constellation) []SatID {
	var sats []SatID
	for sat := range g.sats {
		if sys == 0 || sat.Sys == sys {
			sats = append(sats, sat)
		}
	}
	sort.Slice(sats, func(i, j int) bool { return sats[i].Less(sats[j]) })
	return sats
}
