/*------------------------------------------------------------------------------
* counters.go : run diagnostics counters
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* notes   : counters live in a per-run prometheus registry so that concurrent
*           track jobs can increment them and the run can push them at exit.
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const (
	OutcomeAccepted    = "accepted"
	OutcomeURAExceeded = "ura_exceeded"
)

type Diagnostics struct {
	Registry *prometheus.Registry
	samples  *prometheus.CounterVec
	tracks   *prometheus.CounterVec
	ephs     *prometheus.CounterVec
}

func NewDiagnostics() *Diagnostics {
	d := &Diagnostics{
		Registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gnsstt",
			Name:      "samples_rejected_total",
			Help:      "Observation epochs rejected by the correction pipeline.",
		}, []string{"output", "reason"}),
		tracks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gnsstt",
			Name:      "tracks_total",
			Help:      "Fitted tracks by outcome.",
		}, []string{"output", "outcome"}),
		ephs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gnsstt",
			Name:      "ephemerides_total",
			Help:      "Broadcast ephemerides read by outcome.",
		}, []string{"outcome"}),
	}
	d.Registry.MustRegister(d.samples, d.tracks, d.ephs)
	return d
}

/* counter label of an error */
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrOrbitDivergence):
		return "orbit_divergence"
	case errors.Is(err, ErrRangeResidual):
		return "range_residual"
	case errors.Is(err, ErrBadHealth):
		return "bad_health"
	case errors.Is(err, ErrEphemerisMiss):
		return "ephemeris_miss"
	case errors.Is(err, ErrNoObservation):
		return "no_observation"
	case errors.Is(err, ErrShortTrack):
		return "short_track"
	case errors.Is(err, ErrLowElevation):
		return "low_elevation"
	case errors.Is(err, ErrHighDSG):
		return "high_dsg"
	}
	return "other"
}

func (d *Diagnostics) SampleRejected(out string, err error) {
	d.samples.WithLabelValues(out, Reason(err)).Inc()
}

func (d *Diagnostics) TrackRejected(out string, err error) {
	d.tracks.WithLabelValues(out, Reason(err)).Inc()
}

func (d *Diagnostics) TrackURAExceeded(out string) {
	d.tracks.WithLabelValues(out, OutcomeURAExceeded).Inc()
}

func (d *Diagnostics) TrackAccepted(out string) {
	d.tracks.WithLabelValues(out, OutcomeAccepted).Inc()
}

/* ephemerides read, duplicated and rejected for an invalid satellite */
func (d *Diagnostics) Ephemerides(stored, duplicates, invalid int) {
	d.ephs.WithLabelValues("stored").Add(float64(stored))
	d.ephs.WithLabelValues("duplicate").Add(float64(duplicates))
	d.ephs.WithLabelValues("invalid").Add(float64(invalid))
}

/* value of a counter by metric name and label pairs (0 if absent) --------------*/
func (d *Diagnostics) Count(name string, labels map[string]string) float64 {
	mfs, err := d.Registry.Gather()
	if err != nil {
		return 0.0
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m.GetLabel(), labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0.0
}

func matchLabels(pairs []*dto.LabelPair, labels map[string]string) bool {
	n := 0
	for _, p := range pairs {
		v, ok := labels[p.GetName()]
		if !ok {
			continue
		}
		if v != p.GetValue() {
			return false
		}
		n++
	}
	return n == len(labels)
}

/* print non-zero counters -------------------------------------------------------*/
func (d *Diagnostics) Summary(w io.Writer) error {
	mfs, err := d.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather counters: %w", err)
	}
	var lines []string
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue()
			if v == 0.0 {
				continue
			}
			lbl := make([]string, 0, len(m.GetLabel()))
			for _, p := range m.GetLabel() {
				lbl = append(lbl, p.GetName()+"="+p.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%-32s %-40s %8.0f", mf.GetName(), strings.Join(lbl, ","), v))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
