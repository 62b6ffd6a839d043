/*------------------------------------------------------------------------------
* influx.go : cggtts track export to influxdb
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
*-----------------------------------------------------------------------------*/
package archive

import (
	"context"
	"fmt"
	"time"

	influxdb "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"gnsstt"
)

const Measurement = "cggtts"

type Influx struct {
	client influxdb.Client
	org    string
	bucket string
}

func NewInflux(url, token, org, bucket string) *Influx {
	return &Influx{
		client: influxdb.NewClient(url, token),
		org:    org,
		bucket: bucket,
	}
}

/* track start time of a record */
func TrackTime(r *gnsstt.TrackResult) time.Time {
	t := gnsstt.TimeAdd(gnsstt.MJD2Time(r.MJD), float64(r.Start))
	return time.Unix(t.Time, 0).UTC()
}

/* influx point of a record, fields in cggtts units (ns, deg, ps/s) */
func NewPoint(run string, out gnsstt.Output, r *gnsstt.TrackResult) *write.Point {
	p := influxdb.NewPointWithMeasurement(Measurement).
		AddTag("run", run).
		AddTag("sys", out.Sys.String()).
		AddTag("code", out.Code.String()).
		AddTag("sat", r.Sat.String()).
		AddField("trkl", r.TrackLength).
		AddField("elv", float64(r.Elevation)*0.1).
		AddField("azth", float64(r.Azimuth)*0.1).
		AddField("refsv", float64(r.REFSV)*0.1).
		AddField("srsv", float64(r.SRSV)*0.1).
		AddField("refsys", float64(r.REFSYS)*0.1).
		AddField("srsys", float64(r.SRSYS)*0.1).
		AddField("dsg", float64(r.DSG)*0.1).
		AddField("ioe", r.IOE).
		AddField("mdtr", float64(r.MDTR)*0.1).
		AddField("mdio", float64(r.MDIO)*0.1).
		SetTime(TrackTime(r))
	if r.Dual {
		p.AddField("msio", float64(r.MSIO)*0.1).
			AddField("smsi", float64(r.SMSI)*0.1).
			AddField("isg", float64(r.ISG)*0.1)
	}
	return p
}

/* write records of an output ------------------------------------------------------*/
func (x *Influx) Write(ctx context.Context, run string, out gnsstt.Output, results []gnsstt.TrackResult) error {
	if len(results) == 0 {
		return nil
	}
	points := make([]*write.Point, len(results))
	for i := range results {
		points[i] = NewPoint(run, out, &results[i])
	}
	writeAPI := x.client.WriteAPIBlocking(x.org, x.bucket)
	if err := writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influx write %s: %w", out, err)
	}
	return nil
}

func (x *Influx) Close() {
	x.client.Close()
}
