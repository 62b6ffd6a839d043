/*------------------------------------------------------------------------------
* rnx2cggtts.go : generate cggtts files from rinex obs/nav files of a day
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
*-----------------------------------------------------------------------------*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	flag "github.com/spf13/pflag"

	"gnsstt"
	"gnsstt/archive"
)

var PROGNAME string = "rnx2cggtts"

/* help text -----------------------------------------------------------------*/
var help []string = []string{
	"",
	" usage: rnx2cggtts [option]...",
	"",
	" Read the RINEX OBS/NAV files of one UTC day and write CGGTTS files, one for",
	" each output of the configuration file. Input paths of the configuration may",
	" include keywords (%Y,%y,%m,%d,%n,%W,%D,%J) replaced by the processed day.",
	" The files of the next day are read as well so that the last tracks of the",
	" day are complete, unless -s is given.",
	"",
	" -h        print help",
	" -V        print version",
	" -c file   configuration file [rnx2cggtts.toml]",
	" -m mjd    modified julian date to process [yesterday]",
	" -s        shorten: do not read next day files, tracks stop at 24h [off]",
	" -d file   debug trace file (stderr: standard error) [off]",
	" -v level  debug trace level (0:off) [1]"}

func searchHelp(key string) string {
	for _, v := range help {
		if strings.Contains(v, key) {
			return v
		}
	}
	return "no supported argument"
}

/* show message --------------------------------------------------------------*/
func showmsg(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s: ", PROGNAME)
	fmt.Fprintf(os.Stderr, format, v...)
	fmt.Fprintf(os.Stderr, "\n")
}

/* export written tracks and counters ----------------------------------------*/
func export(ctx context.Context, rc *gnsstt.RunContext, written []gnsstt.OutputResult) error {
	a := &rc.Opt.Archive
	run := rc.ID.String()

	if a.InfluxURL != "" {
		x := archive.NewInflux(a.InfluxURL, a.InfluxToken, a.InfluxOrg, a.InfluxBucket)
		defer x.Close()
		for _, o := range written {
			if err := x.Write(ctx, run, o.Output, o.Results); err != nil {
				return err
			}
		}
		rc.Trace.Trace(2, "influx: %s bucket=%s\n", a.InfluxURL, a.InfluxBucket)
	}
	if a.ClickHouseDSN != "" {
		ch, err := archive.OpenClickHouse(a.ClickHouseDSN, a.ClickHouseTable)
		if err != nil {
			return err
		}
		defer ch.Close()
		if err := ch.EnsureTable(ctx); err != nil {
			return err
		}
		for _, o := range written {
			if err := ch.Write(ctx, run, o.Output, o.Results); err != nil {
				return err
			}
		}
		rc.Trace.Trace(2, "clickhouse: table=%s\n", a.ClickHouseTable)
	}
	if a.Pushgateway != "" {
		if err := archive.PushDiagnostics(a.Pushgateway, a.PushJob, run, rc.MJD, rc.Diag.Registry); err != nil {
			return err
		}
	}
	return nil
}

func run() int {
	var (
		config  string = "rnx2cggtts.toml"
		debug   string = ""
		level   int    = 1
		mjd     int    = 0
		shorten bool
		showhlp bool
		showver bool
	)
	flag.StringVarP(&config, "configuration", "c", config, searchHelp("-c"))
	flag.IntVarP(&mjd, "mjd", "m", mjd, searchHelp("-m"))
	flag.BoolVarP(&shorten, "shorten", "s", false, searchHelp("-s"))
	flag.StringVarP(&debug, "debug", "d", debug, searchHelp("-d"))
	flag.IntVarP(&level, "verbosity", "v", level, searchHelp("-v"))
	flag.BoolVarP(&showhlp, "help", "h", false, searchHelp("-h"))
	flag.BoolVarP(&showver, "version", "V", false, searchHelp("-V"))
	flag.Parse()

	if showhlp {
		for _, h := range help {
			fmt.Printf("%s\n", h)
		}
		return 0
	}
	if showver {
		fmt.Printf("%s ver.%s %s\n", PROGNAME, gnsstt.VER_GNSSTT, gnsstt.COPYRIGHT_GNSSTT)
		return 0
	}
	if mjd <= 0 {
		mjd = gnsstt.Time2MJD(gnsstt.TimeGet()) - 1
	}
	opt, err := gnsstt.LoadOptions(config)
	if err != nil {
		showmsg("%v", err)
		return 1
	}
	tr := gnsstt.NewTracer(level)
	if debug != "" {
		if err := tr.Open(debug); err != nil {
			showmsg("%v", err)
			return 1
		}
		defer tr.Close()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rc := gnsstt.NewRunContext(opt, mjd, shorten, tr)
	written, err := rc.Run(ctx)
	if err != nil {
		showmsg("mjd=%d: %v", mjd, err)
		return 1
	}
	for _, o := range written {
		fmt.Printf("%-8s %-40s %4d tracks\n", o.Output, o.Path, len(o.Results))
	}
	if err := export(ctx, rc, written); err != nil {
		showmsg("%v", err)
		return 1
	}
	if err := rc.Diag.Summary(os.Stdout); err != nil {
		showmsg("%v", err)
		return 1
	}
	return 0
}

/* rnx2cggtts main -----------------------------------------------------------*/
func main() {
	os.Exit(run())
}
