/*------------------------------------------------------------------------------
* options.go : processing options
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* notes   : options are read by viper (toml, yaml, json or ini by extension).
*           input paths may contain time keywords, see RepPath.
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type AntennaOpt struct {
	X     float64 `mapstructure:"x"`
	Y     float64 `mapstructure:"y"`
	Z     float64 `mapstructure:"z"`
	Frame string  `mapstructure:"frame"`
}

type ReceiverOpt struct {
	Manufacturer string `mapstructure:"manufacturer"`
	Model        string `mapstructure:"model"`
	Serial       string `mapstructure:"serial"`
	Year         int    `mapstructure:"year"`
	Channels     int    `mapstructure:"channels"`
}

type LabOpt struct {
	Name         string `mapstructure:"name"`
	Code         string `mapstructure:"code"`          /* bipm lab code */
	ReceiverCode string `mapstructure:"receiver_code"` /* bipm receiver code */
	Reference    string `mapstructure:"reference"`     /* local reference, e.g. UTC(XX) */
}

type CGGTTSOpt struct {
	Version             string  `mapstructure:"version"`
	Naming              string  `mapstructure:"naming"`
	RevDate             string  `mapstructure:"rev_date"`
	Comments            string  `mapstructure:"comments"`
	DelayKind           string  `mapstructure:"delay_kind"`
	CableDelay          float64 `mapstructure:"cable_delay"`
	ReferenceDelay      float64 `mapstructure:"reference_delay"`
	MinElevation        float64 `mapstructure:"min_elevation"`
	MaxDSG              float64 `mapstructure:"max_dsg"`
	MaxURA              float64 `mapstructure:"max_ura"`
	MinTrackLength      int     `mapstructure:"min_track_length"`
	SurfaceRefractivity float64 `mapstructure:"surface_refractivity"`
	OutputDir           string  `mapstructure:"output_dir"`
}

/* one cggtts file per output */
type OutputOpt struct {
	Constellation  string  `mapstructure:"constellation"`
	Code           string  `mapstructure:"code"`
	InternalDelay  float64 `mapstructure:"internal_delay"`
	InternalDelay2 float64 `mapstructure:"internal_delay2"`
	SystemDelay    float64 `mapstructure:"system_delay"`
	SystemDelay2   float64 `mapstructure:"system_delay2"`
	TotalDelay     float64 `mapstructure:"total_delay"`
	TotalDelay2    float64 `mapstructure:"total_delay2"`
	CalibrationID  string  `mapstructure:"calibration_id"`
}

type InputOpt struct {
	Observations string `mapstructure:"observations"`
	Navigation   string `mapstructure:"navigation"`
	LeapSeconds  int    `mapstructure:"leap_seconds"` /* gpst-utc override (s), 0: auto */
}

type ArchiveOpt struct {
	InfluxURL       string `mapstructure:"influx_url"`
	InfluxToken     string `mapstructure:"influx_token"`
	InfluxOrg       string `mapstructure:"influx_org"`
	InfluxBucket    string `mapstructure:"influx_bucket"`
	ClickHouseDSN   string `mapstructure:"clickhouse_dsn"`
	ClickHouseTable string `mapstructure:"clickhouse_table"`
	Pushgateway     string `mapstructure:"pushgateway"`
	PushJob         string `mapstructure:"push_job"`
}

type Options struct {
	Antenna  AntennaOpt  `mapstructure:"antenna"`
	Receiver ReceiverOpt `mapstructure:"receiver"`
	Lab      LabOpt      `mapstructure:"lab"`
	CGGTTS   CGGTTSOpt   `mapstructure:"cggtts"`
	Inputs   InputOpt    `mapstructure:"inputs"`
	Outputs  []OutputOpt `mapstructure:"outputs"`
	Archive  ArchiveOpt  `mapstructure:"archive"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("antenna.frame", "ITRF")
	v.SetDefault("receiver.channels", 99)
	v.SetDefault("lab.reference", "UTC(XX)")
	v.SetDefault("cggtts.version", "V2E")
	v.SetDefault("cggtts.naming", "plain")
	v.SetDefault("cggtts.rev_date", "2014-02-20")
	v.SetDefault("cggtts.comments", "none")
	v.SetDefault("cggtts.delay_kind", "INT")
	v.SetDefault("cggtts.min_elevation", 10.0)
	v.SetDefault("cggtts.max_dsg", 100.0)
	v.SetDefault("cggtts.max_ura", 3.0)
	v.SetDefault("cggtts.min_track_length", 390)
	v.SetDefault("cggtts.surface_refractivity", NS_SURFACE)
	v.SetDefault("cggtts.output_dir", ".")
	v.SetDefault("inputs.observations", "./rinex/%n0.%yO")
	v.SetDefault("inputs.navigation", "./rinex/%n0.%yN")
	v.SetDefault("archive.clickhouse_table", "cggtts")
	v.SetDefault("archive.push_job", "rnx2cggtts")
}

/* default options (no configuration file) */
func DefaultOptions() *Options {
	v := viper.New()
	setDefaults(v)
	opt := &Options{}
	_ = v.Unmarshal(opt)
	return opt
}

/* load options file ---------------------------------------------------------------
* args   : file     I   options file path
* return : options, error (ErrConfig)
*-----------------------------------------------------------------------------*/
func LoadOptions(file string) (*Options, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	opt := &Options{}
	if err := v.Unmarshal(opt); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, file, err)
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	return opt, nil
}

/* resolved output ---------------------------------------------------------------*/
type Output struct {
	Sys    Constellation
	Code   Code
	Delays Delays
}

func (o Output) String() string {
	return o.Sys.String() + " " + o.Code.String()
}

/* check options and resolve outputs ----------------------------------------------*/
func (opt *Options) Validate() error {
	_, err := opt.ResolveOutputs()
	return err
}

func (opt *Options) ResolveOutputs() ([]Output, error) {
	c := &opt.CGGTTS
	ver, err := ParseVersion(c.Version)
	if err != nil {
		return nil, err
	}
	naming, err := ParseNaming(c.Naming)
	if err != nil {
		return nil, err
	}
	kind, err := ParseDelayKind(c.DelayKind)
	if err != nil {
		return nil, err
	}
	if c.MinElevation < 0 || c.MaxDSG < 0 || c.MaxURA < 0 || c.MinTrackLength < 0 {
		return nil, fmt.Errorf("%w: negative quality limit", ErrConfig)
	}
	if naming == NamingBIPM && (len(opt.Lab.Code) != 2 || len(opt.Lab.ReceiverCode) != 2) {
		return nil, fmt.Errorf("%w: bipm naming needs 2 character lab and receiver codes", ErrConfig)
	}
	if len(opt.Outputs) == 0 {
		return nil, fmt.Errorf("%w: no outputs", ErrConfig)
	}
	outs := make([]Output, 0, len(opt.Outputs))
	seen := make(map[string]bool)
	for _, o := range opt.Outputs {
		sys, err := ParseConstellation(o.Constellation)
		if err != nil {
			return nil, err
		}
		code, err := ParseCode(o.Code)
		if err != nil {
			return nil, err
		}
		if !ValidCode(sys, code) {
			return nil, fmt.Errorf("%w: code %s not supported for %s", ErrConfig, code, sys)
		}
		if ver == V1 && (sys != GPS || code != C1 || kind != DelayINT) {
			return nil, fmt.Errorf("%w: version 01 supports GPS C1 with INT delays only", ErrConfig)
		}
		out := Output{Sys: sys, Code: code, Delays: Delays{
			Kind:      kind,
			Internal:  o.InternalDelay,
			Internal2: o.InternalDelay2,
			System:    o.SystemDelay,
			System2:   o.SystemDelay2,
			Total:     o.TotalDelay,
			Total2:    o.TotalDelay2,
			Cable:     c.CableDelay,
			Reference: c.ReferenceDelay,
			CalID:     o.CalibrationID,
		}}
		if seen[out.String()] {
			return nil, fmt.Errorf("%w: duplicate output %s", ErrConfig, out)
		}
		seen[out.String()] = true
		outs = append(outs, out)
	}
	return outs, nil
}

func (opt *Options) Limits() FitLimits {
	return FitLimits{
		MinElevation:   opt.CGGTTS.MinElevation,
		MaxDSG:         opt.CGGTTS.MaxDSG,
		MinTrackLength: opt.CGGTTS.MinTrackLength,
	}
}

func (opt *Options) AntennaPos() Antenna {
	a := opt.Antenna
	return NewAntenna(a.X, a.Y, a.Z, a.Frame)
}

/* cggtts header of an output */
func (opt *Options) Header(out Output) *Header {
	ver, _ := ParseVersion(opt.CGGTTS.Version)
	r := opt.Receiver
	return &Header{
		Version: ver,
		RevDate: opt.CGGTTS.RevDate,
		Receiver: strings.TrimSpace(fmt.Sprintf("%s %s %s %d gnsstt v%s", r.Manufacturer, r.Model,
			r.Serial, r.Year, VER_GNSSTT)),
		Channels:  r.Channels,
		Lab:       opt.Lab.Name,
		Antenna:   opt.AntennaPos(),
		Comments:  opt.CGGTTS.Comments,
		Sys:       out.Sys,
		Code:      out.Code,
		Delays:    out.Delays,
		Reference: opt.Lab.Reference,
	}
}

/* replace keywords in file path ---------------------------------------------------
* args   : path     I   file path with keywords
*          t        I   time (utc 0h of the day)
* return : path with keywords replaced
* notes  : keywords
*            %Y -> yyyy : year (4 digits) (1900-2099)
*            %y -> yy   : year (2 digits) (00-99)
*            %m -> mm   : month           (01-12)
*            %d -> dd   : day of month    (01-31)
*            %h -> hh   : hours           (00-23)
*            %M -> mm   : minutes         (00-59)
*            %S -> ss   : seconds         (00-59)
*            %n -> ddd  : day of year     (001-366)
*            %W -> wwww : gps week        (0001-9999)
*            %D -> d    : day of gps week (0-6)
*            %J -> nnnnn: modified julian date
*-----------------------------------------------------------------------------*/
func RepPath(path string, t Gtime) string {
	if !strings.Contains(path, "%") {
		return path
	}
	ep := Time2Epoch(t)
	tow, week := Time2GpsT(t)
	r := strings.NewReplacer(
		"%Y", fmt.Sprintf("%04.0f", ep[0]),
		"%y", fmt.Sprintf("%02d", int(ep[0])%100),
		"%m", fmt.Sprintf("%02.0f", ep[1]),
		"%d", fmt.Sprintf("%02.0f", ep[2]),
		"%h", fmt.Sprintf("%02.0f", ep[3]),
		"%M", fmt.Sprintf("%02.0f", ep[4]),
		"%S", fmt.Sprintf("%02d", int(ep[5])),
		"%n", fmt.Sprintf("%03d", Time2Doy(t)),
		"%W", fmt.Sprintf("%04d", week),
		"%D", fmt.Sprintf("%d", int(tow/86400.0)),
		"%J", fmt.Sprintf("%d", Time2MJD(t)),
	)
	return r.Replace(path)
}
