/*------------------------------------------------------------------------------
* cggtts.go : cggtts file output
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* references :
*     [1] W.Lewandowski, C.Thomas, Technical directives for standardization of
*         GPS time receiver software, BIPM, 1993 (version 01)
*     [2] P.Defraigne, G.Petit, CGGTTS-Version 2E: an extended standard for
*         GNSS time transfer, Metrologia 52, 2015
*
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

/* cggtts versions */
type Version int

const (
	V1  Version = 1
	V2E Version = 2
)

func ParseVersion(s string) (Version, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "V1", "1", "01":
		return V1, nil
	case "V2E", "2E":
		return V2E, nil
	}
	return 0, fmt.Errorf("%w: unknown cggtts version %q", ErrConfig, s)
}

/* kind of delay reporting in the header */
type DelayKind int

const (
	DelayINT DelayKind = iota + 1 /* internal + cable + reference */
	DelaySYS                      /* system + reference */
	DelayTOT                      /* total */
)

func ParseDelayKind(s string) (DelayKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INT", "INTERNAL":
		return DelayINT, nil
	case "SYS", "SYSTEM":
		return DelaySYS, nil
	case "TOT", "TOTAL":
		return DelayTOT, nil
	}
	return 0, fmt.Errorf("%w: unknown delay kind %q", ErrConfig, s)
}

/* file naming conventions */
type Naming int

const (
	NamingPlain Naming = iota + 1 /* <mjd>.cctf */
	NamingBIPM                    /* <sys><Z|M><lab><rx><mjd/1000>.<mjd%1000> */
)

func ParseNaming(s string) (Naming, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PLAIN":
		return NamingPlain, nil
	case "BIPM":
		return NamingBIPM, nil
	}
	return 0, fmt.Errorf("%w: unknown naming convention %q", ErrConfig, s)
}

/* instrumental delays (ns). second values apply to P2 for P3 outputs ------------*/
type Delays struct {
	Kind      DelayKind
	Internal  float64
	Internal2 float64
	System    float64
	System2   float64
	Total     float64
	Total2    float64
	Cable     float64
	Reference float64
	CalID     string
}

func ionoFree(d1, d2 float64) float64 {
	return (GAMMA12*d1 - d2) / (GAMMA12 - 1.0)
}

/* total delay subtracted from the measurement for a code (ns) */
func (d Delays) Applied(code Code) float64 {
	pick := func(a, b float64) float64 {
		if code == P3 {
			return ionoFree(a, b)
		}
		return a
	}
	switch d.Kind {
	case DelaySYS:
		return pick(d.System, d.System2) - d.Reference
	case DelayTOT:
		return pick(d.Total, d.Total2)
	}
	return pick(d.Internal, d.Internal2) + d.Cable - d.Reference
}

/* cggtts header ----------------------------------------------------------------*/
type Header struct {
	Version   Version
	RevDate   string
	Receiver  string
	Channels  int
	Lab       string
	Antenna   Antenna
	Comments  string
	Sys       Constellation
	Code      Code
	Delays    Delays
	Reference string
}

/* code label in delay lines, e.g. "GPS C1" */
func codeLabel(sys Constellation, code Code) string {
	switch sys {
	case Galileo:
		return "GAL E1"
	case BeiDou:
		return "BDS B1"
	}
	return "GPS " + code.String()
}

func (h *Header) delayLines() []string {
	d := h.Delays
	if h.Version == V1 {
		return []string{
			fmt.Sprintf("INT DLY = %.1f ns", d.Internal),
			fmt.Sprintf("CAB DLY = %.1f ns", d.Cable),
			fmt.Sprintf("REF DLY = %.1f ns", d.Reference),
		}
	}
	value := func(v1, v2 float64) string {
		if h.Code == P3 {
			return fmt.Sprintf("%.1f ns (%s), %.1f ns (%s)", v1, codeLabel(h.Sys, P1), v2,
				codeLabel(h.Sys, P2))
		}
		return fmt.Sprintf("%.1f ns (%s)", v1, codeLabel(h.Sys, h.Code))
	}
	calid := d.CalID
	if calid == "" {
		calid = "NA"
	}
	switch d.Kind {
	case DelaySYS:
		return []string{
			fmt.Sprintf("SYS DLY = %s     CAL_ID = %s", value(d.System, d.System2), calid),
			fmt.Sprintf("REF DLY = %.1f ns", d.Reference),
		}
	case DelayTOT:
		return []string{
			fmt.Sprintf("TOT DLY = %s     CAL_ID = %s", value(d.Total, d.Total2), calid),
		}
	}
	return []string{
		fmt.Sprintf("INT DLY = %s     CAL_ID = %s", value(d.Internal, d.Internal2), calid),
		fmt.Sprintf("CAB DLY = %.1f ns", d.Cable),
		fmt.Sprintf("REF DLY = %.1f ns", d.Reference),
	}
}

/* header lines including the checksum line ---------------------------------------*/
func (h *Header) Lines() []string {
	first := "CGGTTS     GENERIC DATA FORMAT VERSION = 2E"
	if h.Version == V1 {
		first = "GGTTS GPS DATA FORMAT VERSION = 01"
	}
	lines := []string{
		first,
		"REV DATE = " + h.RevDate,
		"RCVR = " + h.Receiver,
		fmt.Sprintf("CH = %02d", h.Channels),
		"IMS = 99999",
		"LAB = " + h.Lab,
		fmt.Sprintf("X = %+.3f m", h.Antenna.X),
		fmt.Sprintf("Y = %+.3f m", h.Antenna.Y),
		fmt.Sprintf("Z = %+.3f m", h.Antenna.Z),
		"FRAME = " + h.Antenna.Frame,
		"COMMENTS = " + h.Comments,
	}
	lines = append(lines, h.delayLines()...)
	lines = append(lines, "REF = "+h.Reference)

	ck := "CKSUM = "
	sum := 0
	for _, l := range lines {
		sum += checksum(l)
	}
	sum += checksum(ck)
	return append(lines, fmt.Sprintf("%s%02X", ck, sum%256))
}

/* column titles */
func (h *Header) Titles() []string {
	if h.Version == V1 {
		return []string{
			"PRN CL  MJD  STTIME TRKL ELV AZTH   REFSV      SRSV     REFGPS    SRGPS  DSG IOE MDTR SMDT MDIO SMDI CK",
			"             hhmmss  s  .1dg .1dg    .1ns     .1ps/s     .1ns    .1ps/s .1ns     .1ns.1ps/s.1ns.1ps/s  ",
		}
	}
	if h.Code.DualFrequency() {
		return []string{
			"SAT CL  MJD  STTIME TRKL ELV AZTH   REFSV      SRSV     REFSYS    SRSYS  DSG IOE MDTR SMDT MDIO SMDI MSIO SMSI ISG FR HC FRC CK",
			"             hhmmss  s  .1dg .1dg    .1ns     .1ps/s     .1ns    .1ps/s .1ns     .1ns.1ps/s.1ns.1ps/s.1ns.1ps/s.1ns            ",
		}
	}
	return []string{
		"SAT CL  MJD  STTIME TRKL ELV AZTH   REFSV      SRSV     REFSYS    SRSYS  DSG IOE MDTR SMDT MDIO SMDI FR HC FRC CK",
		"             hhmmss  s  .1dg .1dg    .1ns     .1ps/s     .1ns    .1ps/s .1ns     .1ns.1ps/s.1ns.1ps/s            ",
	}
}

func checksum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		sum += int(s[i])
	}
	return sum
}

/* cggtts checksum of a text: sum of character codes mod 256 */
func Checksum(s string) byte {
	return byte(checksum(s) % 256)
}

/* fixed width row builder ---------------------------------------------------------
* each field is checked against its column width, the first overflow is kept
* and stops further output.
*-----------------------------------------------------------------------------*/
type rowBuilder struct {
	b   strings.Builder
	err error
}

func (r *rowBuilder) num(name string, v int64, width int) {
	if r.err != nil {
		return
	}
	s := strconv.FormatInt(v, 10)
	if len(s) > width {
		r.err = fmt.Errorf("%w: %s=%d width=%d", ErrFieldOverflow, name, v, width)
		return
	}
	r.b.WriteString(strings.Repeat(" ", width-len(s)))
	r.b.WriteString(s)
}

/* zero padded non-negative field */
func (r *rowBuilder) zero(name string, v int64, width int) {
	if r.err != nil {
		return
	}
	s := strconv.FormatInt(v, 10)
	if v < 0 || len(s) > width {
		r.err = fmt.Errorf("%w: %s=%d width=%d", ErrFieldOverflow, name, v, width)
		return
	}
	r.b.WriteString(strings.Repeat("0", width-len(s)))
	r.b.WriteString(s)
}

func (r *rowBuilder) str(name, s string, width int) {
	if r.err != nil {
		return
	}
	if len(s) > width {
		r.err = fmt.Errorf("%w: %s=%q width=%d", ErrFieldOverflow, name, s, width)
		return
	}
	r.b.WriteString(strings.Repeat(" ", width-len(s)))
	r.b.WriteString(s)
}

func (r *rowBuilder) sp() {
	if r.err == nil {
		r.b.WriteByte(' ')
	}
}

/* format a data row with its checksum ---------------------------------------------
* args   : r        I   track record
*          ver      I   cggtts version
* return : row text without newline, error (ErrFieldOverflow)
*-----------------------------------------------------------------------------*/
func FormatRecord(r *TrackResult, ver Version) (string, error) {
	var b rowBuilder

	if ver == V1 {
		b.num("PRN", int64(r.Sat.PRN), 3)
	} else {
		b.str("SAT", string(r.Sat.Sys.Letter()), 1)
		b.zero("SAT", int64(r.Sat.PRN), 2)
	}
	b.sp()
	b.str("CL", r.Class, 2)
	b.sp()
	b.num("MJD", int64(r.MJD), 5)
	b.sp()
	b.zero("STTIME", int64(r.Start/3600), 2)
	b.zero("STTIME", int64(r.Start%3600/60), 2)
	b.str("STTIME", "00", 2)
	b.sp()
	b.num("TRKL", int64(r.TrackLength), 4)
	b.sp()
	b.num("ELV", int64(r.Elevation), 3)
	b.sp()
	b.num("AZTH", int64(r.Azimuth), 4)
	b.sp()
	b.num("REFSV", r.REFSV, 11)
	b.sp()
	b.num("SRSV", r.SRSV, 6)
	b.sp()
	b.num("REFSYS", r.REFSYS, 11)
	b.sp()
	b.num("SRSYS", r.SRSYS, 6)
	b.sp()
	b.num("DSG", r.DSG, 4)
	b.sp()
	b.num("IOE", int64(r.IOE), 3)
	b.sp()
	b.num("MDTR", r.MDTR, 4)
	b.sp()
	b.num("SMDT", r.SMDT, 4)
	b.sp()
	b.num("MDIO", r.MDIO, 4)
	b.sp()
	b.num("SMDI", r.SMDI, 4)
	b.sp()
	if ver != V1 {
		if r.Dual {
			b.num("MSIO", r.MSIO, 4)
			b.sp()
			b.num("SMSI", r.SMSI, 4)
			b.sp()
			b.num("ISG", r.ISG, 3)
			b.sp()
		}
		b.num("FR", int64(r.FR), 2)
		b.sp()
		b.num("HC", int64(r.HC), 2)
		b.sp()
		b.str("FRC", r.FRC, 3)
		b.sp()
	}
	if b.err != nil {
		return "", fmt.Errorf("%s mjd=%d sttime=%d: %w", r.Sat, r.MJD, r.Start, b.err)
	}
	row := b.b.String()
	return fmt.Sprintf("%s%02X", row, Checksum(row)), nil
}

/* write header and records --------------------------------------------------------*/
func WriteCGGTTS(w io.Writer, h *Header, results []TrackResult) error {
	bw := bufio.NewWriter(w)
	for _, l := range h.Lines() {
		fmt.Fprintln(bw, l)
	}
	fmt.Fprintln(bw)
	for _, l := range h.Titles() {
		fmt.Fprintln(bw, l)
	}
	for i := range results {
		row, err := FormatRecord(&results[i], h.Version)
		if err != nil {
			return err
		}
		fmt.Fprintln(bw, row)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	return nil
}

/* write a cggtts file ---------------------------------------------------------------
* records are formatted before the file is created so an overflow leaves no
* partial file behind.
*-----------------------------------------------------------------------------*/
func WriteCGGTTSFile(path string, h *Header, results []TrackResult) error {
	for i := range results {
		if _, err := FormatRecord(&results[i], h.Version); err != nil {
			return err
		}
	}
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	if err := WriteCGGTTS(fp, h, results); err != nil {
		fp.Close()
		return err
	}
	if err := fp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	return nil
}

/* cggtts file name ------------------------------------------------------------------
* args   : naming   I   naming convention
*          sys      I   constellation
*          dual     I   dual frequency output
*          lab      I   bipm lab code (2 chars)
*          rx       I   receiver code (2 chars)
*          mjd      I   modified julian date
*-----------------------------------------------------------------------------*/
func FileName(naming Naming, sys Constellation, dual bool, lab, rx string, mjd int) string {
	if naming != NamingBIPM {
		return fmt.Sprintf("%d.cctf", mjd)
	}
	freq := byte('Z')
	if dual {
		freq = 'M'
	}
	return fmt.Sprintf("%c%c%-2.2s%-2.2s%02d.%03d", sys.Letter(), freq, lab, rx, mjd/1000, mjd%1000)
}

/* parse a data row ------------------------------------------------------------------
* reads back a row written by FormatRecord and verifies its checksum.
*-----------------------------------------------------------------------------*/
func ParseRecord(line string, ver Version, dual bool) (TrackResult, error) {
	var r TrackResult
	width := 111
	switch {
	case ver == V1:
		width = 101
	case dual:
		width = 125
	}
	line = strings.TrimRight(line, "\r\n")
	if len(line) != width+2 {
		return r, fmt.Errorf("row length %d, expected %d", len(line), width+2)
	}
	ck, err := strconv.ParseUint(line[width:], 16, 8)
	if err != nil {
		return r, fmt.Errorf("row checksum %q: %w", line[width:], err)
	}
	if byte(ck) != Checksum(line[:width]) {
		return r, fmt.Errorf("row checksum %02X, computed %02X", ck, Checksum(line[:width]))
	}
	f := strings.Fields(line[:width])
	nf := 17
	if ver != V1 {
		nf = 20
		if dual {
			nf = 23
		}
	}
	if len(f) != nf {
		return r, fmt.Errorf("row has %d fields, expected %d", len(f), nf)
	}
	var ints [23]int64
	for i := range f {
		if i == 0 || i == 1 || i == 3 || (ver != V1 && i == nf-1) {
			continue
		}
		if ints[i], err = strconv.ParseInt(f[i], 10, 64); err != nil {
			return r, fmt.Errorf("row field %d %q: %w", i, f[i], err)
		}
	}
	if ver == V1 {
		prn, err := strconv.Atoi(f[0])
		if err != nil {
			return r, fmt.Errorf("row prn %q: %w", f[0], err)
		}
		r.Sat = SatID{Sys: GPS, PRN: prn}
	} else if r.Sat, err = ParseSatID(f[0]); err != nil {
		return r, err
	}
	st := f[3]
	if len(st) != 6 {
		return r, fmt.Errorf("row start time %q", st)
	}
	hh, err := strconv.Atoi(st[0:2])
	if err != nil {
		return r, fmt.Errorf("row start time %q: %w", st, err)
	}
	mm, err := strconv.Atoi(st[2:4])
	if err != nil {
		return r, fmt.Errorf("row start time %q: %w", st, err)
	}
	r.Class = f[1]
	r.MJD = int(ints[2])
	r.Start = hh*3600 + mm*60
	r.TrackLength = int(ints[4])
	r.Elevation, r.Azimuth = int(ints[5]), int(ints[6])
	r.REFSV, r.SRSV, r.REFSYS, r.SRSYS = ints[7], ints[8], ints[9], ints[10]
	r.DSG, r.IOE = ints[11], int(ints[12])
	r.MDTR, r.SMDT, r.MDIO, r.SMDI = ints[13], ints[14], ints[15], ints[16]
	if ver == V1 {
		return r, nil
	}
	i := 17
	if dual {
		r.MSIO, r.SMSI, r.ISG, r.Dual = ints[17], ints[18], ints[19], true
		i = 20
	}
	r.FR, r.HC, r.FRC = int(ints[i]), int(ints[i+1]), line[width-4:width-1]
	return r, nil
}
