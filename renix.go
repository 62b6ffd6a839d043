/*------------------------------------------------------------------------------
* renix.go : rinex navigation and observation file readers
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
* references :
*     [1] W.Gurtner and L.Estey, RINEX The Receiver Independent Exchange Format
*         Version 2.11, December 10, 2007
*     [2] RINEX The Receiver Independent Exchange Format Version 3.03, July 14,
*         2015
*
* notes   : only gps, galileo and beidou records are decoded. other systems
*           are skipped record by record.
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

const MAXRNXLEN = 16 * 1024 /* max rinex record length */

/* string to number ------------------------------------------------------------
* convert substring in string to number, fortran D exponents accepted
* args   : s        I   string ("... nnn.nnn ...")
*          i,n      I   substring position and width
* return : converted number (0.0:error)
*-----------------------------------------------------------------------------*/
func Str2Num(s string, i, n int) float64 {
	if i < 0 || len(s) < i {
		return 0.0
	}
	if i+n > len(s) {
		s = s[i:]
	} else {
		s = s[i : i+n]
	}
	str := strings.NewReplacer("d", "E", "D", "E").Replace(s)
	value, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0.0
	}
	return value
}

/* string to time --------------------------------------------------------------
* convert substring "yyyy mm dd hh mm ss" to time, two digit years are taken
* as 1980-2079
*-----------------------------------------------------------------------------*/
func Str2Time(s string, i, n int) (Gtime, error) {
	if i < 0 || len(s) < i {
		return Gtime{}, fmt.Errorf("time field out of range: %q", s)
	}
	if i+n < len(s) {
		s = s[i : i+n]
	} else {
		s = s[i:]
	}
	f := strings.Fields(s)
	if len(f) < 6 {
		return Gtime{}, fmt.Errorf("time field: %q", s)
	}
	var ep [6]float64
	for k := 0; k < 6; k++ {
		v, err := strconv.ParseFloat(f[k], 64)
		if err != nil {
			return Gtime{}, fmt.Errorf("time field %q: %w", s, err)
		}
		ep[k] = v
	}
	if ep[0] < 100.0 {
		if ep[0] < 80.0 {
			ep[0] += 2000.0
		} else {
			ep[0] += 1900.0
		}
	}
	return Epoch2Time(ep), nil
}

/* navigation data of a day ------------------------------------------------------*/
type NavData struct {
	Store  *EphemerisStore
	IonGPS Klobuchar
	IonBDS Klobuchar
	Leap   int /* utc-gpst from header (s), 0: not given */
}

func NewNavData() *NavData {
	return &NavData{Store: NewEphemerisStore()}
}

/* broadcast ionosphere coefficients for a system */
func (nav *NavData) Ion(sys Constellation) Klobuchar {
	if sys == BeiDou && !nav.IonBDS.IsZero() {
		return nav.IonBDS
	}
	return nav.IonGPS
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024), MAXRNXLEN)
	return sc
}

/* header label at column 60 */
func label(buff string) string {
	if len(buff) <= 60 {
		return ""
	}
	return strings.TrimSpace(buff[60:])
}

/* version, file type and system from the first header line */
func rnxVersion(buff string) (float64, byte, byte, error) {
	if label(buff) != "RINEX VERSION / TYPE" {
		return 0, 0, 0, fmt.Errorf("not a rinex file: %.60s", buff)
	}
	ver := Str2Num(buff, 0, 9)
	typ, sys := buff[20], byte('G')
	if len(buff) > 40 && buff[40] != ' ' {
		sys = buff[40]
	}
	return ver, typ, sys, nil
}

/* read rinex navigation file ------------------------------------------------------
* args   : r        I   rinex nav stream
*          nav      IO  navigation data
*          tr       I   tracer (nil: silent)
* return : number of records read, error
*-----------------------------------------------------------------------------*/
func ReadRnxNav(r io.Reader, nav *NavData, tr *Tracer) (int, error) {
	sc := newScanner(r)
	if !sc.Scan() {
		return 0, fmt.Errorf("%w: empty navigation file", ErrNoInput)
	}
	ver, typ, fsys, err := rnxVersion(sc.Text())
	if err != nil {
		return 0, err
	}
	tr.Trace(3, "readrnxnav: ver=%.2f type=%c sys=%c\n", ver, typ, fsys)

	if typ != 'N' {
		return 0, fmt.Errorf("not a navigation file: type=%c", typ)
	}
	if ver < 3.0 && fsys != 'G' && fsys != 'E' {
		tr.Trace(2, "rinex nav system not supported: %c\n", fsys)
		return 0, nil
	}
	for sc.Scan() {
		buff := sc.Text()
		lbl := label(buff)
		switch {
		case lbl == "ION ALPHA":
			for i := 0; i < 4; i++ {
				nav.IonGPS.Alpha[i] = Str2Num(buff, 2+12*i, 12)
			}
		case lbl == "ION BETA":
			for i := 0; i < 4; i++ {
				nav.IonGPS.Beta[i] = Str2Num(buff, 2+12*i, 12)
			}
		case lbl == "IONOSPHERIC CORR":
			var ion *[4]float64
			switch buff[:4] {
			case "GPSA":
				ion = &nav.IonGPS.Alpha
			case "GPSB":
				ion = &nav.IonGPS.Beta
			case "BDSA":
				ion = &nav.IonBDS.Alpha
			case "BDSB":
				ion = &nav.IonBDS.Beta
			}
			if ion != nil {
				for i := 0; i < 4; i++ {
					ion[i] = Str2Num(buff, 5+12*i, 12)
				}
			}
		case lbl == "LEAP SECONDS":
			nav.Leap = -int(Str2Num(buff, 0, 6))
		case lbl == "END OF HEADER":
			return readNavBody(sc, ver, fsys, nav, tr)
		}
	}
	return 0, fmt.Errorf("rinex nav header not terminated")
}

func readNavBody(sc *bufio.Scanner, ver float64, fsys byte, nav *NavData, tr *Tracer) (int, error) {
	n := 0
	for sc.Scan() {
		buff := sc.Text()
		if strings.TrimSpace(buff) == "" {
			continue
		}
		var (
			data [64]float64
			sys  = fsys
			id   string
			sp   = 3
		)
		if ver >= 3.0 {
			if len(buff) < 3 {
				continue
			}
			sys, id, sp = buff[0], buff[:3], 4
		} else {
			id = string(fsys) + strings.TrimSpace(buff[:2])
		}
		nline := 7
		if sys == 'R' || sys == 'S' {
			nline = 3
		}
		toc, err := Str2Time(buff, sp, 19)
		for j := 0; j < 3; j++ {
			data[j] = Str2Num(buff, sp+19+19*j, 19)
		}
		for k := 0; k < nline && sc.Scan(); k++ {
			line := sc.Text()
			for j := 0; j < 4; j++ {
				data[3+4*k+j] = Str2Num(line, sp+19*j, 19)
			}
		}
		if err != nil {
			tr.Trace(2, "rinex nav toc error: %.23s\n", buff)
			continue
		}
		if sys != 'G' && sys != 'E' && sys != 'C' {
			continue
		}
		sat, err := ParseSatID(id)
		if err != nil {
			tr.Trace(2, "rinex nav satellite error: %s\n", id)
			nav.Store.invalid++
			continue
		}
		eph := decodeEph(sat, toc, data[:])
		if nav.Store.Insert(eph) {
			n++
		} else {
			tr.Trace(4, "rinex nav duplicate: sat=%s toe=%.0f\n", sat, eph.Toe)
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read rinex nav: %w", err)
	}
	return n, nil
}

/* decode ephemeris record */
func decodeEph(sat SatID, toc Gtime, data []float64) Ephemeris {
	eph := Ephemeris{
		Sat:    sat,
		Af0:    data[0],
		Af1:    data[1],
		Af2:    data[2],
		IODE:   int(data[3]),
		Crs:    data[4],
		Deln:   data[5],
		M0:     data[6],
		Cuc:    data[7],
		E:      data[8],
		Cus:    data[9],
		SqrtA:  data[10],
		Toe:    data[11],
		Cic:    data[12],
		OMG0:   data[13],
		Cis:    data[14],
		I0:     data[15],
		Crc:    data[16],
		Omg:    data[17],
		OMGd:   data[18],
		Idot:   data[19],
		Week:   int(data[21]),
		URA:    data[23],
		Health: int(data[24]),
		TGD:    data[25],
		Ttr:    data[27],
	}
	eph.URAIndex = UraIndex(eph.URA)

	switch sat.Sys {
	case BeiDou: /* toc in bdt */
		eph.Toc, _ = Time2BDT(toc)
		eph.IODC = int(data[28])
	case Galileo:
		eph.Toc, _ = Time2GpsT(toc)
	default:
		eph.Toc, _ = Time2GpsT(toc)
		eph.IODC = int(data[26])
		eph.Fit = data[28]
	}
	return eph
}

func ReadRnxNavFile(path string, nav *NavData, tr *Tracer) (int, error) {
	fp, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoInput, err)
	}
	defer fp.Close()
	n, err := ReadRnxNav(fp, nav, tr)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	tr.Trace(3, "readrnxnav: file=%s n=%d\n", path, n)
	return n, nil
}

/* observation types of a code, by priority */
var obsTypes2 = map[Code][]string{
	C1: {"C1"},
	P1: {"P1"},
	P2: {"P2"},
}

var obsTypes3 = map[byte]map[Code][]string{
	'G': {C1: {"C1C"}, P1: {"C1W", "C1P", "C1Y"}, P2: {"C2W", "C2P", "C2Y", "C2D"}},
	'E': {C1: {"C1C", "C1X", "C1B"}},
	'C': {C1: {"C2I", "C1I"}},
}

/* column of each code for a system, -1 when not observed */
func codeIndex(ver float64, sys byte, types []string) map[Code]int {
	idx := map[Code]int{C1: -1, P1: -1, P2: -1}
	table := obsTypes2
	if ver >= 3.0 {
		table = obsTypes3[sys]
	}
	for code, cands := range table {
	search:
		for _, c := range cands {
			for i, t := range types {
				if t == c {
					idx[code] = i
					break search
				}
			}
		}
	}
	return idx
}

/* observation file reader ---------------------------------------------------------
* fills an observation grid of a utc day from rinex observation files.
* Leap is utc-gpst (s) used to take epochs to utc.
*-----------------------------------------------------------------------------*/
type ObsReader struct {
	Grid  *ObsGrid
	Day0  Gtime /* 0h utc of the grid day */
	Leap  float64
	Trace *Tracer
}

type obsHeader struct {
	ver   float64
	sys   byte
	tsys  string
	types map[byte][]string
}

func (o *ObsReader) readHeader(sc *bufio.Scanner) (*obsHeader, error) {
	if !sc.Scan() {
		return nil, fmt.Errorf("%w: empty observation file", ErrNoInput)
	}
	ver, typ, sys, err := rnxVersion(sc.Text())
	if err != nil {
		return nil, err
	}
	if typ != 'O' {
		return nil, fmt.Errorf("not an observation file: type=%c", typ)
	}
	h := &obsHeader{ver: ver, sys: sys, tsys: "GPS", types: make(map[byte][]string)}
	var (
		cur   byte
		ntype int
	)
	for sc.Scan() {
		buff := sc.Text()
		switch label(buff) {
		case "# / TYPES OF OBSERV":
			if n := int(Str2Num(buff, 0, 6)); n > 0 {
				ntype = n
			}
			for i := 0; i < 9 && len(h.types[' ']) < ntype; i++ {
				if 10+6*i+2 > len(buff) {
					break
				}
				h.types[' '] = append(h.types[' '], buff[10+6*i:10+6*i+2])
			}
		case "SYS / # / OBS TYPES":
			if buff[0] != ' ' {
				cur = buff[0]
				ntype = int(Str2Num(buff, 3, 3))
			}
			for i := 0; i < 13 && len(h.types[cur]) < ntype; i++ {
				if 7+4*i+3 > len(buff) {
					break
				}
				h.types[cur] = append(h.types[cur], buff[7+4*i:7+4*i+3])
			}
		case "TIME OF FIRST OBS":
			if len(buff) >= 51 {
				if ts := strings.TrimSpace(buff[48:51]); ts != "" {
					h.tsys = ts
				}
			}
		case "END OF HEADER":
			return h, nil
		}
	}
	return nil, fmt.Errorf("rinex obs header not terminated")
}

/* utc seconds of the grid day of an epoch in the file time system */
func (o *ObsReader) tod(t Gtime, tsys string) float64 {
	if tsys == "BDT" {
		t = BDT2GpsT(t)
	}
	return TimeDiff(TimeAdd(t, o.Leap), o.Day0)
}

/* read rinex observation file -----------------------------------------------------
* args   : r        I   rinex obs stream
* return : number of pseudoranges stored, error
*-----------------------------------------------------------------------------*/
func (o *ObsReader) Read(r io.Reader) (int, error) {
	sc := newScanner(r)
	h, err := o.readHeader(sc)
	if err != nil {
		return 0, err
	}
	o.Trace.Trace(3, "readrnxobs: ver=%.2f sys=%c tsys=%s\n", h.ver, h.sys, h.tsys)

	idx := make(map[byte]map[Code]int)
	for sys, types := range h.types {
		idx[sys] = codeIndex(h.ver, sys, types)
	}
	if h.ver >= 3.0 {
		return o.readBody3(sc, h, idx)
	}
	return o.readBody2(sc, h, idx)
}

func (o *ObsReader) store(sat SatID, tod float64, line string, pos map[Code]int, col func(int) int) int {
	n := 0
	for code, i := range pos {
		if i < 0 {
			continue
		}
		c := col(i)
		if c < 0 || c >= len(line) {
			continue
		}
		if o.Grid.Set(sat, tod, code, Str2Num(line, c, 14)) {
			n++
		}
	}
	return n
}

func (o *ObsReader) readBody2(sc *bufio.Scanner, h *obsHeader, idx map[byte]map[Code]int) (int, error) {
	types := h.types[' ']
	nl := (len(types) + 4) / 5
	n := 0

	for sc.Scan() {
		buff := sc.Text()
		if len(buff) < 32 || strings.TrimSpace(buff) == "" {
			continue
		}
		flag := int(Str2Num(buff, 28, 1))
		nsat := int(Str2Num(buff, 29, 3))
		if flag > 1 && flag < 6 {
			for k := 0; k < nsat && sc.Scan(); k++ {
			}
			continue
		}
		t, err := Str2Time(buff, 0, 26)
		if err != nil {
			o.Trace.Trace(2, "rinex obs invalid epoch: %.32s\n", buff)
			continue
		}
		var ids []string
		for i, line := 0, buff; i < nsat; i++ {
			if i > 0 && i%12 == 0 {
				if !sc.Scan() {
					break
				}
				line = sc.Text()
			}
			c := 32 + 3*(i%12)
			if c+3 > len(line) {
				ids = append(ids, "")
				continue
			}
			id := line[c : c+3]
			if id[0] == ' ' {
				id = string(h.sys) + id[1:]
				if h.sys == 'M' {
					id = "G" + id[1:]
				}
			}
			ids = append(ids, id)
		}
		tod := o.tod(t, h.tsys)
		for _, id := range ids {
			var lines []string
			for k := 0; k < nl && sc.Scan(); k++ {
				lines = append(lines, sc.Text())
			}
			sat, err := ParseSatID(id)
			if err != nil || flag > 1 {
				continue
			}
			pos := idx[' ']
			for code, i := range pos {
				if i < 0 || i/5 >= len(lines) {
					continue
				}
				line, c := lines[i/5], 16*(i%5)
				if c < len(line) && o.Grid.Set(sat, tod, code, Str2Num(line, c, 14)) {
					n++
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read rinex obs: %w", err)
	}
	return n, nil
}

func (o *ObsReader) readBody3(sc *bufio.Scanner, h *obsHeader, idx map[byte]map[Code]int) (int, error) {
	n := 0
	for sc.Scan() {
		buff := sc.Text()
		if len(buff) < 35 || buff[0] != '>' {
			continue
		}
		flag := int(Str2Num(buff, 31, 1))
		nsat := int(Str2Num(buff, 32, 3))
		if flag > 1 && flag < 6 {
			for k := 0; k < nsat && sc.Scan(); k++ {
			}
			continue
		}
		t, err := Str2Time(buff, 1, 28)
		if err != nil {
			o.Trace.Trace(2, "rinex obs invalid epoch: %.35s\n", buff)
			continue
		}
		tod := o.tod(t, h.tsys)
		for k := 0; k < nsat && sc.Scan(); k++ {
			line := sc.Text()
			if flag > 1 || len(line) < 3 {
				continue
			}
			pos, ok := idx[line[0]]
			if !ok {
				continue
			}
			sat, err := ParseSatID(line[:3])
			if err != nil {
				continue
			}
			n += o.store(sat, tod, line, pos, func(i int) int { return 3 + 16*i })
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read rinex obs: %w", err)
	}
	return n, nil
}

func (o *ObsReader) ReadFile(path string) (int, error) {
	fp, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoInput, err)
	}
	defer fp.Close()
	n, err := o.Read(fp)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	o.Trace.Trace(3, "readrnxobs: file=%s n=%d\n", path, n)
	return n, nil
}
