/*------------------------------------------------------------------------------
* types.go : constants, satellite identifiers and basic types
*
*          Copyright (C) 2022-2023 by Feng Xuebin, All rights reserved.
*
*-----------------------------------------------------------------------------*/
package gnsstt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	VER_GNSSTT       = "1.0.0"
	COPYRIGHT_GNSSTT = "Copyright (C) 2022-2023 Feng Xuebin\nAll rights reserved."

	PI       float64 = 3.1415926535897932    /* pi */
	D2R              = (PI / 180.0)          /* deg to rad */
	R2D              = (180.0 / PI)          /* rad to deg */
	CLIGHT   float64 = 299792458.0           /* speed of light (m/s) */
	SC2RAD   float64 = 3.1415926535898       /* semi-circle to radian (IS-GPS) */
	OMGE     float64 = 7.2921151467e-5       /* earth angular velocity (IS-GPS) (rad/s) */
	OMGE_GAL float64 = 7.2921151467e-5       /* earth angular velocity (Galileo ICD) (rad/s) */
	OMGE_CMP float64 = 7.292115e-5           /* earth angular velocity (BDS ICD) (rad/s) */
	MU_GPS   float64 = 3.9860050e14          /* gravitational constant (IS-GPS) */
	MU_GAL   float64 = 3.986004418e14        /* earth gravitational constant (Galileo ICD) */
	MU_CMP   float64 = 3.986004418e14        /* earth gravitational constant (BDS ICD) */
	RE_WGS84 float64 = 6378137.0             /* earth semimajor axis (WGS84) (m) */
	FE_WGS84 float64 = (1.0 / 298.257223563) /* earth flattening (WGS84) */
	F_REL    float64 = -4.442807633e-10      /* relativistic clock constant (s/m^0.5) */

	FREQ1   float64 = 1.57542e9                       /* L1/E1 frequency (Hz) */
	FREQ2   float64 = 1.22760e9                       /* L2 frequency (Hz) */
	GAMMA12 float64 = (FREQ1 / FREQ2) * (FREQ1 / FREQ2) /* (77/60)^2 */

	FREQ1_CMP float64 = 1.561098e9                                /* BDS B1I frequency (Hz) */
	GAMMA1C   float64 = (FREQ1 / FREQ1_CMP) * (FREQ1 / FREQ1_CMP) /* L1 to B1I ionosphere scale */

	RTOL_KEPLER     = 1e-8 /* relative tolerance for Kepler equation */
	MAX_ITER_KEPLER = 10   /* max number of iteration of Kepler */

	SECDAY   = 86400.0  /* seconds of a day */
	SECWEEK  = 604800.0 /* seconds of a week */
	HALFWEEK = 302400.0 /* half a week */
	MAXDTOE  = 8640.0   /* max age of ephemeris (s) */

	EPOCH_INTERVAL   = 30    /* observation grid interval (s) */
	EPOCHS_PER_DAY   = 2880  /* grid slots in a UTC day */
	TRACK_LEN        = 780   /* nominal track length (s) */
	NTRACKS          = 89    /* nominal tracks per day */
	MJD_SCHEDULE_REF = 50722 /* schedule reference day */
	MAX_RESIDUAL_NS  = 1000.0
	NS_SURFACE       = 324.8 /* nominal surface refractivity */
)

var (
	ErrOrbitDivergence = errors.New("kepler iteration did not converge")
	ErrRangeResidual   = errors.New("range residual too large")
	ErrBadHealth       = errors.New("unhealthy satellite")
	ErrEphemerisMiss   = errors.New("no usable ephemeris")
	ErrShortTrack      = errors.New("track too short")
	ErrLowElevation    = errors.New("elevation below mask")
	ErrHighDSG         = errors.New("dsg above limit")
	ErrFieldOverflow   = errors.New("field overflows column")
	ErrFileWrite       = errors.New("file write error")
	ErrConfig          = errors.New("configuration error")
	ErrNoInput         = errors.New("input file not available")
	ErrBadSatellite    = errors.New("invalid satellite")
	ErrNoObservation   = errors.New("no pseudorange for code")
)

/* navigation systems --------------------------------------------------------*/
type Constellation int

const (
	GPS Constellation = iota + 1
	Galileo
	BeiDou
)

func ParseConstellation(s string) (Constellation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "G", "GPS":
		return GPS, nil
	case "E", "GAL", "GALILEO":
		return Galileo, nil
	case "C", "BDS", "BEIDOU":
		return BeiDou, nil
	}
	return 0, fmt.Errorf("%w: unknown constellation %q", ErrConfig, s)
}

func (c Constellation) String() string {
	switch c {
	case GPS:
		return "GPS"
	case Galileo:
		return "GAL"
	case BeiDou:
		return "BDS"
	}
	return "???"
}

/* rinex and bipm system letter */
func (c Constellation) Letter() byte {
	switch c {
	case GPS:
		return 'G'
	case Galileo:
		return 'E'
	case BeiDou:
		return 'C'
	}
	return '?'
}

func (c Constellation) prnRange() (int, int) {
	switch c {
	case GPS:
		return 1, 32
	case Galileo:
		return 1, 36
	case BeiDou:
		return 1, 63
	}
	return 1, 0
}

func (c Constellation) mu() float64 {
	switch c {
	case Galileo:
		return MU_GAL
	case BeiDou:
		return MU_CMP
	}
	return MU_GPS
}

func (c Constellation) omge() float64 {
	switch c {
	case Galileo:
		return OMGE_GAL
	case BeiDou:
		return OMGE_CMP
	}
	return OMGE
}

/* satellite identifier ------------------------------------------------------*/
type SatID struct {
	Sys Constellation
	PRN int
}

func NewSatID(sys Constellation, prn int) (SatID, error) {
	id := SatID{Sys: sys, PRN: prn}
	if !id.Valid() {
		return SatID{}, fmt.Errorf("%w: %c%02d", ErrBadSatellite, sys.Letter(), prn)
	}
	return id, nil
}

func (s SatID) Valid() bool {
	lo, hi := s.Sys.prnRange()
	return s.PRN >= lo && s.PRN <= hi
}

func (s SatID) String() string {
	return fmt.Sprintf("%c%02d", s.Sys.Letter(), s.PRN)
}

/* order by system then prn */
func (s SatID) Less(o SatID) bool {
	if s.Sys != o.Sys {
		return s.Sys < o.Sys
	}
	return s.PRN < o.PRN
}

/* satellite id from rinex string ("G05", "E11", " 5" as gps) ----------------*/
func ParseSatID(str string) (SatID, error) {
	str = strings.TrimSpace(str)
	if len(str) == 0 {
		return SatID{}, fmt.Errorf("%w: empty id", ErrBadSatellite)
	}
	sys := GPS
	if c := str[0]; c < '0' || c > '9' {
		var err error
		if sys, err = ParseConstellation(string(c)); err != nil {
			return SatID{}, fmt.Errorf("%w: %q", ErrBadSatellite, str)
		}
		str = strings.TrimSpace(str[1:])
	}
	prn, err := strconv.Atoi(str)
	if err != nil {
		return SatID{}, fmt.Errorf("%w: %q", ErrBadSatellite, str)
	}
	return NewSatID(sys, prn)
}

/* observation codes ---------------------------------------------------------*/
type Code int

const (
	C1 Code = iota + 1 /* L1 C/A (E1, B1I for galileo and beidou) */
	P1                 /* L1 P(Y) */
	P2                 /* L2 P(Y) */
	P3                 /* ionosphere-free P1/P2 */
)

func ParseCode(s string) (Code, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "C1":
		return C1, nil
	case "P1":
		return P1, nil
	case "P2":
		return P2, nil
	case "P3":
		return P3, nil
	}
	return 0, fmt.Errorf("%w: unknown code %q", ErrConfig, s)
}

func (c Code) String() string {
	switch c {
	case C1:
		return "C1"
	case P1:
		return "P1"
	case P2:
		return "P2"
	case P3:
		return "P3"
	}
	return "??"
}

func (c Code) DualFrequency() bool { return c == P3 }

/* cggtts frequency code (FRC column) */
func FreqCode(sys Constellation, code Code) string {
	switch sys {
	case Galileo:
		return "E1 "
	case BeiDou:
		return "B1i"
	}
	switch code {
	case P1:
		return "L1P"
	case P2:
		return "L2P"
	case P3:
		return "L3P"
	}
	return "L1C"
}

/* supported output combinations */
func ValidCode(sys Constellation, code Code) bool {
	if sys == GPS {
		return code >= C1 && code <= P3
	}
	return code == C1
}
