package header

import "strings"

// Canonical header names used across all records after normalization.
const (
	KeyDate            = "date"
	KeyDateTime        = "datetime"
	KeyType            = "type"
	KeyOptic           = "optic"
	KeyFocalRatio      = "focal_ratio"
	KeyCamera          = "camera"
	KeyTargetName      = "targetname"
	KeyPanel           = "panel"
	KeyFilter          = "filter"
	KeyExposureSeconds = "exposureseconds"
	KeyTemp            = "temp"
	KeySetTemp         = "settemp"
	KeyLatitude        = "latitude"
	KeyLongitude       = "longitude"
	KeyReadoutMode     = "readoutmode"
	KeyGain            = "gain"
	KeyOffset          = "offset"
	KeyFocalLen        = "focallen"
	KeyFilename        = "filename"
	KeyHFR             = "hfr"
	KeyStars           = "stars"
	KeyRMSAC           = "rmsac"
)

// Frame type constants, raw and master (stacked) variants.
const (
	TypeLight = "LIGHT"
	TypeDark  = "DARK"
	TypeFlat  = "FLAT"
	TypeBias  = "BIAS"

	TypeMasterLight = "MASTER LIGHT"
	TypeMasterDark  = "MASTER DARK"
	TypeMasterFlat  = "MASTER FLAT"
	TypeMasterBias  = "MASTER BIAS"
)

// CalibrationTypes lists raw calibration frame types (individual sub-exposures).
var CalibrationTypes = []string{TypeDark, TypeFlat, TypeBias}

// MasterCalibrationTypes lists stacked calibration frame types.
var MasterCalibrationTypes = []string{TypeMasterDark, TypeMasterFlat, TypeMasterBias}

// rawKey maps a raw FITS/XISF header name (upper-case) to its canonical
// name. Several raw spellings collapse onto one canonical key; keyPriority
// decides which raw spelling wins when a file carries more than one.
var rawKey = map[string]string{
	"DATE-OBS": KeyDateTime,
	"IMAGETYP": KeyType,
	"TELESCOP": KeyOptic,
	"FOCRATIO": KeyFocalRatio,
	"INSTRUME": KeyCamera,
	"OBJECT":   KeyTargetName,
	"FILTER":   KeyFilter,
	"EXPOSURE": KeyExposureSeconds,
	"EXPTIME":  KeyExposureSeconds,
	"EXP":      KeyExposureSeconds,
	"CCD-TEMP": KeyTemp,
	"SET-TEMP": KeySetTemp,
	"SETTEMP":  KeySetTemp,
	"SITELAT":  KeyLatitude,
	"OBSGEO-B": KeyLatitude,
	"SITELONG": KeyLongitude,
	"OBSGEO-L": KeyLongitude,
	"READOUTM": KeyReadoutMode,
	"GAIN":     KeyGain,
	"OFFSET":   KeyOffset,
	"FOCALLEN": KeyFocalLen,
}

// keyPriority ranks alternative raw spellings of the same canonical key;
// lower wins. Raw names absent from the map rank 0.
var keyPriority = map[string]int{
	"EXPTIME":  1,
	"EXP":      2,
	"SETTEMP":  1,
	"OBSGEO-B": 1,
	"OBSGEO-L": 1,
}

// CanonicalKey maps a raw header name to its canonical form. Unrecognized
// names pass through in canonical (lower) case.
func CanonicalKey(raw string) string {
	if k, ok := rawKey[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return k
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

// numericKeys holds canonical keys whose values are rewritten to a
// canonical decimal spelling when they parse as numbers.
var numericKeys = map[string]struct{}{
	KeyExposureSeconds: {},
	KeyGain:            {},
	KeyOffset:          {},
	KeyTemp:            {},
	KeySetTemp:         {},
	KeyFocalLen:        {},
	KeyFocalRatio:      {},
	KeyHFR:             {},
	KeyStars:           {},
	KeyRMSAC:           {},
}
