package header

// FilterNormalizationData maps vendor filter-wheel spellings (lower-case)
// to canonical filter names. Many-to-one; spellings absent from the table
// pass through NormalizeFilterName unchanged.
var FilterNormalizationData = map[string]string{
	// Narrowband.
	"ha":       "Ha",
	"h-alpha":  "Ha",
	"h_alpha":  "Ha",
	"halpha":   "Ha",
	"h alpha":  "Ha",
	"oiii":     "OIII",
	"o-iii":    "OIII",
	"o3":       "OIII",
	"oxygen3":  "OIII",
	"sii":      "SII",
	"s-ii":     "SII",
	"s2":       "SII",
	"sulphur2": "SII",

	// Broadband.
	"l":         "L",
	"lum":       "L",
	"luminance": "L",
	"clear":     "L",
	"r":         "R",
	"red":       "R",
	"g":         "G",
	"green":     "G",
	"b":         "B",
	"blue":      "B",

	// Light pollution / cut filters.
	"uvir":      "UVIR",
	"uv/ir":     "UVIR",
	"uv/ir cut": "UVIR",
	"uvircut":   "UVIR",
	"none":      "None",
	"no filter": "None",
}

// ConstantNormalizationData maps (canonical header name, lower-case raw
// value) to the canonical value for enumerations whose vendor spellings
// vary. Lookups are total: unmapped values pass through unchanged.
var ConstantNormalizationData = map[string]map[string]string{
	KeyType: {
		"light":       TypeLight,
		"light frame": TypeLight,
		"lightframe":  TypeLight,
		"science":     TypeLight,
		"dark":        TypeDark,
		"dark frame":  TypeDark,
		"darkframe":   TypeDark,
		"flat":        TypeFlat,
		"flat frame":  TypeFlat,
		"flat field":  TypeFlat,
		"flatfield":   TypeFlat,
		"bias":        TypeBias,
		"bias frame":  TypeBias,
		"zero":        TypeBias,

		"master light": TypeMasterLight,
		"masterlight":  TypeMasterLight,
		"master dark":  TypeMasterDark,
		"masterdark":   TypeMasterDark,
		"master flat":  TypeMasterFlat,
		"masterflat":   TypeMasterFlat,
		"master bias":  TypeMasterBias,
		"masterbias":   TypeMasterBias,
	},
}
