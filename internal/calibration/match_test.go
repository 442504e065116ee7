package calibration

import (
	"testing"

	"github.com/starford/astrometa/internal/header"
	"github.com/starford/astrometa/internal/indexer"
)

func frame(t *testing.T, path string, fields map[string]string) *indexer.Record {
	t.Helper()
	rec := &indexer.Record{Path: path, Fields: header.Record{}}
	for k, v := range fields {
		switch k {
		case header.KeyDate:
			d, err := header.NormalizeDate(v)
			if err != nil {
				t.Fatalf("bad test date %q: %v", v, err)
			}
			rec.Fields.Set(k, d)
		default:
			rec.Fields.Set(k, header.Text(v))
		}
	}
	return rec
}

func light(t *testing.T) *indexer.Record {
	return frame(t, "/lights/m31.fits", map[string]string{
		header.KeyType:            "LIGHT",
		header.KeyCamera:          "ASI2600MM",
		header.KeyFilter:          "Ha",
		header.KeyExposureSeconds: "300",
		header.KeyGain:            "100",
		header.KeyOffset:          "50",
		header.KeySetTemp:         "-10",
		header.KeyDate:            "2024-01-05",
	})
}

func calIndex(recs ...*indexer.Record) indexer.Index {
	idx := indexer.Index{}
	for _, r := range recs {
		idx[r.Path] = r
	}
	return idx
}

func TestFindMatchingDark_ExactExposurePreferred(t *testing.T) {
	exact := frame(t, "/cal/dark_300.fits", map[string]string{
		header.KeyType:            "DARK",
		header.KeyCamera:          "ASI2600MM",
		header.KeyExposureSeconds: "300",
		header.KeyGain:            "100",
		header.KeyOffset:          "50",
		header.KeySetTemp:         "-10",
	})
	longer := frame(t, "/cal/dark_600.fits", map[string]string{
		header.KeyType:            "DARK",
		header.KeyCamera:          "ASI2600MM",
		header.KeyExposureSeconds: "600",
		header.KeyGain:            "100",
		header.KeyOffset:          "50",
		header.KeySetTemp:         "-10",
	})

	got := FindMatchingDark(light(t), calIndex(longer, exact), DefaultOptions())
	if got != exact.Path {
		t.Fatalf("FindMatchingDark() = %q, want %q", got, exact.Path)
	}
}

func TestFindMatchingDark_ClosestLongerWhenNoExact(t *testing.T) {
	d600 := frame(t, "/cal/dark_600.fits", map[string]string{
		header.KeyType:            "DARK",
		header.KeyCamera:          "ASI2600MM",
		header.KeyExposureSeconds: "600",
		header.KeyGain:            "100",
		header.KeyOffset:          "50",
	})
	d360 := frame(t, "/cal/dark_360.fits", map[string]string{
		header.KeyType:            "DARK",
		header.KeyCamera:          "ASI2600MM",
		header.KeyExposureSeconds: "360",
		header.KeyGain:            "100",
		header.KeyOffset:          "50",
	})
	d120 := frame(t, "/cal/dark_120.fits", map[string]string{
		header.KeyType:            "DARK",
		header.KeyCamera:          "ASI2600MM",
		header.KeyExposureSeconds: "120",
		header.KeyGain:            "100",
		header.KeyOffset:          "50",
	})

	got := FindMatchingDark(light(t), calIndex(d600, d360, d120), DefaultOptions())
	if got != d360.Path {
		t.Fatalf("FindMatchingDark() = %q, want %q", got, d360.Path)
	}
}

func TestFindMatchingDark_TemperatureTolerance(t *testing.T) {
	warm := frame(t, "/cal/dark_warm.fits", map[string]string{
		header.KeyType:            "DARK",
		header.KeyCamera:          "ASI2600MM",
		header.KeyExposureSeconds: "300",
		header.KeyGain:            "100",
		header.KeyOffset:          "50",
		header.KeySetTemp:         "5",
	})

	if got := FindMatchingDark(light(t), calIndex(warm), DefaultOptions()); got != "" {
		t.Fatalf("FindMatchingDark() = %q, want no match outside tolerance", got)
	}

	opts := DefaultOptions()
	opts.TemperatureTolerance = 20
	if got := FindMatchingDark(light(t), calIndex(warm), opts); got != warm.Path {
		t.Fatalf("FindMatchingDark() = %q, want %q with widened tolerance", got, warm.Path)
	}
}

func TestFindMatchingDark_GainMismatchRejected(t *testing.T) {
	dark := frame(t, "/cal/dark.fits", map[string]string{
		header.KeyType:            "DARK",
		header.KeyCamera:          "ASI2600MM",
		header.KeyExposureSeconds: "300",
		header.KeyGain:            "200",
		header.KeyOffset:          "50",
	})

	if got := FindMatchingDark(light(t), calIndex(dark), DefaultOptions()); got != "" {
		t.Fatalf("FindMatchingDark() = %q, want no match with gain mismatch", got)
	}

	opts := DefaultOptions()
	opts.MatchGain = false
	if got := FindMatchingDark(light(t), calIndex(dark), opts); got != dark.Path {
		t.Fatalf("FindMatchingDark() = %q, want %q when gain is ignored", got, dark.Path)
	}
}

func TestFindMatchingDark_MasterDarkAccepted(t *testing.T) {
	master := frame(t, "/cal/masterdark.xisf", map[string]string{
		header.KeyType:            "MASTER DARK",
		header.KeyCamera:          "ASI2600MM",
		header.KeyExposureSeconds: "300",
		header.KeyGain:            "100",
		header.KeyOffset:          "50",
		header.KeySetTemp:         "-10",
	})

	if got := FindMatchingDark(light(t), calIndex(master), DefaultOptions()); got != master.Path {
		t.Fatalf("FindMatchingDark() = %q, want %q", got, master.Path)
	}
}

func TestFindMatchingBias_Deterministic(t *testing.T) {
	a := frame(t, "/cal/bias_a.fits", map[string]string{
		header.KeyType:    "BIAS",
		header.KeyCamera:  "ASI2600MM",
		header.KeyGain:    "100",
		header.KeyOffset:  "50",
		header.KeySetTemp: "-10",
	})
	b := frame(t, "/cal/bias_b.fits", map[string]string{
		header.KeyType:    "BIAS",
		header.KeyCamera:  "ASI2600MM",
		header.KeyGain:    "100",
		header.KeyOffset:  "50",
		header.KeySetTemp: "-10",
	})

	for i := 0; i < 5; i++ {
		if got := FindMatchingBias(light(t), calIndex(b, a), DefaultOptions()); got != a.Path {
			t.Fatalf("FindMatchingBias() = %q, want %q", got, a.Path)
		}
	}
}

func TestFindMatchingBias_CameraMismatchRejected(t *testing.T) {
	bias := frame(t, "/cal/bias.fits", map[string]string{
		header.KeyType:   "BIAS",
		header.KeyCamera: "ASI533MC",
		header.KeyGain:   "100",
		header.KeyOffset: "50",
	})

	if got := FindMatchingBias(light(t), calIndex(bias), DefaultOptions()); got != "" {
		t.Fatalf("FindMatchingBias() = %q, want no match across cameras", got)
	}
}

func TestFindMatchingFlat_FilterMustAgree(t *testing.T) {
	ha := frame(t, "/cal/flat_ha.fits", map[string]string{
		header.KeyType:   "FLAT",
		header.KeyCamera: "ASI2600MM",
		header.KeyFilter: "Ha",
		header.KeyGain:   "100",
		header.KeyOffset: "50",
		header.KeyDate:   "2024-01-05",
	})
	oiii := frame(t, "/cal/flat_oiii.fits", map[string]string{
		header.KeyType:   "FLAT",
		header.KeyCamera: "ASI2600MM",
		header.KeyFilter: "OIII",
		header.KeyGain:   "100",
		header.KeyOffset: "50",
		header.KeyDate:   "2024-01-05",
	})

	if got := FindMatchingFlat(light(t), calIndex(oiii, ha), DefaultOptions()); got != ha.Path {
		t.Fatalf("FindMatchingFlat() = %q, want %q", got, ha.Path)
	}
}

func TestFindMatchingFlat_DateTolerance(t *testing.T) {
	near := frame(t, "/cal/flat_near.fits", map[string]string{
		header.KeyType:   "FLAT",
		header.KeyCamera: "ASI2600MM",
		header.KeyFilter: "Ha",
		header.KeyGain:   "100",
		header.KeyOffset: "50",
		header.KeyDate:   "2024-01-03",
	})
	far := frame(t, "/cal/flat_far.fits", map[string]string{
		header.KeyType:   "FLAT",
		header.KeyCamera: "ASI2600MM",
		header.KeyFilter: "Ha",
		header.KeyGain:   "100",
		header.KeyOffset: "50",
		header.KeyDate:   "2023-11-01",
	})

	opts := DefaultOptions()
	opts.DateToleranceDays = 7
	if got := FindMatchingFlat(light(t), calIndex(far, near), opts); got != near.Path {
		t.Fatalf("FindMatchingFlat() = %q, want %q within the date window", got, near.Path)
	}

	opts.DateToleranceDays = 1
	if got := FindMatchingFlat(light(t), calIndex(far, near), opts); got != "" {
		t.Fatalf("FindMatchingFlat() = %q, want no match with a 1 day window", got)
	}
}

func TestFindAll_CombinesKinds(t *testing.T) {
	dark := frame(t, "/cal/dark.fits", map[string]string{
		header.KeyType:            "DARK",
		header.KeyCamera:          "ASI2600MM",
		header.KeyExposureSeconds: "300",
		header.KeyGain:            "100",
		header.KeyOffset:          "50",
		header.KeySetTemp:         "-10",
	})
	bias := frame(t, "/cal/bias.fits", map[string]string{
		header.KeyType:   "BIAS",
		header.KeyCamera: "ASI2600MM",
		header.KeyGain:   "100",
		header.KeyOffset: "50",
	})
	flat := frame(t, "/cal/flat.fits", map[string]string{
		header.KeyType:   "FLAT",
		header.KeyCamera: "ASI2600MM",
		header.KeyFilter: "Ha",
		header.KeyGain:   "100",
		header.KeyOffset: "50",
		header.KeyDate:   "2024-01-05",
	})

	got := FindAll(light(t), calIndex(dark, bias, flat), DefaultOptions())
	want := MatchSet{Dark: dark.Path, Bias: bias.Path, Flat: flat.Path}
	if got != want {
		t.Fatalf("FindAll() = %+v, want %+v", got, want)
	}
}

func TestFindMatchingDark_LightWithoutExposure(t *testing.T) {
	rec := frame(t, "/lights/weird.fits", map[string]string{
		header.KeyType:   "LIGHT",
		header.KeyCamera: "ASI2600MM",
	})
	dark := frame(t, "/cal/dark.fits", map[string]string{
		header.KeyType:            "DARK",
		header.KeyCamera:          "ASI2600MM",
		header.KeyExposureSeconds: "300",
	})

	if got := FindMatchingDark(rec, calIndex(dark), DefaultOptions()); got != "" {
		t.Fatalf("FindMatchingDark() = %q, want no match without a light exposure", got)
	}
}
