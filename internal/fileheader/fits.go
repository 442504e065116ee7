package fileheader

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"
)

// FITS reads headers from the primary HDU of a FITS file.
type FITS struct{}

// Read opens path and returns every primary-HDU card as a string pair.
// Structural cards (SIMPLE, BITPIX, …) are included; normalization passes
// unrecognized keys through so they are harmless downstream.
func (FITS) Read(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Kind: "fits", Err: err}
	}
	defer f.Close()

	fits, err := fitsio.Open(f)
	if err != nil {
		return nil, &ReadError{Path: path, Kind: "fits", Err: err}
	}
	defer fits.Close()

	hdu := fits.HDU(0)
	if hdu == nil {
		return nil, &ReadError{Path: path, Kind: "fits", Err: fmt.Errorf("no primary HDU")}
	}

	hdr := hdu.Header()
	out := make(map[string]string)
	for _, key := range hdr.Keys() {
		card := hdr.Get(key)
		if card == nil {
			continue
		}
		switch key {
		case "COMMENT", "HISTORY", "END":
			continue
		}
		out[key] = fmt.Sprintf("%v", card.Value)
	}
	return out, nil
}
