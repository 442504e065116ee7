package fileheader

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// xisfSignature opens every monolithic XISF file, followed by a 4-byte
// little-endian XML header length and 4 reserved bytes.
var xisfSignature = []byte("XISF0100")

// XISF reads FITSKeyword headers from the XML header block of a
// monolithic XISF file.
type XISF struct{}

// Read opens path, validates the XISF signature, and collects every
// FITSKeyword element from the XML header.
func (XISF) Read(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Kind: "xisf", Err: err}
	}
	defer f.Close()

	out, err := parseXISF(f)
	if err != nil {
		return nil, &ReadError{Path: path, Kind: "xisf", Err: err}
	}
	return out, nil
}

func parseXISF(r io.Reader) (map[string]string, error) {
	var head [16]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("read signature: %w", err)
	}
	if !bytes.Equal(head[:8], xisfSignature) {
		return nil, fmt.Errorf("bad signature %q", head[:8])
	}
	headerLen := binary.LittleEndian.Uint32(head[8:12])
	if headerLen == 0 {
		return nil, fmt.Errorf("empty XML header")
	}

	dec := xml.NewDecoder(io.LimitReader(r, int64(headerLen)))
	out := make(map[string]string)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse XML header: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "FITSKeyword" {
			continue
		}
		var name, value string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "name":
				name = attr.Value
			case "value":
				value = attr.Value
			}
		}
		if name == "" {
			continue
		}
		out[name] = trimFITSString(value)
	}
	return out, nil
}

// trimFITSString strips the quoting XISF carries over from FITS string
// cards ("'Ha      '" → "Ha").
func trimFITSString(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
