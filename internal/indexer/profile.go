package indexer

import (
	"path/filepath"
	"strings"

	"github.com/starford/astrometa/internal/header"
)

// deriveFromPath extracts fields from the directory segments of path.
// The parent of a DirectoryAccept segment names the target (with panel
// splitting applied), and any segment spelling a frame type sets the type.
// Later (deeper) segments win over earlier ones.
func deriveFromPath(path string, opts Options) header.Record {
	fields := make(header.Record)
	dir := filepath.Dir(path)
	segs := strings.Split(filepath.ToSlash(dir), "/")

	for i, seg := range segs {
		if seg == "" {
			continue
		}
		if strings.EqualFold(seg, opts.DirectoryAccept) && i > 0 && segs[i-1] != "" {
			target, panel := header.NormalizeTargetName(segs[i-1], opts.Header.PanelPattern)
			fields.Set(header.KeyTargetName, header.Text(target))
			if panel != "" {
				fields.Set(header.KeyPanel, header.Text(panel))
			}
			continue
		}
		if t, ok := frameType(seg); ok {
			fields.Set(header.KeyType, header.Text(t))
		}
	}
	return fields
}

// frameType reports whether a directory segment spells a frame type,
// through the same constant table headers go through.
func frameType(seg string) (string, bool) {
	canonical := header.NormalizeConstant(header.KeyType, seg)
	upper := strings.ToUpper(strings.TrimSpace(canonical))
	for _, t := range []string{
		header.TypeLight, header.TypeDark, header.TypeFlat, header.TypeBias,
		header.TypeMasterLight, header.TypeMasterDark, header.TypeMasterFlat, header.TypeMasterBias,
	} {
		if upper == t {
			return t, true
		}
	}
	return "", false
}
