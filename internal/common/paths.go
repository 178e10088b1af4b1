package common

import (
	"fmt"
	"path/filepath"
	"strings"
)

var kindExts = map[Kind]string{
	KindCuckoo:         ".cf",
	KindScalableCuckoo: ".scf",
	KindQuotient:       ".qf",
	KindBloom:          ".bf",
}

// SnapshotPath returns the file path for a snapshot of the given kind.
func SnapshotPath(name string, kind Kind) string {
	return name + kindExts[kind]
}

// KindFromPath infers the filter kind from a snapshot file extension.
func KindFromPath(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for k, e := range kindExts {
		if e == ext {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown snapshot extension %q (expected .cf, .scf, .qf or .bf)", ext)
}
