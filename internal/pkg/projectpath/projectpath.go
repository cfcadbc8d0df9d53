package projectpath

import (
	"path/filepath"
	"runtime"
)

var (
	_, b, _, _ = runtime.Caller(0)

	// Root is the root directory of this project, resolved from the location of this source file.
	Root = filepath.Join(filepath.Dir(b), "../../..")
)
