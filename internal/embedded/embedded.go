// Package embedded imports every format handler so that their init()
// functions populate the format registry. Import it for side effects:
//
//	import _ "github.com/FocuswithJustin/usjconv/internal/embedded"
package embedded

import (
	"github.com/FocuswithJustin/usjconv/core/formats"

	_ "github.com/FocuswithJustin/usjconv/internal/formats/usfm"
	_ "github.com/FocuswithJustin/usjconv/internal/formats/usj"
	_ "github.com/FocuswithJustin/usjconv/internal/formats/usx"
)

// IsInitialized reports whether the handlers have registered.
func IsInitialized() bool {
	return FormatCount() > 0
}

// FormatCount returns the number of registered formats.
func FormatCount() int {
	return len(formats.List())
}
