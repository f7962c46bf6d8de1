package render

import "github.com/cxwx/fittencode.nvim/internal/editor"

// recenterDeadband is how far past window center the cursor must sit
// before an overflowing ghost block triggers a recenter. Small scroll
// adjustments near the center are more distracting than a clipped block.
const recenterDeadband = 2

// NeedsRecenter reports whether a ghost block of the given height, drawn
// at row, would run past the usable window bottom while the cursor sits
// well below center. Callers recenter the window when it returns true.
//
// The usable bottom excludes the host's scrolloff margin, since the host
// would immediately scroll the window itself once the cursor enters it.
func NeedsRecenter(vp editor.Viewport, row, height int) bool {
	if vp.Height <= 0 {
		return false
	}

	rel := row - vp.TopLine
	if rel < 0 {
		return false
	}

	if rel+height <= vp.Height-vp.ScrollOff {
		return false
	}

	center := vp.Height / 2
	return rel-center > recenterDeadband
}
