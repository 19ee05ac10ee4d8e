package cli

import (
	"fmt"
	"strings"

	"github.com/gantry-dev/gantry/internal/app/gantt"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Plain-text task progress for table output.
// Shows: [=======>............]  42%

const barWidth = 20 // Characters inside the brackets

// progressBar renders pct (clamped to 0..100) as a fixed-width bar.
func progressBar(pct int) string {
	pct = min(max(pct, 0), gantt.MaxProgress)

	filled := pct * barWidth / gantt.MaxProgress
	empty := barWidth - filled

	var bar string
	switch {
	case filled == barWidth:
		bar = strings.Repeat("=", filled)
	case filled > 0:
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	default:
		bar = strings.Repeat(".", barWidth)
	}

	return fmt.Sprintf("[%s] %3d%%", bar, pct)
}
