package main

import (
	"fmt"
	"io"
	"strings"
)

// barWidth is the number of cells in the rendered progress bar.
const barWidth = 30

// progressBar renders a carriage-return progress bar on one terminal line.
// Its update method satisfies the engine's Progress callback.
type progressBar struct {
	w io.Writer
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{w: w}
}

func (p *progressBar) update(done, total int64) {
	if total <= 0 {
		fmt.Fprintf(p.w, "\rProgress: %d bytes", done)
		return
	}
	filled := int(done * barWidth / total)
	if filled > barWidth {
		filled = barWidth
	}
	ratio := float64(done) / float64(total)
	fmt.Fprintf(p.w, "\rProgress: [%s%s] %.2f%% %d/%d",
		strings.Repeat("█", filled), strings.Repeat(" ", barWidth-filled),
		ratio*100, done, total)
	if done >= total {
		fmt.Fprintln(p.w)
	}
}

// finish redraws the bar as 100% of the actual byte count; uploads only
// learn the real total when the device sends its short packet.
func (p *progressBar) finish(total int64) {
	if total > 0 {
		p.update(total, total)
	} else {
		fmt.Fprintln(p.w)
	}
}
