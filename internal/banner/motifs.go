package banner

import (
	"fmt"
	"strings"
)

// Motifs are laid out with fixed arithmetic so the same theme always yields
// the same bytes.

func rainMotif(b *strings.Builder) {
	b.WriteString(`<g class="rain" stroke="#cfe8ff" stroke-opacity=".55" stroke-width="2" stroke-linecap="round">` + "\n")
	for i := 0; i < 48; i++ {
		x := 20 + i*25 + (i%3)*6
		y := 10 + (i*53)%190
		fmt.Fprintf(b, `<line x1="%d" y1="%d" x2="%d" y2="%d"/>`+"\n", x, y, x-10, y+26)
	}
	b.WriteString("</g>\n")
}

func windMotif(b *strings.Builder) {
	b.WriteString(`<g class="wind" fill="none" stroke="#ffffff" stroke-opacity=".45" stroke-width="3" stroke-linecap="round">` + "\n")
	for i := 0; i < 6; i++ {
		y := 30 + i*34
		x := 360 + (i%2)*80
		fmt.Fprintf(b, `<path d="M%d %d C %d %d, %d %d, %d %d S %d %d, %d %d"/>`+"\n",
			x, y, x+120, y-22, x+240, y+22, x+360, y, x+600, y-22, x+780, y)
	}
	b.WriteString("</g>\n")
}

func fogMotif(b *strings.Builder) {
	b.WriteString(`<g class="fog" fill="#ffffff">` + "\n")
	for i := 0; i < 7; i++ {
		y := 18 + i*31
		x := -40 + (i%3)*60
		opacity := 0.18 + float64(i%3)*0.08
		fmt.Fprintf(b, `<rect x="%d" y="%d" width="%d" height="14" rx="7" fill-opacity="%.2f"/>`+"\n",
			x, y, Width+80-(i%2)*160, opacity)
	}
	b.WriteString("</g>\n")
}

func snowMotif(b *strings.Builder) {
	b.WriteString(`<g class="snow" fill="#ffffff" fill-opacity=".85">` + "\n")
	for i := 0; i < 70; i++ {
		x := 12 + (i*97)%(Width-24)
		y := 10 + (i*41)%(Height-20)
		r := 2 + i%3
		fmt.Fprintf(b, `<circle cx="%d" cy="%d" r="%d"/>`+"\n", x, y, r)
	}
	b.WriteString("</g>\n")
}

func thunderMotif(b *strings.Builder) {
	cloudMotif(b)
	b.WriteString(`<polygon class="bolt" points="1010,40 960,130 1000,130 970,210 1060,105 1018,105 1050,40" fill="#ffe066" stroke="#fff3b0" stroke-width="3"/>` + "\n")
	// Invisible until the flash animation runs.
	fmt.Fprintf(b, `<rect class="flash" width="%d" height="%d" rx="16" fill="#ffffff" opacity="0"/>`+"\n", Width, Height)
}

func cloudMotif(b *strings.Builder) {
	b.WriteString(`<g class="cloud" fill="#ffffff">` + "\n")
	clouds := []struct{ cx, cy, rx, ry int }{
		{860, 70, 120, 38},
		{960, 100, 150, 46},
		{1080, 80, 110, 36},
		{780, 170, 90, 28},
		{1010, 185, 130, 34},
	}
	for i, c := range clouds {
		opacity := 0.55 + float64(i%2)*0.2
		fmt.Fprintf(b, `<ellipse cx="%d" cy="%d" rx="%d" ry="%d" fill-opacity="%.2f"/>`+"\n", c.cx, c.cy, c.rx, c.ry, opacity)
	}
	b.WriteString("</g>\n")
}

func sunMotif(b *strings.Builder) {
	b.WriteString(`<g class="sun">` + "\n")
	b.WriteString(`<g class="rays" stroke="#fff6c8" stroke-width="6" stroke-linecap="round" stroke-opacity=".8">` + "\n")
	// 12 rays around (1020,120); unit vectors precomputed at 30° steps.
	dirs := [][2]float64{
		{1, 0}, {0.866, 0.5}, {0.5, 0.866}, {0, 1}, {-0.5, 0.866}, {-0.866, 0.5},
		{-1, 0}, {-0.866, -0.5}, {-0.5, -0.866}, {0, -1}, {0.5, -0.866}, {0.866, -0.5},
	}
	for _, d := range dirs {
		fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n",
			1020+d[0]*78, 120+d[1]*78, 1020+d[0]*104, 120+d[1]*104)
	}
	b.WriteString("</g>\n")
	b.WriteString(`<circle class="disc" cx="1020" cy="120" r="62" fill="#fffbe0"/>` + "\n")
	b.WriteString("</g>\n")
}
