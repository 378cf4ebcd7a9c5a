// Package banner renders the themed SVG banner shown above the weather log.
//
// The output is a pure function of (theme, title, subtitle). Layout, colours
// and motifs are all static; animation is layered on with CSS inside a
// prefers-reduced-motion media query, so renderers that ignore CSS animation
// (or strip <style>) still show the finished picture.
package banner

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/i474232898/weather-log/internal/weather"
)

const (
	Width  = 1200
	Height = 240
)

// look is the per-theme rendering rule.
type look struct {
	from, to  string // gradient stops, top-left to bottom-right
	motif     func(b *strings.Builder)
	animation string // CSS rules applied only when motion is allowed
}

// lookFor is exhaustive over weather.Theme; unknown values render as clear.
func lookFor(t weather.Theme) look {
	switch t {
	case weather.ThemeThunder:
		return look{from: "#1f1c2c", to: "#4b4a6b", motif: thunderMotif,
			animation: `.flash{animation:flash 6s steps(1) infinite}
@keyframes flash{0%,92%,96%{opacity:0}94%,98%{opacity:.55}}`}
	case weather.ThemeSnow:
		return look{from: "#83a4d4", to: "#e6f0fa", motif: snowMotif,
			animation: `.snow circle{animation:drift 9s ease-in-out infinite alternate}
@keyframes drift{from{transform:translate(0,0)}to{transform:translate(12px,18px)}}`}
	case weather.ThemeRain:
		return look{from: "#3a6073", to: "#16222a", motif: rainMotif,
			animation: `.rain line{animation:fall 1.1s linear infinite}
@keyframes fall{from{transform:translate(0,-24px)}to{transform:translate(-12px,24px)}}`}
	case weather.ThemeFog:
		return look{from: "#bdc3c7", to: "#6f7b84", motif: fogMotif,
			animation: `.fog rect{animation:slide 14s ease-in-out infinite alternate}
@keyframes slide{from{transform:translateX(-40px)}to{transform:translateX(40px)}}`}
	case weather.ThemeWind:
		return look{from: "#43cea2", to: "#185a9d", motif: windMotif,
			animation: `.wind path{stroke-dasharray:60 30;animation:gust 3s linear infinite}
@keyframes gust{to{stroke-dashoffset:-180}}`}
	case weather.ThemeCloud:
		return look{from: "#757f9a", to: "#d7dde8", motif: cloudMotif,
			animation: `.cloud ellipse{animation:float 12s ease-in-out infinite alternate}
@keyframes float{from{transform:translateX(0)}to{transform:translateX(30px)}}`}
	case weather.ThemeClear:
		fallthrough
	default:
		return look{from: "#f7971e", to: "#ffd200", motif: sunMotif,
			animation: `.sun .rays{transform-origin:1020px 120px;animation:spin 40s linear infinite}
@keyframes spin{to{transform:rotate(360deg)}}`}
	}
}

// Render produces a complete SVG document for the given theme and captions.
func Render(theme weather.Theme, title, subtitle string) []byte {
	l := lookFor(theme)
	t := escape(title)
	s := escape(subtitle)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img" aria-label="%s">`+"\n",
		Width, Height, Width, Height, t)
	fmt.Fprintf(&b, "<title>%s</title>\n", t)
	b.WriteString("<defs>\n")
	b.WriteString(`<linearGradient id="bg" x1="0" y1="0" x2="1" y2="1">` + "\n")
	fmt.Fprintf(&b, `<stop offset="0%%" stop-color="%s"/>`+"\n", l.from)
	fmt.Fprintf(&b, `<stop offset="100%%" stop-color="%s"/>`+"\n", l.to)
	b.WriteString("</linearGradient>\n</defs>\n")

	b.WriteString("<style>\n")
	b.WriteString(`.title{font:700 44px -apple-system,'Segoe UI',Helvetica,Arial,sans-serif;fill:#ffffff}` + "\n")
	b.WriteString(`.subtitle{font:400 22px -apple-system,'Segoe UI',Helvetica,Arial,sans-serif;fill:#ffffff;fill-opacity:.88}` + "\n")
	b.WriteString("@media (prefers-reduced-motion:no-preference){\n")
	b.WriteString(l.animation)
	b.WriteString("\n}\n</style>\n")

	fmt.Fprintf(&b, `<rect width="%d" height="%d" rx="16" fill="url(#bg)"/>`+"\n", Width, Height)
	l.motif(&b)
	// Shade behind the captions keeps them readable on light themes.
	b.WriteString(`<rect x="24" y="64" width="720" height="128" rx="12" fill="#000000" fill-opacity=".18"/>` + "\n")
	fmt.Fprintf(&b, `<text class="title" x="48" y="122">%s</text>`+"\n", t)
	fmt.Fprintf(&b, `<text class="subtitle" x="48" y="166">%s</text>`+"\n", s)
	b.WriteString("</svg>\n")

	return []byte(b.String())
}

// escape makes s safe for both text nodes and attribute values. Characters
// XML cannot carry, including invalid UTF-8, become U+FFFD.
func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s)) // strings.Builder never fails
	return b.String()
}
