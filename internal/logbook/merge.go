package logbook

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const (
	// KeepDays is the retention window in calendar days, today included.
	KeepDays = 10

	DefaultCity       = "Dublin"
	DefaultBannerPath = "assets/dublin-weather.svg"
	DefaultBannerAlt  = "Dublin weather banner"
)

// Header renders the heading line of the block.
func Header(city string, keepDays int) string {
	return fmt.Sprintf("### %s weather (last %d days)", city, keepDays)
}

// BannerLine renders the full-width image reference placed at the top of the block.
func BannerLine(path, alt string) string {
	return fmt.Sprintf(`<img src="%s" width="100%%" alt="%s" />`, html.EscapeString(path), html.EscapeString(alt))
}

// Layout fixes the canonical lines and the retention window of a block.
type Layout struct {
	BannerLine string
	HeaderLine string
	KeepDays   int
}

// DefaultLayout is the Dublin layout with a 10-day window.
func DefaultLayout() Layout {
	return Layout{
		BannerLine: BannerLine(DefaultBannerPath, DefaultBannerAlt),
		HeaderLine: Header(DefaultCity, KeepDays),
		KeepDays:   KeepDays,
	}
}

// Merge rebuilds a block with the default header and window.
func Merge(existing, bannerLine, newEntry string, today time.Time) (string, error) {
	l := DefaultLayout()
	l.BannerLine = bannerLine
	return l.Merge(existing, newEntry, today)
}

// Merge returns [banner, "", header, newEntry, ...older lines] where older
// lines are the non-blank lines of existing minus every header and banner
// line (current or left over from another layout), minus dated entries older
// than the window, minus exact copies of newEntry. The result ends with exactly one newline.
func (l Layout) Merge(existing, newEntry string, today time.Time) (string, error) {
	keep := l.KeepDays
	if keep < 1 {
		keep = 1
	}
	cutoff := dateOf(today).AddDate(0, 0, -(keep - 1))

	var older []string
	for _, line := range strings.Split(existing, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == l.BannerLine || line == l.HeaderLine {
			continue
		}

		parsed, err := ParseLine(line)
		if err != nil {
			return "", err
		}

		switch p := parsed.(type) {
		case DatedEntry:
			if p.Date().Before(cutoff) {
				continue
			}
		case Heading, BannerImage:
			continue
		case PlainLine:
			if p.Blank() {
				continue
			}
		}

		if parsed.Line() == newEntry {
			continue
		}
		older = append(older, parsed.Line())
	}

	out := make([]string, 0, len(older)+4)
	out = append(out, l.BannerLine, "", l.HeaderLine, newEntry)
	out = append(out, older...)

	return strings.Trim(strings.Join(out, "\n"), "\n") + "\n", nil
}
