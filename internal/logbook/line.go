// Package logbook maintains the rolling weather log embedded in the README.
//
// A log block looks like:
//
//	<img src="assets/dublin-weather.svg" width="100%" alt="Dublin weather banner" />
//
//	### Dublin weather (last 10 days)
//	- 2026-02-24 09:00 UTC — Dublin: Clear, 8°C
//	- 2026-02-23 09:00 UTC — Dublin: Light rain, 7°C
//
// Lines are parsed into ParsedLine values before merging; anything that is
// not a dated entry is kept verbatim.
package logbook

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/i474232898/weather-log/internal/weather"
)

// EntryLayout is the timestamp layout inside an entry line.
const EntryLayout = "2006-01-02 15:04"

// entrySep is the em dash separator between timestamp and text.
const entrySep = " UTC — "

// ErrMalformedEntry is returned for a line shaped like an entry whose
// date or time does not exist (e.g. 2026-13-40).
var ErrMalformedEntry = errors.New("malformed log entry")

// entryRe only checks digit grouping; calendar validity is checked by time.Parse.
var entryRe = regexp.MustCompile(`^- (\d{4}-\d{2}-\d{2} \d{2}:\d{2}) UTC — (.*)$`)

// headingRe and bannerRe match the header and banner lines of any layout, so a
// change of city, window or banner path does not leave stale copies behind.
var (
	headingRe = regexp.MustCompile(`^### .+ weather \(last \d+ days\)$`)
	bannerRe  = regexp.MustCompile(`^<img src="[^"]*" width="100%" alt="[^"]* weather banner" />$`)
)

// ParsedLine is a DatedEntry, a Heading, a BannerImage or a PlainLine.
type ParsedLine interface {
	// Line returns the text as it appeared in the block.
	Line() string
	parsedLine()
}

// DatedEntry is a "- YYYY-MM-DD HH:MM UTC — text" line.
type DatedEntry struct {
	When time.Time `json:"when"`
	Text string    `json:"text"`
	raw  string
}

func (e DatedEntry) Line() string { return e.raw }
func (DatedEntry) parsedLine()    {}

// Date returns the calendar day of the entry in UTC.
func (e DatedEntry) Date() time.Time {
	return dateOf(e.When)
}

// Heading is a block header line, e.g. "### Dublin weather (last 10 days)".
type Heading struct {
	Text string
}

func (h Heading) Line() string { return h.Text }
func (Heading) parsedLine()    {}

// BannerImage is a banner <img> line.
type BannerImage struct {
	Text string
}

func (b BannerImage) Line() string { return b.Text }
func (BannerImage) parsedLine()    {}

// PlainLine is any other line, kept as-is.
type PlainLine struct {
	Text string
}

func (p PlainLine) Line() string { return p.Text }
func (PlainLine) parsedLine()    {}

// Blank reports whether the line holds only whitespace.
func (p PlainLine) Blank() bool {
	return strings.TrimSpace(p.Text) == ""
}

// ParseLine classifies one line. It fails only when the line has the entry
// shape but an impossible timestamp.
func ParseLine(line string) (ParsedLine, error) {
	line = strings.TrimSuffix(line, "\r")

	m := entryRe.FindStringSubmatch(line)
	if m == nil {
		switch {
		case headingRe.MatchString(line):
			return Heading{Text: line}, nil
		case bannerRe.MatchString(line):
			return BannerImage{Text: line}, nil
		}
		return PlainLine{Text: line}, nil
	}

	when, err := time.ParseInLocation(EntryLayout, m[1], time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedEntry, line, err)
	}
	return DatedEntry{When: when, Text: m[2], raw: line}, nil
}

// FormatEntry renders a reading as an entry line. Line breaks in the text are
// folded so the entry stays on one line.
func FormatEntry(r weather.Reading) string {
	text := strings.Join(strings.Fields(r.Text), " ")
	return "- " + r.Timestamp.UTC().Format(EntryLayout) + entrySep + text
}

// Entries returns the dated entries of a block in order of appearance.
func Entries(block string) ([]DatedEntry, error) {
	var out []DatedEntry
	for _, line := range strings.Split(block, "\n") {
		parsed, err := ParseLine(line)
		if err != nil {
			return nil, err
		}
		if e, ok := parsed.(DatedEntry); ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
