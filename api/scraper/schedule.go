/* schedule.go
 * Parses a season/circuit schedule page that lists events by region under heading anchors.
 * An event only counts as upcoming if its end date has not passed AND the surrounding context
 * carries a "TBD" marker: future events have no recorded winner yet, which is what separates
 * a row that is truly in the future from a stale row bearing a future looking template date
 */

package scraper

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"koi-tracker/api/htmlparse"
	"koi-tracker/api/shared"
)

var (
	headlineRe  = regexp.MustCompile(`(?i)<span[^>]*class="[^"]*mw-headline[^"]*"[^>]*id="([^"]+)"[^>]*>`)
	eventLinkRe = regexp.MustCompile(`(?is)<a[^>]*href="(/[^"]+)"[^>]*title="[^"]*"[^>]*>(.*?)</a>`)

	months = "Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec"

	// Three date range shapes, tried in order: same month ("Mar 06-15, 2026"), cross month
	// ("Jan 30 - Feb 01, 2026"), single day ("Mar 6, 2026")
	sameMonthRe  = regexp.MustCompile(`(` + months + `)[a-z]*\s+(\d{1,2})\s*[-–]\s*(\d{1,2}),\s*(\d{4})`)
	crossMonthRe = regexp.MustCompile(`(` + months + `)[a-z]*\s+(\d{1,2})\s*[-–]\s*(` + months + `)[a-z]*\s+(\d{1,2}),\s*(\d{4})`)
	singleDayRe  = regexp.MustCompile(`(` + months + `)[a-z]*\s+(\d{1,2}),\s*(\d{4})`)
)

// contextWindow bounds how far around an event link the date and TBD marker may sit
const contextWindow = 600

// ParseDateRange parses one of the three supported date range shapes. end is zero for single
// day events. ok is false when no shape matches
func ParseDateRange(text string) (start, end time.Time, ok bool) {
	if m := crossMonthRe.FindStringSubmatch(text); m != nil {
		start = mustDate(m[1], m[2], m[5])
		end = mustDate(m[3], m[4], m[5])
		return start, end, !start.IsZero() && !end.IsZero()
	}
	if m := sameMonthRe.FindStringSubmatch(text); m != nil {
		start = mustDate(m[1], m[2], m[4])
		end = mustDate(m[1], m[3], m[4])
		return start, end, !start.IsZero() && !end.IsZero()
	}
	if m := singleDayRe.FindStringSubmatch(text); m != nil {
		start = mustDate(m[1], m[2], m[3])
		return start, time.Time{}, !start.IsZero()
	}
	return time.Time{}, time.Time{}, false
}

func mustDate(month, day, year string) time.Time {
	d, _ := strconv.Atoi(day)
	y, _ := strconv.Atoi(year)
	t, err := time.Parse("Jan 2 2006", month+" "+strconv.Itoa(d)+" "+strconv.Itoa(y))
	if err != nil {
		return time.Time{}
	}
	return t
}

// section is a region slice of the document, bounded by heading anchors sorted by position
type section struct {
	heading string
	start   int
	end     int
}

func regionSections(html string) []section {
	matches := headlineRe.FindAllStringSubmatchIndex(html, -1)
	var sections []section
	for _, m := range matches {
		sections = append(sections, section{
			heading: html[m[2]:m[3]],
			start:   m[1],
		})
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].start < sections[j].start })
	for i := range sections {
		if i+1 < len(sections) {
			sections[i].end = sections[i+1].start
		} else {
			sections[i].end = len(html)
		}
	}
	return sections
}

// parseSeasonEvents scans every tournament page link in the allowed region sections, keeps
// names carrying at least one tournament keyword, and resolves the nearest date range after
// the link. Only events that qualify as upcoming (see file header) are returned
func parseSeasonEvents(html string, now time.Time, keywords, regions []string) []SeasonEvent {
	var events []SeasonEvent
	seen := make(map[string]bool)

	for _, sec := range regionSections(html) {
		region := strings.ReplaceAll(sec.heading, "_", " ")
		if !regionAllowed(region, regions) {
			continue
		}
		body := html[sec.start:sec.end]

		for _, m := range eventLinkRe.FindAllStringSubmatchIndex(body, -1) {
			href := body[m[2]:m[3]]
			name := htmlparse.StripTags(body[m[4]:m[5]])
			if name == "" || !hasKeyword(name, keywords) {
				continue
			}
			key := shared.NormalizeName(name)
			if seen[key] {
				continue
			}

			after := body[m[1]:min(m[1]+contextWindow, len(body))]
			context := body[max(m[0]-contextWindow/2, 0):min(m[1]+contextWindow, len(body))]

			start, end, ok := ParseDateRange(htmlparse.StripTags(after))
			if !ok {
				continue
			}
			if !isUpcoming(start, end, now, htmlparse.StripTags(context)) {
				continue
			}

			seen[key] = true
			events = append(events, SeasonEvent{
				Name:   name,
				Link:   href,
				Region: region,
				Start:  start,
				End:    end,
			})
		}
	}
	return events
}

// isUpcoming requires the event's end (or single day) to not be in the past and a TBD marker
// in the surrounding context
func isUpcoming(start, end time.Time, now time.Time, context string) bool {
	last := end
	if last.IsZero() {
		last = start
	}
	if last.AddDate(0, 0, 1).Before(now) {
		return false
	}
	return strings.Contains(context, "TBD")
}

func hasKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func regionAllowed(region string, regions []string) bool {
	for _, r := range regions {
		if shared.NamesOverlap(region, r) {
			return true
		}
	}
	return false
}

// seasonEventTournament shapes an upcoming event into the unified model
func seasonEventTournament(ev SeasonEvent, game shared.Game, teamID string, now time.Time) shared.Tournament {
	status := shared.StatusUpcoming
	last := ev.End
	if last.IsZero() {
		last = ev.Start
	}
	if !now.Before(ev.Start) && !now.After(last.AddDate(0, 0, 1)) {
		status = shared.StatusLive
	}
	return shared.Tournament{
		ID:        "wiki-" + slugify(ev.Name),
		TeamID:    teamID,
		Game:      game,
		Name:      ev.Name,
		Location:  ev.Region,
		StartDate: ev.Start,
		EndDate:   ev.End,
		Status:    status,
		Format:    shared.FormatOther,
	}
}
