/* matchdetail.go
 * Specialised parser for per-map/mode/score detail of Call of Duty matches, extracted from a
 * match or tournament bracket page. Three ordered strategies are tried: bracket popup game
 * blocks, a wikitable per-map summary, then inline prose. The first strategy yielding at
 * least one result wins; later strategies are not attempted after a success
 */

package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"koi-tracker/api/htmlparse"
	"koi-tracker/api/shared"
)

// Mode keywords with the plausible score range for each. A parsed pair outside its mode's
// range is template noise (round counters, seeds) and is rejected
var modeRanges = map[string]int{
	"Hardpoint":          250,
	"Search and Destroy": 6,
	"Control":            3,
	"Overload":           10,
}

var knownMaps = []string{
	"Hacienda", "Protocol", "Red Card", "Rewind", "Vault", "Skyline",
	"Karachi", "Rio", "Vista", "Sub Base", "Highrise", "Terminal", "Skidrow",
}

var (
	modeRe      = regexp.MustCompile(`(?i)\b(hardpoint|search and destroy|snd|control|overload)\b`)
	scorePairRe = regexp.MustCompile(`\b(\d{1,3})\s*[-–:]\s*(\d{1,3})\b`)
	proseMapRe  = regexp.MustCompile(`(?i)Map\s+(\d+):\s+([A-Za-z &]+?)\s+on\s+([A-Za-z0-9' ]+?)\s*\((\d{1,3})\s*[-–]\s*(\d{1,3})\)`)
)

// canonicalMode folds keyword variants onto the canonical mode label
func canonicalMode(raw string) string {
	switch strings.ToLower(raw) {
	case "hardpoint":
		return "Hardpoint"
	case "search and destroy", "snd":
		return "Search and Destroy"
	case "control":
		return "Control"
	case "overload":
		return "Overload"
	}
	return ""
}

// parseMapResults runs the strategy chain over a match fragment
func parseMapResults(html string) []MapResult {
	if maps := parsePopupBlocks(html); len(maps) > 0 {
		return maps
	}
	if maps := parseMapTable(html); len(maps) > 0 {
		return maps
	}
	return parseProseMaps(html)
}

// Strategy 1: bracket popup game blocks. Each block is one map; the map name comes from link
// text, falling back to the known map list; the mode from a keyword scan; the score from the
// first pair plausible for the detected mode
func parsePopupBlocks(html string) []MapResult {
	var maps []MapResult
	for _, block := range htmlparse.ExtractBalancedBlocks(html, "brkts-popup-body-game") {
		mode := ""
		if m := modeRe.FindStringSubmatch(block); m != nil {
			mode = canonicalMode(m[1])
		}

		mapName := mapNameFromLinks(block)
		if mapName == "" {
			mapName = mapNameFromKnownList(block)
		}

		s1, s2, ok := plausibleScore(block, mode)
		if !ok {
			continue
		}
		maps = append(maps, newMapResult(len(maps)+1, mapName, mode, s1, s2))
	}
	return maps
}

// Strategy 2: wikitable style per-map summary, header must mention "Map"
func parseMapTable(html string) []MapResult {
	for _, table := range htmlparse.Tables(html) {
		trs := htmlparse.Rows(table)
		if len(trs) < 2 {
			continue
		}
		headerText := strings.ToLower(htmlparse.StripTags(trs[0]))
		if !strings.Contains(headerText, "map") {
			continue
		}

		var maps []MapResult
		for _, tr := range trs[1:] {
			cells := htmlparse.Cells(tr)
			if len(cells) < 2 {
				continue
			}
			mapName := htmlparse.StripTags(cells[0])
			rest := strings.Join(cells[1:], " ")

			mode := ""
			if m := modeRe.FindStringSubmatch(rest); m != nil {
				mode = canonicalMode(m[1])
			}
			s1, s2, ok := plausibleScore(rest, mode)
			if !ok {
				continue
			}
			maps = append(maps, newMapResult(len(maps)+1, mapName, mode, s1, s2))
		}
		if len(maps) > 0 {
			return maps
		}
	}
	return nil
}

// Strategy 3: inline prose of the form "Map 2: Hardpoint on Hacienda (250-197)"
func parseProseMaps(html string) []MapResult {
	var maps []MapResult
	text := htmlparse.StripTags(html)
	for _, m := range proseMapRe.FindAllStringSubmatch(text, -1) {
		number, _ := strconv.Atoi(m[1])
		s1, _ := strconv.Atoi(m[4])
		s2, _ := strconv.Atoi(m[5])
		mr := newMapResult(number, strings.TrimSpace(m[3]), canonicalMode(strings.TrimSpace(m[2])), s1, s2)
		maps = append(maps, mr)
	}
	return maps
}

func newMapResult(number int, mapName, mode string, s1, s2 int) MapResult {
	mr := MapResult{Number: number, Map: mapName, Mode: mode, Team1Score: s1, Team2Score: s2}
	switch {
	case s1 > s2:
		mr.WinnerTag = 1
	case s2 > s1:
		mr.WinnerTag = 2
	}
	return mr
}

// mapNameFromLinks returns the first link text that is not a mode keyword
func mapNameFromLinks(block string) string {
	for _, m := range linkRe.FindAllStringSubmatch(block, -1) {
		text := htmlparse.StripTags(m[2])
		if text == "" || canonicalMode(text) != "" {
			continue
		}
		return text
	}
	return ""
}

func mapNameFromKnownList(block string) string {
	text := htmlparse.StripTags(block)
	for _, name := range knownMaps {
		if strings.Contains(text, name) {
			return name
		}
	}
	return ""
}

// plausibleScore finds the first score pair inside the range plausible for mode. With no
// detected mode the widest range is allowed
func plausibleScore(fragment, mode string) (int, int, bool) {
	limit := 250
	if mode != "" {
		limit = modeRanges[mode]
	}
	text := htmlparse.StripTags(fragment)
	for _, m := range scorePairRe.FindAllStringSubmatch(text, -1) {
		s1, _ := strconv.Atoi(m[1])
		s2, _ := strconv.Atoi(m[2])
		if s1 > limit || s2 > limit {
			continue
		}
		return s1, s2, true
	}
	return 0, 0, false
}

// crossReference picks the page match involving both teams. Both names are checked with
// bidirectional substring matching in the page's order and swapped; a swapped hit flags the
// result as flipped relative to the caller's orientation. The first best scoring candidate
// in document order wins; a tie is ambiguous and logged
func crossReference(bundle []PageMatch, homeName, awayName string, logger zerolog.Logger) (*PageMatch, bool, bool) {
	best := -1
	bestScore := 0
	bestFlipped := false
	ties := 0

	for i, pm := range bundle {
		direct := 0
		if shared.NamesOverlap(pm.Team1, homeName) {
			direct++
		}
		if shared.NamesOverlap(pm.Team2, awayName) {
			direct++
		}
		swapped := 0
		if shared.NamesOverlap(pm.Team1, awayName) {
			swapped++
		}
		if shared.NamesOverlap(pm.Team2, homeName) {
			swapped++
		}

		score, flipped := direct, false
		if swapped > direct {
			score, flipped = swapped, true
		}
		if score < 2 {
			continue
		}
		if score > bestScore {
			best, bestScore, bestFlipped = i, score, flipped
			ties = 0
		} else if score == bestScore {
			ties++
		}
	}

	if best < 0 {
		return nil, false, false
	}
	if ties > 0 {
		logger.Warn().Str("home", homeName).Str("away", awayName).Int("candidates", ties+1).
			Msg("ambiguous match cross-reference, using first candidate")
	}
	return &bundle[best], bestFlipped, true
}

// flipMapResults flips per-map scores and winner tags when the enrichment source's team order
// is reversed relative to the caller's home/away framing
func flipMapResults(maps []MapResult) []MapResult {
	flipped := make([]MapResult, len(maps))
	for i, m := range maps {
		m.Team1Score, m.Team2Score = m.Team2Score, m.Team1Score
		switch m.WinnerTag {
		case 1:
			m.WinnerTag = 2
		case 2:
			m.WinnerTag = 1
		}
		flipped[i] = m
	}
	return flipped
}

// pageMatches extracts the match blocks of a tournament page with their team names, building
// the bundle crossReference works against
func pageMatches(html string) []PageMatch {
	var bundle []PageMatch
	for _, block := range htmlparse.ExtractBalancedBlocks(html, "brkts-popup") {
		teams := teamNamesIn(block)
		if len(teams) < 2 {
			continue
		}
		bundle = append(bundle, PageMatch{Team1: teams[0], Team2: teams[1], HTML: block})
	}
	return bundle
}

var teamNameRe = regexp.MustCompile(`(?is)class="[^"]*(?:team-template-text|brkts-popup-header-opponent)[^"]*"[^>]*>(.*?)</`)

func teamNamesIn(block string) []string {
	var names []string
	for _, m := range teamNameRe.FindAllStringSubmatch(block, -1) {
		name := htmlparse.StripTags(m[1])
		if name != "" {
			names = append(names, name)
		}
		if len(names) == 2 {
			break
		}
	}
	return names
}
