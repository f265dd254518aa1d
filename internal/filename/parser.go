// Package filename turns noisy audio file names into best-guess
// (title, artist) search hints with a heuristic confidence score.
package filename

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Guess is a best-effort interpretation of an audio file's name.
// Confidence is a heuristic prior in [0,1], not a probability; callers
// use it for logging and optional gating, never as ground truth.
type Guess struct {
	Title      string
	Artist     string
	Confidence float64
}

// Bracketed annotations in any of the paired bracket classes commonly
// found in downloaded music file names, including full-width variants.
var bracketPattern = regexp.MustCompile(`[\[({【（『「][^\])}】）』」]*[\])}】）』」]`)

// Promotional and technical markers that carry no title/artist signal.
var markerPattern = regexp.MustCompile(`(?i)(官方|无损|320K|MV|FLAC|APE|WAV|mp3|伴奏|现场|原版|试听版|Live|Remix|Demo|Acoustic|Edit|Mix|Session|KTV|伴唱|纯音乐|Instrumental|版|正版|HQ|HD|Hi-Res|HiRes|DSD|Single|EP|专辑|CD\d+|DISC\d+|数字专辑|数字音频|母带)`)

var (
	featPattern      = regexp.MustCompile(`(?i)^(.+?)\s*(?:feat\.|ft\.|Feat|Ft)\s*(.+)$`)
	bookTitlePattern = regexp.MustCompile(`^(.+)《(.+)》`)
	parenPattern     = regexp.MustCompile(`^(.+)[（(](.+)[)）]`)
)

// Separator candidates for "artist - title" style names, tried in
// priority order. The first one present in the string wins.
var delimiters = []string{
	" - ", "-", "_", "–", "—", "|", ":", "：", ".", "·", "/", "\\",
	" feat. ", " ft. ", " Feat ", " Ft ", "&",
}

// Clean strips bracketed annotations and marker words from a filename
// stem. It always returns a string, possibly empty.
func Clean(stem string) string {
	stem = bracketPattern.ReplaceAllString(stem, "")
	stem = markerPattern.ReplaceAllString(stem, "")
	return strings.TrimSpace(stem)
}

// A rule attempts to interpret a cleaned stem. Rules are pure; the
// first one that matches decides the guess.
type rule func(stem string) (Guess, bool)

var rules = []rule{matchFeat, matchDelimiter, matchBookTitle, matchParenthetical}

// Extract parses an audio file path's base name into a Guess.
// It is deterministic and never fails; when no structure is recognized
// the whole cleaned stem becomes the title at low confidence.
func Extract(path string) Guess {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := Clean(stem)

	for _, r := range rules {
		if g, ok := r(cleaned); ok {
			return g
		}
	}
	return Guess{Title: cleaned, Confidence: 0.4}
}

// matchFeat handles "<artist> feat. <rest>" names. The remainder after
// the feat marker is taken verbatim as the title, even when it still
// contains a separator; this mirrors the first-match-wins rule order.
func matchFeat(stem string) (Guess, bool) {
	m := featPattern.FindStringSubmatch(stem)
	if m == nil {
		return Guess{}, false
	}
	return Guess{
		Title:      strings.TrimSpace(m[2]),
		Artist:     strings.TrimSpace(m[1]),
		Confidence: 0.95,
	}, true
}

// matchDelimiter splits on the first separator present in the stem.
// A short first segment (≤ 8 runes) is more likely an artist name or
// alias, so it is read as the artist; otherwise title comes first.
func matchDelimiter(stem string) (Guess, bool) {
	for _, delim := range delimiters {
		if !strings.Contains(stem, delim) {
			continue
		}
		var parts []string
		for _, p := range strings.Split(stem, delim) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		switch {
		case len(parts) == 2:
			if utf8.RuneCountInString(parts[0]) <= 8 && utf8.RuneCountInString(parts[1]) > 1 {
				return Guess{Title: parts[1], Artist: parts[0], Confidence: 0.85}, true
			}
			return Guess{Title: parts[0], Artist: parts[1], Confidence: 0.8}, true
		case len(parts) > 2:
			return Guess{
				Title:      parts[len(parts)-1],
				Artist:     strings.Join(parts[:len(parts)-1], " & "),
				Confidence: 0.6,
			}, true
		}
		// Separator present but the split collapsed to one part
		// (e.g. a trailing dash); try the next separator.
	}
	return Guess{}, false
}

// matchBookTitle handles the Chinese title-mark form "<artist>《<title>》".
func matchBookTitle(stem string) (Guess, bool) {
	m := bookTitlePattern.FindStringSubmatch(stem)
	if m == nil {
		return Guess{}, false
	}
	return Guess{
		Title:      strings.TrimSpace(m[2]),
		Artist:     strings.TrimSpace(m[1]),
		Confidence: 0.9,
	}, true
}

// matchParenthetical handles "<title>（<artist>）" in half- or full-width
// parentheses. Clean strips well-paired parentheses first, so this rule
// only fires on stems with nested or unpaired brackets.
func matchParenthetical(stem string) (Guess, bool) {
	m := parenPattern.FindStringSubmatch(stem)
	if m == nil {
		return Guess{}, false
	}
	return Guess{
		Title:      strings.TrimSpace(m[1]),
		Artist:     strings.TrimSpace(m[2]),
		Confidence: 0.85,
	}, true
}
