package fuzzy

import (
	"math"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xrash/smetrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Scorer scores how similar a choice is to a query on a 0-100 scale
type Scorer func(query, choice string) int

// Normalize folds s for comparison: accents are stripped, letters lowercased,
// every other non alphanumeric rune becomes a space and runs of spaces collapse.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	folded = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, folded)

	return strings.Join(strings.Fields(folded), " ")
}

// Ratio is the Levenshtein similarity of a and b where a substitution costs two edits.
// Distances are counted in code points, not bytes.
func Ratio(a, b string) int {
	return ratio([]rune(a), []rune(b))
}

func ratio(a, b []rune) int {
	total := len(a) + len(b)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	ea, eb := encode(a, b)
	dist := smetrics.WagnerFischer(ea, eb, 1, 1, 2)
	return round(100 * float64(total-dist) / float64(total))
}

// encode maps the runes of a and b onto a shared alphabet of single bytes so a
// byte wise edit distance equals the code point distance. Inputs using more than
// 256 distinct runes fall back to their UTF-8 bytes.
func encode(a, b []rune) (string, string) {
	alphabet := make(map[rune]byte)
	for _, r := range append(slices.Clone(a), b...) {
		if _, ok := alphabet[r]; ok {
			continue
		}
		if len(alphabet) == 256 {
			return string(a), string(b)
		}
		alphabet[r] = byte(len(alphabet))
	}

	out := func(rs []rune) string {
		buf := make([]byte, len(rs))
		for i, r := range rs {
			buf[i] = alphabet[r]
		}
		return string(buf)
	}

	return out(a), out(b)
}

// PartialRatio is the best Ratio of the shorter string against every equally long window of the longer one
func PartialRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratio(short, long[i:i+len(short)])
		if r == 100 {
			return 100
		}
		best = max(best, r)
	}

	return best
}

// TokenSortRatio compares a and b after sorting their words
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// TokenSetRatio compares the shared words of a and b against each side's full word set
func TokenSetRatio(a, b string) int {
	return tokenSet(a, b, Ratio)
}

func partialTokenSortRatio(a, b string) int {
	return PartialRatio(sortedTokens(a), sortedTokens(b))
}

func partialTokenSetRatio(a, b string) int {
	return tokenSet(a, b, PartialRatio)
}

// WRatio normalizes both strings and returns the best of several weighted
// ratios. Partial ratios only count when one string is at least half again
// as long as the other, and are scaled down so they never beat an exact match.
func WRatio(query, choice string) int {
	a, b := Normalize(query), Normalize(choice)
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}

	base := float64(Ratio(a, b))
	lenRatio := float64(max(la, lb)) / float64(min(la, lb))

	const unbaseScale = 0.95
	if lenRatio < 1.5 {
		tsor := float64(TokenSortRatio(a, b)) * unbaseScale
		tser := float64(TokenSetRatio(a, b)) * unbaseScale
		return round(math.Max(base, math.Max(tsor, tser)))
	}

	partialScale := 0.9
	if lenRatio > 8 {
		partialScale = 0.6
	}

	partial := float64(PartialRatio(a, b)) * partialScale
	ptsor := float64(partialTokenSortRatio(a, b)) * unbaseScale * partialScale
	ptser := float64(partialTokenSetRatio(a, b)) * unbaseScale * partialScale

	return round(math.Max(math.Max(base, partial), math.Max(ptsor, ptser)))
}

func tokenSet(a, b string, ratio func(string, string) int) int {
	ta, tb := tokenSetOf(a), tokenSetOf(b)

	var sect, onlyA, onlyB []string
	for t := range ta {
		if _, ok := tb[t]; ok {
			sect = append(sect, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range tb {
		if _, ok := ta[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(sect)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	s := strings.Join(sect, " ")
	combinedA := strings.TrimSpace(s + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(s + " " + strings.Join(onlyB, " "))

	return max(ratio(s, combinedA), ratio(s, combinedB), ratio(combinedA, combinedB))
}

func tokenSetOf(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func round(f float64) int {
	return int(math.Round(f))
}
