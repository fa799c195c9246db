package domain

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"unicode"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0

	// minFuzzyLen keeps short words from fuzzy-matching everything
	minFuzzyLen = 4
)

// searchField is one weighted source of tokens of a record.
type searchField struct {
	weight float64
	tokens func(b *Bookmark) []string
}

var searchFields = []searchField{
	{1.0, func(b *Bookmark) []string { return tokenize(b.Title) }},
	{0.9, func(b *Bookmark) []string { return hostFragments(b.URL) }},
	{0.8, func(b *Bookmark) []string { return lowerAll(b.Tags) }},
	{0.6, func(b *Bookmark) []string { return tokenize(b.CategoryPath()) }},
	{0.5, func(b *Bookmark) []string { return tokenize(b.Description) }},
}

// ScoreBookmark scores a record against a free-text query.
// Every query word must match some field, otherwise the score is 0.
func ScoreBookmark(query string, b *Bookmark) float64 {
	words := tokenize(query)
	if b == nil || len(words) == 0 {
		return 0.0
	}

	fields := make([][]string, len(searchFields))
	for i, f := range searchFields {
		fields[i] = f.tokens(b)
	}

	var total float64
	for _, w := range words {
		best := 0.0
		for i, f := range searchFields {
			for pos, tok := range fields[i] {
				if s := scoreFragment(w, tok, pos) * f.weight; s > best {
					best = s
				}
			}
		}
		if best == 0.0 {
			return 0.0
		}
		total += best
	}
	return total
}

// RankBookmarks returns the records matching query, best first.
// Equal scores keep the input order.
func RankBookmarks(query string, records []*Bookmark) []*Bookmark {
	type candidate struct {
		b     *Bookmark
		score float64
	}
	candidates := make([]candidate, 0, len(records))
	for _, b := range records {
		if s := ScoreBookmark(query, b); s > 0 {
			candidates = append(candidates, candidate{b, s})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]*Bookmark, len(candidates))
	for i, c := range candidates {
		out[i] = c.b
	}
	return out
}

// scoreFragment scores a single query word against a record token
func scoreFragment(word, tok string, position int) float64 {
	if word == "" || tok == "" {
		return 0.0
	}

	// Exact match
	if word == tok {
		return ScoreExactMatch + calculatePositionBonus(position)
	}

	// Prefix match
	if strings.HasPrefix(tok, word) {
		return ScorePrefixMatch + calculatePositionBonus(position)
	}

	// Substring match
	if index := strings.Index(tok, word); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(tok)))
		return ScoreSubstringMatch + substringBonus
	}

	if len(word) < minFuzzyLen {
		return 0.0
	}
	if similarity := calculateSimilarity(word, tok); similarity > 0.75 {
		return ScoreFuzzyMatch * similarity
	}
	return 0.0
}

// calculatePositionBonus gives bonus for earlier positions
func calculatePositionBonus(position int) float64 {
	return ScorePositionBonus * math.Exp(-float64(position)*0.3)
}

// calculateSimilarity is the share of word characters found, in order, in tok.
func calculateSimilarity(word, tok string) float64 {
	matches := 0
	rest := tok
	for _, c := range word {
		if i := strings.IndexRune(rest, c); i >= 0 {
			matches++
			rest = rest[i+1:]
		}
	}
	return float64(matches) / float64(len([]rune(word)))
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// hostFragments splits the URL host into labels, "www" dropped.
func hostFragments(raw string) []string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return nil
	}
	var out []string
	for _, label := range strings.Split(strings.ToLower(u.Hostname()), ".") {
		if label != "" && label != "www" {
			out = append(out, label)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
