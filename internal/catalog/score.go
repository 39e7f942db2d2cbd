package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/gemlight/diamond-agent/internal/agent/model"
)

// categoricalWeight is the fixed score contribution for each categorical
// attribute (cut, color, clarity, shape) that matches a stated preference.
const categoricalWeight = 10.0

// MatchScore computes the preference match score for one diamond.
// Categorical attributes contribute categoricalWeight per exact match; a
// carat target contributes a distance-decreasing weight. The budget key is a
// hard filter upstream and never scores.
func MatchScore(d *model.Diamond, prefs map[string]any) float64 {
	var score float64

	if prefMatches(prefs["cut"], d.Cut) {
		score += categoricalWeight
	}
	if prefMatches(prefs["color"], d.Color) {
		score += categoricalWeight
	}
	if prefMatches(prefs["clarity"], d.Clarity) {
		score += categoricalWeight
	}
	if prefMatches(prefs["shape"], d.Shape) {
		score += categoricalWeight
	}

	if target, ok := asFloat(prefs["carat"]); ok {
		score += categoricalWeight - math.Abs(d.Carat-target)
	}

	return score
}

// RankByScore orders diamonds by match score descending, price ascending on
// ties, and caps the result at limit. The input slice is not modified.
func RankByScore(diamonds []model.Diamond, prefs map[string]any, limit int) []model.Diamond {
	ranked := make([]model.Diamond, len(diamonds))
	copy(ranked, diamonds)

	scores := make(map[string]float64, len(ranked))
	for i := range ranked {
		scores[ranked[i].ID] = MatchScore(&ranked[i], prefs)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i].ID], scores[ranked[j].ID]
		if si != sj {
			return si > sj
		}
		return ranked[i].Price < ranked[j].Price
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// prefMatches reports whether the stated preference value covers the
// attribute. Preferences arrive as a string, []string, or []any depending on
// whether they were extracted locally or decoded from JSON.
func prefMatches(pref any, attr string) bool {
	switch v := pref.(type) {
	case string:
		return strings.EqualFold(v, attr)
	case []string:
		for _, s := range v {
			if strings.EqualFold(s, attr) {
				return true
			}
		}
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok && strings.EqualFold(s, attr) {
				return true
			}
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
