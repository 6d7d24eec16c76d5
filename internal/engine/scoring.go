// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

package engine

import (
	"math"
	"strings"
	"time"

	"github.com/outfitd/outfitd/internal/aggregator"
	"github.com/outfitd/outfitd/internal/profile"
	"github.com/outfitd/outfitd/internal/wardrobe"
)

// neutralScore is the default for any dimension with no evidence.
const neutralScore = 0.5

// colorNeutrals pair well with everything.
var colorNeutrals = map[string]bool{
	"white": true,
	"black": true,
	"gray":  true,
	"grey":  true,
	"beige": true,
	"cream": true,
}

// colorComplements are known good non-neutral pairings.
var colorComplements = map[string]bool{
	pairColors("navy", "mustard"):   true,
	pairColors("blue", "orange"):    true,
	pairColors("green", "burgundy"): true,
	pairColors("denim", "white"):    true,
}

// colorClashes are known bad pairings, checked before the neutral rule
// so black+brown still clashes.
var colorClashes = map[string]bool{
	pairColors("black", "brown"):   true,
	pairColors("red", "pink"):      true,
	pairColors("red", "green"):     true,
	pairColors("orange", "purple"): true,
}

func pairColors(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "/" + b
}

// scoreAll scores every candidate. With filterDislikes set, candidates
// matching a disliked pattern are dropped; callers clear it when that
// would leave nothing to recommend.
func (e *Engine) scoreAll(rc *aggregator.Context, candidates []Outfit, filterDislikes bool) []*Recommendation {
	scored := make([]*Recommendation, 0, len(candidates))
	for i := range candidates {
		if filterDislikes && e.isDisliked(rc.Profile, &candidates[i]) {
			continue
		}
		scored = append(scored, e.score(rc, &candidates[i]))
	}
	return scored
}

// isDisliked reports whether the outfit matches any tag combination the
// user has repeatedly rated low.
func (e *Engine) isDisliked(p *profile.StyleProfile, outfit *Outfit) bool {
	if len(p.DislikedPatterns) == 0 {
		return false
	}
	items := outfit.Items()
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			for _, ta := range items[i].Tags {
				for _, tb := range items[j].Tags {
					key := profile.ComboKey(ta, tb)
					if p.IsDisliked(key, e.cfg.DislikeThreshold) {
						return true
					}
				}
			}
		}
	}
	return false
}

// score blends the four dimensions and applies preference adjustments.
func (e *Engine) score(rc *aggregator.Context, outfit *Outfit) *Recommendation {
	items := outfit.Items()

	compat := e.compatibilityScore(rc.Profile, items)
	harmony := e.colorHarmonyScore(items)
	neglect := e.neglectScore(items, rc.Date)
	confidence := e.confidenceScore(rc.Profile, items)

	w := e.cfg.Weights
	score := w.Compatibility*compat +
		w.ColorHarmony*harmony +
		w.Neglect*neglect +
		w.Confidence*confidence

	score += e.preferenceBoost(rc.Profile, items)
	score = clamp01(score)

	costPerWear := 0.0
	for i := range items {
		costPerWear += items[i].CostPerWear
	}

	return &Recommendation{
		Outfit:      *outfit,
		Score:       score,
		StyleMatch:  int(math.Round(score * 100)),
		CostPerWear: costPerWear,
	}
}

// compatibilityScore averages pairwise compatibility: learned profile
// weight first, then the item's own compatibility map, neutral when
// neither has evidence.
func (e *Engine) compatibilityScore(p *profile.StyleProfile, items []wardrobe.Item) float64 {
	sum, pairs := 0.0, 0
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			sum += pairCompatibility(p, &items[i], &items[j])
			pairs++
		}
	}
	if pairs == 0 {
		return neutralScore
	}
	return sum / float64(pairs)
}

func pairCompatibility(p *profile.StyleProfile, a, b *wardrobe.Item) float64 {
	if w, ok := p.CompatibilityWeights[profile.PairKey(a.ID, b.ID)]; ok {
		return w
	}
	if w, ok := a.StyleCompatibility[b.ID]; ok {
		return w
	}
	if w, ok := b.StyleCompatibility[a.ID]; ok {
		return w
	}
	return neutralScore
}

// colorHarmonyScore averages pairwise harmony over the items' primary
// colors. Clash pairs score 0.2, pairs containing a neutral 1.0, known
// complements 0.9, same color 0.8, everything else neutral.
func (e *Engine) colorHarmonyScore(items []wardrobe.Item) float64 {
	var colors []string
	for i := range items {
		if len(items[i].Colors) > 0 {
			colors = append(colors, strings.ToLower(items[i].Colors[0]))
		}
	}
	if len(colors) < 2 {
		return neutralScore
	}

	sum, pairs := 0.0, 0
	for i := 0; i < len(colors); i++ {
		for j := i + 1; j < len(colors); j++ {
			sum += colorPairScore(colors[i], colors[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

func colorPairScore(a, b string) float64 {
	switch {
	case colorClashes[pairColors(a, b)]:
		return 0.2
	case colorNeutrals[a] || colorNeutrals[b]:
		return 1.0
	case colorComplements[pairColors(a, b)]:
		return 0.9
	case a == b:
		return 0.8
	default:
		return neutralScore
	}
}

// neglectScore rewards rotation: never-worn items score 1.0, recently
// worn items near 0, scaling linearly to 1.0 at twice the neglect
// threshold.
func (e *Engine) neglectScore(items []wardrobe.Item, now time.Time) float64 {
	fullAt := float64(e.cfg.NeglectThresholdDays) * 2
	sum := 0.0
	for i := range items {
		if items[i].LastWorn.IsZero() {
			sum += 1.0
			continue
		}
		days := now.Sub(items[i].LastWorn).Hours() / 24
		sum += clamp01(days / fullAt)
	}
	return sum / float64(len(items))
}

// confidenceScore averages learned combo ratings over the outfit's
// pairwise tag combinations, neutral when the profile has none.
func (e *Engine) confidenceScore(p *profile.StyleProfile, items []wardrobe.Item) float64 {
	if len(p.ComboRatings) == 0 {
		return neutralScore
	}

	sum, n := 0.0, 0
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			for _, ta := range items[i].Tags {
				for _, tb := range items[j].Tags {
					if rating, ok := p.ComboRatings[profile.ComboKey(ta, tb)]; ok {
						sum += rating
						n++
					}
				}
			}
		}
	}
	if n == 0 {
		return neutralScore
	}
	return sum / float64(n)
}

// preferenceBoost adds small bumps for preferred colors, brands, and
// styles. Capped so preferences nudge rather than dominate.
func (e *Engine) preferenceBoost(p *profile.StyleProfile, items []wardrobe.Item) float64 {
	boost := 0.0
	for i := range items {
		if len(items[i].Colors) > 0 && p.PrefersColor(items[i].Colors[0]) {
			boost += 0.02
		}
		if items[i].Brand != "" && p.PrefersBrand(items[i].Brand) {
			boost += 0.02
		}
		for _, style := range p.PreferredStyles {
			if items[i].HasTag(style) {
				boost += 0.02
				break
			}
		}
	}
	return math.Min(boost, 0.1)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
