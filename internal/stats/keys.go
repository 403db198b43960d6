package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/adaptype/internal/engine"
	"github.com/verte-zerg/adaptype/internal/model"
)

// KeyCount pairs a key with its error count.
type KeyCount struct {
	Key   string
	Count int
}

// TopKeys returns the n most mistyped keys, most errors first, ties by key.
// Keys with zero errors are skipped; n <= 0 returns all.
func TopKeys(keyErrors map[string]int, n int) []KeyCount {
	items := make([]KeyCount, 0, len(keyErrors))
	for key, count := range keyErrors {
		if count <= 0 {
			continue
		}
		items = append(items, KeyCount{Key: key, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Key < items[j].Key
		}
		return items[i].Count > items[j].Count
	})
	if n > 0 && n < len(items) {
		items = items[:n]
	}
	return items
}

// BarFraction scales count against the largest count in keys.
func BarFraction(keys []KeyCount, count int) float64 {
	maxCount := 1
	for _, k := range keys {
		maxCount = max(maxCount, k.Count)
	}
	return math.Min(float64(count)/float64(maxCount), 1)
}

// MergeKeyErrors sums key errors across results.
func MergeKeyErrors(records []model.ResultRecord) map[string]int {
	out := map[string]int{}
	for _, r := range records {
		for key, n := range r.KeyErrors {
			out[key] += n
		}
	}
	return out
}

// RuneKeyErrors converts engine key counts to the string-keyed storage form.
func RuneKeyErrors(src map[rune]int) map[string]int {
	out := make(map[string]int, len(src))
	for r, n := range src {
		out[string(r)] = n
	}
	return out
}

// SelectWeakKeys picks the keys with the most errors.
func SelectWeakKeys(aggs []model.KeyAggregate, top int) map[rune]struct{} {
	counts := make(map[string]int, len(aggs))
	for _, agg := range aggs {
		counts[agg.Key] += agg.Errors
	}
	weak := map[rune]struct{}{}
	for _, kc := range TopKeys(counts, top) {
		if r, ok := singleRune(kc.Key); ok {
			weak[r] = struct{}{}
		}
	}
	return weak
}

// KeySizesFromTotals derives starting key scales from historical errors.
func KeySizesFromTotals(aggs []model.KeyAggregate) map[rune]float64 {
	sizes := map[rune]float64{}
	for _, agg := range aggs {
		r, ok := singleRune(agg.Key)
		if !ok || agg.Errors <= 0 {
			continue
		}
		sizes[r] = engine.ScaleForErrors(agg.Errors)
	}
	return sizes
}

// RenderTopKeys prints the most mistyped keys with bars of up to barWidth cells.
func RenderTopKeys(w io.Writer, keys []KeyCount, barWidth int) error {
	if len(keys) == 0 {
		_, err := fmt.Fprintln(w, "No mistyped keys.")
		return err
	}
	if barWidth < 1 {
		barWidth = 1
	}
	if _, err := fmt.Fprintln(w, "Most Mistyped Keys"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		filled := int(math.Round(BarFraction(keys, k.Count) * float64(barWidth)))
		rows = append(rows, []string{
			strings.ToUpper(k.Key),
			fmt.Sprintf("%d", k.Count),
			strings.Repeat("#", filled),
		})
	}
	for _, line := range formatTable([]string{"Key", "Errors", ""}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func singleRune(s string) (rune, bool) {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, false
	}
	return runes[0], true
}
