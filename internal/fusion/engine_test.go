package fusion

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceezaa/tasteflow/internal/model"
	"github.com/ceezaa/tasteflow/internal/taxonomy"
)

func observedWith(userID string, counts map[string]int) *model.ObservedTasteProfile {
	profile := model.NewObservedTasteProfile(userID)
	total := 0
	for category, count := range counts {
		stat := model.NewCategoryStat()
		stat.Count = count
		stat.TotalSpend = decimal.NewFromInt(int64(count * 10))
		for i := 0; i < count; i++ {
			stat.MerchantFrequency[fmt.Sprintf("%s-m-%d", category, i%3)]++
		}
		profile.Categories[category] = stat
		total += count
	}
	profile.TotalTransactions = total
	// One distinct merchant entry per (category, i%3) key.
	for category, stat := range profile.Categories {
		for merchant, count := range stat.MerchantFrequency {
			profile.MerchantVisits[merchant] = &model.MerchantVisit{
				Merchant: merchant, Name: category, Count: count,
			}
		}
	}
	return profile
}

func TestFuse_ColdStart(t *testing.T) {
	engine := New()
	declared := model.DeclaredTaste{
		CategoryWeights: map[string]float64{
			taxonomy.Coffee: 0.6,
			taxonomy.Dining: 0.4,
		},
		Vibes:     []string{"chill"},
		PriceTier: model.PriceModerate,
		Version:   1,
	}

	fused := engine.Fuse("user-1", declared, nil)

	assert.Zero(t, fused.TxWeight)
	assert.Equal(t, 1.0, fused.QuizWeight)
	assert.Zero(t, fused.Confidence)
	assert.Zero(t, fused.ExplorationRatio)

	require.Len(t, fused.Categories, 2)
	assert.Equal(t, taxonomy.Coffee, fused.Categories[0].Name)
	assert.InDelta(t, 60, fused.Categories[0].Percentage, 0.001)
	assert.InDelta(t, 40, fused.Categories[1].Percentage, 0.001)
	assertPercentagesValid(t, fused)
}

func TestFuse_ColdStartRenormalizes(t *testing.T) {
	// Declared weights do not have to sum to 1; fusion scales the blend so
	// relative shares survive. Three equal weights become equal thirds,
	// with the 0.1 rounding remainder on the head of the sorted order.
	engine := New()
	declared := model.DeclaredTaste{
		CategoryWeights: map[string]float64{
			taxonomy.Coffee:    0.5,
			taxonomy.Nightlife: 0.5,
			taxonomy.Dining:    0.5,
		},
		Version: 1,
	}

	fused := engine.Fuse("user-1", declared, nil)

	require.Len(t, fused.Categories, 3)
	assert.Equal(t, taxonomy.Coffee, fused.Categories[0].Name)
	assert.InDelta(t, 33.4, fused.Categories[0].Percentage, 0.001)
	assert.InDelta(t, 33.3, fused.Categories[1].Percentage, 0.001)
	assert.InDelta(t, 33.3, fused.Categories[2].Percentage, 0.001)
	assertPercentagesValid(t, fused)
}

func TestFuse_ColdStartOversizedWeights(t *testing.T) {
	// Heavy quiz answers can push every weight near 1; the fused shares
	// must still be equal thirds inside [0, 100].
	engine := New()
	declared := model.DeclaredTaste{
		CategoryWeights: map[string]float64{
			taxonomy.Coffee:    0.9,
			taxonomy.Dining:    0.9,
			taxonomy.Nightlife: 0.9,
		},
		Version: 1,
	}

	fused := engine.Fuse("user-1", declared, nil)

	require.Len(t, fused.Categories, 3)
	for _, c := range fused.Categories {
		assert.InDelta(t, 33.3, c.Percentage, 0.11, "category %s", c.Name)
	}
	assertPercentagesValid(t, fused)
}

func TestFuse_WeightCap(t *testing.T) {
	engine := New()
	observed := observedWith("user-1", map[string]int{taxonomy.Dining: 150})

	fused := engine.Fuse("user-1", model.DeclaredTaste{Version: 1}, observed)

	assert.InDelta(t, 0.7, fused.TxWeight, 0.0001)
	assert.InDelta(t, 0.3, fused.QuizWeight, 0.0001)
	assert.Equal(t, 1.0, fused.Confidence)
}

func TestFuse_WeightRamp(t *testing.T) {
	engine := New()
	tests := []struct {
		total          int
		wantTxWeight   float64
		wantConfidence float64
	}{
		{0, 0, 0},
		{10, 0.2, 0.2},
		{25, 0.5, 0.5},
		{35, 0.7, 0.7},
		{50, 0.7, 1.0},
		{500, 0.7, 1.0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("total=%d", tt.total), func(t *testing.T) {
			var observed *model.ObservedTasteProfile
			if tt.total > 0 {
				observed = observedWith("user-1", map[string]int{taxonomy.Coffee: tt.total})
			}
			fused := engine.Fuse("user-1", model.DeclaredTaste{Version: tt.total}, observed)
			assert.InDelta(t, tt.wantTxWeight, fused.TxWeight, 0.0001)
			assert.InDelta(t, tt.wantConfidence, fused.Confidence, 0.0001)
			assert.InDelta(t, 1.0, fused.QuizWeight+fused.TxWeight, 0.0001)
		})
	}
}

func TestFuse_TxWeightMonotonic(t *testing.T) {
	engine := New()
	prev := -1.0
	for total := 0; total <= 120; total += 3 {
		var observed *model.ObservedTasteProfile
		if total > 0 {
			observed = observedWith("user-1", map[string]int{taxonomy.Coffee: total})
		}
		fused := engine.Fuse("user-1", model.DeclaredTaste{Version: total}, observed)
		require.GreaterOrEqual(t, fused.TxWeight, prev, "tx weight regressed at total=%d", total)
		require.LessOrEqual(t, fused.TxWeight, 0.7)
		prev = fused.TxWeight
	}
}

func TestFuse_BlendsDeclaredAndObserved(t *testing.T) {
	engine := New()
	declared := model.DeclaredTaste{
		CategoryWeights: map[string]float64{taxonomy.Coffee: 1.0},
		Version:         1,
	}
	// 25 transactions, all nightlife: txWeight 0.5.
	observed := observedWith("user-1", map[string]int{taxonomy.Nightlife: 25})

	fused := engine.Fuse("user-1", declared, observed)

	require.Len(t, fused.Categories, 2)
	byName := make(map[string]model.FusedCategory)
	for _, c := range fused.Categories {
		byName[c.Name] = c
	}
	assert.InDelta(t, 50, byName[taxonomy.Coffee].Percentage, 0.1)
	assert.InDelta(t, 50, byName[taxonomy.Nightlife].Percentage, 0.1)
	assertPercentagesValid(t, fused)
}

func TestFuse_HiddenCategoriesExcluded(t *testing.T) {
	engine := New()
	observed := observedWith("user-1", map[string]int{
		taxonomy.Coffee:    10,
		taxonomy.Groceries: 30,
		taxonomy.Other:     10,
	})

	fused := engine.Fuse("user-1", model.DeclaredTaste{Version: 1}, observed)

	for _, c := range fused.Categories {
		assert.True(t, taxonomy.Displayable(c.Name), "hidden category %s in display list", c.Name)
	}
	require.Len(t, fused.Categories, 1)
	assert.Equal(t, taxonomy.Coffee, fused.Categories[0].Name)
	// The visible slice still carries the full weight.
	assertPercentagesValid(t, fused)
}

func TestFuse_RandomizedPercentageInvariant(t *testing.T) {
	engine := New()
	rng := rand.New(rand.NewSource(7))
	displayable := []string{
		taxonomy.Coffee, taxonomy.Dining, taxonomy.FastFood,
		taxonomy.Nightlife, taxonomy.Entertainment, taxonomy.Fitness,
	}

	for i := 0; i < 200; i++ {
		declared := model.DeclaredTaste{CategoryWeights: map[string]float64{}, Version: i}
		for _, c := range displayable {
			if rng.Intn(2) == 0 {
				// Raw sums range roughly 0 to 12, far off any 100 total.
				declared.CategoryWeights[c] = rng.Float64() * 2
			}
		}
		counts := map[string]int{}
		for _, c := range displayable {
			if rng.Intn(2) == 0 {
				counts[c] = rng.Intn(40)
			}
		}
		var observed *model.ObservedTasteProfile
		if len(counts) > 0 {
			observed = observedWith(fmt.Sprintf("user-%d", i), counts)
		}

		fused := engine.Fuse(fmt.Sprintf("user-%d", i), declared, observed)
		if len(fused.Categories) == 0 {
			continue
		}
		assertPercentagesValid(t, fused)
	}
}

func TestFuse_DominantCategoryVibes(t *testing.T) {
	engine := New()
	declared := model.DeclaredTaste{
		Vibes:   []string{"romantic", "social"},
		Version: 1,
	}
	observed := observedWith("user-1", map[string]int{taxonomy.Nightlife: 30, taxonomy.Coffee: 5})

	fused := engine.Fuse("user-1", declared, observed)

	// Declared order preserved, dominant nightlife tags appended, "social"
	// not duplicated.
	assert.Equal(t, []string{"romantic", "social", "energetic"}, fused.Vibes)
}

func TestFuse_CuisinesMergeDeclaredFirst(t *testing.T) {
	engine := New()
	declared := model.DeclaredTaste{
		CuisinePreferences: []string{"thai", "sushi"},
		Version:            1,
	}
	observed := observedWith("user-1", map[string]int{taxonomy.Dining: 10})
	observed.Cuisines = map[string]int{"pizza": 6, "thai": 4, "american": 1}

	fused := engine.Fuse("user-1", declared, observed)

	assert.Equal(t, []string{"thai", "sushi", "pizza", "american"}, fused.TopCuisines)
}

func TestFuse_CacheReturnsSameResult(t *testing.T) {
	engine := New()
	declared := model.DeclaredTaste{
		CategoryWeights: map[string]float64{taxonomy.Coffee: 1},
		Version:         2,
	}
	observed := observedWith("user-1", map[string]int{taxonomy.Coffee: 10})

	first := engine.Fuse("user-1", declared, observed)
	second := engine.Fuse("user-1", declared, observed)
	assert.Same(t, first, second)

	// A new declared version misses the cache.
	declared.Version = 3
	third := engine.Fuse("user-1", declared, observed)
	assert.NotSame(t, first, third)

	// So does new observed volume.
	declared.Version = 2
	observed.TotalTransactions++
	fourth := engine.Fuse("user-1", declared, observed)
	assert.NotSame(t, first, fourth)
}

func TestFuse_CacheIsolatedPerUser(t *testing.T) {
	engine := New()
	declared := model.DeclaredTaste{Version: 1}
	observedA := observedWith("user-a", map[string]int{taxonomy.Coffee: 10})
	observedB := observedWith("user-b", map[string]int{taxonomy.Nightlife: 10})

	fusedA := engine.Fuse("user-a", declared, observedA)
	fusedB := engine.Fuse("user-b", declared, observedB)
	require.NotSame(t, fusedA, fusedB)
	assert.Equal(t, taxonomy.Coffee, fusedA.Categories[0].Name)
	assert.Equal(t, taxonomy.Nightlife, fusedB.Categories[0].Name)
}

func TestFuse_CacheIsolatedPerUserColdStart(t *testing.T) {
	// Declared versions are per-user: two users at version 1 with no
	// transactions must not share a cache entry.
	engine := New()
	declaredA := model.DeclaredTaste{
		CategoryWeights: map[string]float64{taxonomy.Coffee: 1},
		Version:         1,
	}
	declaredB := model.DeclaredTaste{
		CategoryWeights: map[string]float64{taxonomy.Nightlife: 1},
		Version:         1,
	}

	fusedA := engine.Fuse("user-a", declaredA, nil)
	fusedB := engine.Fuse("user-b", declaredB, nil)

	require.NotSame(t, fusedA, fusedB)
	require.Len(t, fusedA.Categories, 1)
	require.Len(t, fusedB.Categories, 1)
	assert.Equal(t, taxonomy.Coffee, fusedA.Categories[0].Name)
	assert.Equal(t, taxonomy.Nightlife, fusedB.Categories[0].Name)

	// Same user, same version still hits the cache.
	assert.Same(t, fusedA, engine.Fuse("user-a", declaredA, nil))
}

func assertPercentagesValid(t *testing.T, fused *model.FusedTasteProfile) {
	t.Helper()
	if len(fused.Categories) == 0 {
		return
	}
	sum := 0.0
	for _, c := range fused.Categories {
		require.GreaterOrEqual(t, c.Percentage, 0.0, "category %s percentage", c.Name)
		require.LessOrEqual(t, c.Percentage, 100.0, "category %s percentage", c.Name)
		sum += c.Percentage
	}
	assert.InDelta(t, 100, sum, 0.0001, "percentages sum to %v", sum)
}
