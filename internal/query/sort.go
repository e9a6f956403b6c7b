package query

import (
	"sort"
	"strings"

	"foodexplorer/internal/catalog"
)

// filterByGrade keeps products whose nutrition grade matches the filter,
// case-insensitively. An empty filter passes everything through.
func filterByGrade(products []catalog.Product, grade string) []catalog.Product {
	if grade == "" {
		return products
	}
	filtered := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.NutritionGrade != "" && strings.EqualFold(p.NutritionGrade, grade) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// sortProducts returns a stably sorted copy. Relevance keeps the server
// order. For grades, an unknown grade sorts after all known grades when
// ascending ("z" sentinel) but before all known grades when descending
// (empty-string sentinel); the asymmetry is deliberate and load-bearing for
// how unrated products are displayed.
func sortProducts(products []catalog.Product, key SortKey) []catalog.Product {
	sorted := append([]catalog.Product(nil), products...)

	switch key {
	case SortNameAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Name < sorted[j].Name
		})
	case SortNameDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[j].Name < sorted[i].Name
		})
	case SortGradeAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return gradeOr(sorted[i], "z") < gradeOr(sorted[j], "z")
		})
	case SortGradeDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return gradeOr(sorted[j], "") < gradeOr(sorted[i], "")
		})
	}
	return sorted
}

func gradeOr(p catalog.Product, sentinel string) string {
	if p.NutritionGrade == "" {
		return sentinel
	}
	return p.NutritionGrade
}
