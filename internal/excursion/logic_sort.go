package excursion

import (
	"sort"
	"strings"
	"tripscout/pkg/logger"
)

// rankExcursions is the default ordering applied after merging provider
// results: rating descending, ties broken by price ascending.
func rankExcursions(excursions []Excursion) []Excursion {
	if len(excursions) <= 1 {
		return excursions
	}

	ranked := make([]Excursion, len(excursions))
	copy(ranked, excursions)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].Price < ranked[j].Price
	})

	return ranked
}

func (s *Service) applySorting(excursions []Excursion, sortOpt SortOptions) []Excursion {
	if len(excursions) <= 1 {
		return excursions
	}

	sorted := make([]Excursion, len(excursions))
	copy(sorted, excursions)

	switch sortOpt.By {
	case "rating":
		sortByRating(sorted, sortOpt.Order)
	case "price":
		sortByPrice(sorted, sortOpt.Order)
	case "review_count":
		sortByReviewCount(sorted, sortOpt.Order)
	default:
		s.logger.Warn("invalid_sort_criteria", logger.Field{Key: "sort_by", Value: sortOpt.By})
		return rankExcursions(sorted)
	}

	return sorted
}

// Using Sort Stable to prevent UI jumping when values are equal
func sortByRating(excursions []Excursion, order string) {
	sort.SliceStable(excursions, func(i, j int) bool {
		if excursions[i].Rating == excursions[j].Rating {
			// same tie-break as the default ranking
			return excursions[i].Price < excursions[j].Price
		}
		if order == "asc" {
			return excursions[i].Rating < excursions[j].Rating
		}
		return excursions[i].Rating > excursions[j].Rating
	})
}

func sortByPrice(excursions []Excursion, order string) {
	sort.SliceStable(excursions, func(i, j int) bool {
		if order == "desc" {
			return excursions[i].Price > excursions[j].Price
		}
		return excursions[i].Price < excursions[j].Price
	})
}

func sortByReviewCount(excursions []Excursion, order string) {
	sort.SliceStable(excursions, func(i, j int) bool {
		if order == "asc" {
			return excursions[i].ReviewCount < excursions[j].ReviewCount
		}
		return excursions[i].ReviewCount > excursions[j].ReviewCount
	})
}

func applyFilters(excursions []Excursion, filters FilterOptions) []Excursion {
	filtered := make([]Excursion, 0, len(excursions))

	for _, e := range excursions {
		if filters.PriceRange != nil {
			if e.Price < filters.PriceRange.Low || e.Price > filters.PriceRange.High {
				continue
			}
		}

		if filters.MinRating != nil && e.Rating < *filters.MinRating {
			continue
		}

		if len(filters.Categories) > 0 {
			matched := false
			for _, category := range filters.Categories {
				if strings.EqualFold(e.Category, category) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}

		filtered = append(filtered, e)
	}

	return filtered
}
