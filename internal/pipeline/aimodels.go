package pipeline

import (
	"fmt"
	"time"

	"fleetdash/internal/models"
)

const (
	// PopularPrice — модель «популярна», если дороже этого порога (строго).
	PopularPrice = 1000.0
	// NewWindow — модель «новая», если создана позже now-NewWindow.
	NewWindow = 30 * 24 * time.Hour
)

type ModelSortKey string

const (
	SortByName  ModelSortKey = "name"
	SortByPrice ModelSortKey = "price"
	SortBySize  ModelSortKey = "size"
)

// ParseModelSortKey: пустое значение — name.
func ParseModelSortKey(s string) (ModelSortKey, error) {
	switch ModelSortKey(s) {
	case "", SortByName:
		return SortByName, nil
	case SortByPrice, SortBySize:
		return ModelSortKey(s), nil
	default:
		return "", fmt.Errorf("unknown sort key %q (name|price|size)", s)
	}
}

type ModelFilter struct {
	Tag      string
	SizeMin  *float64
	SizeMax  *float64
	PriceMin *float64
	PriceMax *float64
	SortBy   ModelSortKey
	Order    Direction
}

func modelKey(k ModelSortKey) Key[models.AIModel] {
	switch k {
	case SortByPrice:
		return NumberKey(func(m models.AIModel) float64 { return m.Price })
	case SortBySize:
		return NumberKey(func(m models.AIModel) float64 { return orZero(m.SizeGB) })
	default:
		return StringKey(func(m models.AIModel) string { return m.Name })
	}
}

// Apply — фильтр, затем сортировка.
func (f ModelFilter) Apply(ms []models.AIModel) []models.AIModel {
	out := Filter(ms,
		AnyContains(f.Tag, func(m models.AIModel) []string { return m.Tags }),
		InRange(f.SizeMin, f.SizeMax, SizeDomain, func(m models.AIModel) float64 { return orZero(m.SizeGB) }),
		InRange(f.PriceMin, f.PriceMax, PriceDomain, func(m models.AIModel) float64 { return m.Price }),
	)
	order := f.Order
	if order == "" {
		order = Asc
	}
	return Sort(out, modelKey(f.SortBy), order)
}

type ModelStats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Popular int `json:"popular"`
	New     int `json:"new"`
}

// ComputeModelStats — now передаётся явно, «новизна» считается от него.
func ComputeModelStats(ms []models.AIModel, now time.Time) ModelStats {
	since := now.Add(-NewWindow)
	return ModelStats{
		Total:   len(ms),
		Active:  Count(ms, func(m models.AIModel) bool { return orEmpty(m.Type) == "active" }),
		Popular: Count(ms, func(m models.AIModel) bool { return m.Price > PopularPrice }),
		New:     Count(ms, func(m models.AIModel) bool { return m.CreatedAt.After(since) }),
	}
}

func ModelTags(ms []models.AIModel) []string {
	return UniqueSorted(ms, func(m models.AIModel) []string { return m.Tags })
}
