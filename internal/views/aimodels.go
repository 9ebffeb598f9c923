package views

import (
	"context"
	"time"

	"fleetdash/internal/models"
	"fleetdash/internal/pipeline"
)

type ModelsSnapshot struct {
	State  State               `json:"state"`
	Items  []models.AIModel    `json:"items"`
	Stats  pipeline.ModelStats `json:"stats"`
	Tags   []string            `json:"tags"`
	Layout Layout              `json:"layout"`
}

// ModelsView — каталог моделей: фильтр по тегу, размеру и цене плюс сортировка.
type ModelsView struct {
	Layout Layout

	src    Source
	now    func() time.Time
	data   collection[models.AIModel]
	filter pipeline.ModelFilter
}

func NewModelsView(src Source) *ModelsView {
	return &ModelsView{src: src, now: time.Now, data: newCollection[models.AIModel]()}
}

// WithClock — для тестов счётчика «новых» моделей.
func (v *ModelsView) WithClock(now func() time.Time) *ModelsView {
	v.now = now
	return v
}

func (v *ModelsView) Refetch(ctx context.Context) error {
	return v.data.load(ctx, func(ctx context.Context) ([]models.AIModel, error) {
		return v.src.ListModels(ctx, "")
	})
}

func (v *ModelsView) SetFilter(f pipeline.ModelFilter) {
	v.data.mu.Lock()
	v.filter = f
	v.data.mu.Unlock()
}

func (v *ModelsView) ResetFilters() { v.SetFilter(pipeline.ModelFilter{}) }

func (v *ModelsView) Snapshot() ModelsSnapshot {
	state, items := v.data.snapshot()
	v.data.mu.Lock()
	f := v.filter
	v.data.mu.Unlock()
	shown := f.Apply(items)
	return ModelsSnapshot{
		State:  state,
		Items:  shown,
		Stats:  pipeline.ComputeModelStats(shown, v.now()),
		Tags:   pipeline.ModelTags(items),
		Layout: v.Layout,
	}
}
