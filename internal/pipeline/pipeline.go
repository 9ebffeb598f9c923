// Package pipeline — фильтрация, сортировка и агрегаты над уже загруженной
// коллекцией записей. Всё синхронно, в памяти, без побочных эффектов.
package pipeline

import (
	"cmp"
	"slices"
	"strings"
)

// Predicate — условие фильтра. nil означает неактивный фильтр и пропускается.
type Predicate[T any] func(T) bool

// Filter применяет предикаты по AND. Входной срез не меняется.
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	out := make([]T, 0, len(items))
next:
	for _, it := range items {
		for _, p := range active {
			if !p(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// Equal — точное совпадение; пустое want выключает фильтр.
func Equal[T any](want string, get func(T) string) Predicate[T] {
	if want == "" {
		return nil
	}
	return func(it T) bool { return get(it) == want }
}

// Domain — допустимый диапазон числового поля.
type Domain struct{ Min, Max float64 }

var (
	BatteryDomain = Domain{Min: 0, Max: 100}
	SizeDomain    = Domain{Min: 0, Max: 1000}
	PriceDomain   = Domain{Min: 0, Max: 10000}
)

// Bounds возвращает [lo,hi] с подстановкой границ домена вместо nil и клампом.
func (d Domain) Bounds(lo, hi *float64) (float64, float64) {
	l, h := d.Min, d.Max
	if lo != nil {
		l = max(d.Min, *lo)
	}
	if hi != nil {
		h = min(d.Max, *hi)
	}
	return l, h
}

// InRange — включительный диапазон, зажатый в домен. Если диапазон покрывает
// весь домен, фильтр неактивен.
func InRange[T any](lo, hi *float64, d Domain, get func(T) float64) Predicate[T] {
	l, h := d.Bounds(lo, hi)
	if l <= d.Min && h >= d.Max {
		return nil
	}
	return func(it T) bool {
		v := get(it)
		return v >= l && v <= h
	}
}

// AnyContains — хотя бы один элемент списка содержит sub без учёта регистра.
func AnyContains[T any](sub string, get func(T) []string) Predicate[T] {
	if sub == "" {
		return nil
	}
	needle := strings.ToLower(sub)
	return func(it T) bool {
		for _, s := range get(it) {
			if strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
		return false
	}
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection: всё кроме "desc" — asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Key — ключ сортировки: строковый (без учёта регистра) или числовой.
type Key[T any] struct {
	str func(T) string
	num func(T) float64
}

func StringKey[T any](f func(T) string) Key[T]  { return Key[T]{str: f} }
func NumberKey[T any](f func(T) float64) Key[T] { return Key[T]{num: f} }

func (k Key[T]) compare(a, b T) int {
	if k.num != nil {
		return cmp.Compare(k.num(a), k.num(b))
	}
	return strings.Compare(strings.ToLower(k.str(a)), strings.ToLower(k.str(b)))
}

// Sort — стабильная сортировка копии по одному ключу; равные сохраняют порядок.
func Sort[T any](items []T, key Key[T], dir Direction) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := key.compare(a, b)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// Count — сколько записей удовлетворяют условию.
func Count[T any](items []T, p func(T) bool) int {
	n := 0
	for _, it := range items {
		if p(it) {
			n++
		}
	}
	return n
}

// CountBy — количество записей по категориям.
func CountBy[T any, K comparable](items []T, key func(T) K) map[K]int {
	out := make(map[K]int)
	for _, it := range items {
		out[key(it)]++
	}
	return out
}

// UniqueSorted — отсортированный набор непустых значений списочного поля
// (варианты для выпадающих фильтров).
func UniqueSorted[T any](items []T, get func(T) []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, it := range items {
		for _, s := range get(it) {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func orEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
