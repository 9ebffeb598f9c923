package views

import (
	"context"
	"sync"
)

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// State — Loading -> Ready | Error. Обратно в Loading только через Refetch.
type State struct {
	Phase Phase  `json:"phase"`
	Error string `json:"error,omitempty"`
}

// collection — снимок одной коллекции на момент последней загрузки.
type collection[T any] struct {
	mu    sync.Mutex
	state State
	items []T
}

func newCollection[T any]() collection[T] {
	return collection[T]{state: State{Phase: PhaseLoading}, items: []T{}}
}

// load переводит в Loading, зовёт fetch и фиксирует Ready или Error.
// При ошибке прежние данные не сохраняются: экран показывает только ошибку.
func (c *collection[T]) load(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	c.mu.Lock()
	c.state = State{Phase: PhaseLoading}
	c.mu.Unlock()

	items, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = State{Phase: PhaseError, Error: err.Error()}
		c.items = []T{}
		return err
	}
	if items == nil {
		items = []T{}
	}
	c.state = State{Phase: PhaseReady}
	c.items = items
	return nil
}

func (c *collection[T]) snapshot() (State, []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.items
}
