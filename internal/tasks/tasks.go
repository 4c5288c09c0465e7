// Package tasks provides a small to-do list kept alongside the finance
// data. Stores are injected so handlers never reach for package state.
package tasks

import (
	"context"
	"errors"
)

type Task struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	Title *string
	Done  *bool
}

var ErrNotFound = errors.New("task not found")

type Store interface {
	List(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id int64) (Task, error)
	Create(ctx context.Context, title string) (Task, error)
	Update(ctx context.Context, id int64, patch Patch) (Task, error)
	Delete(ctx context.Context, id int64) error
}
