package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrQueueEmpty is returned by Pop when nothing is waiting.
	ErrQueueEmpty = errors.New("queue is empty")
	// ErrNoMoreContent is returned by LoadMore when the page cannot grow.
	ErrNoMoreContent = errors.New("no more content to load")
)
