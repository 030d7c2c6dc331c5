package service

import (
	"context"

	"smart-search-be/internal/dto"
)

// EventSink receives pipeline progress. Emit must not block for long; the
// pipeline calls it inline.
type EventSink interface {
	Emit(ctx context.Context, ev dto.SearchEvent)
}

type NopSink struct{}

func (NopSink) Emit(context.Context, dto.SearchEvent) {}

type SinkFunc func(ctx context.Context, ev dto.SearchEvent)

func (f SinkFunc) Emit(ctx context.Context, ev dto.SearchEvent) { f(ctx, ev) }

// MultiSink fans an event out to every non-nil sink in order.
type MultiSink []EventSink

func (m MultiSink) Emit(ctx context.Context, ev dto.SearchEvent) {
	for _, s := range m {
		if s != nil {
			s.Emit(ctx, ev)
		}
	}
}
