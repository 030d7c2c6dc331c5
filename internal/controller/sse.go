package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// eventStream writes SSE frames to the response body. After a failed write
// it cancels the run and drops further frames.
type eventStream struct {
	w       *bufio.Writer
	cancel  context.CancelFunc
	broken  bool
	errSent bool
}

func (s *eventStream) write(v interface{}) {
	if s.broken {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if _, err = fmt.Fprintf(s.w, "data: %s\n\n", data); err == nil {
		err = s.w.Flush()
	}
	if err != nil {
		s.broken = true
		s.cancel()
	}
}

// Emit implements service.EventSink.
func (s *eventStream) Emit(_ context.Context, ev dto.SearchEvent) {
	if ev.Event == dto.EventError {
		s.errSent = true
	}
	s.write(ev)
}

// fail reports err as a terminal error event unless the pipeline already did.
func (s *eventStream) fail(requestErr error) {
	if s.errSent {
		return
	}
	s.errSent = true
	s.write(dto.SearchEvent{Event: dto.EventError, Level: entity.LogLevelError, Error: requestErr.Error()})
}

// streamSSE switches the response to text/event-stream and runs fn on the
// body writer. fn gets a context that outlives the handler and is cancelled
// when the client goes away.
func streamSSE(ctx *fiber.Ctx, fn func(runCtx context.Context, stream *eventStream)) error {
	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	parent := context.WithoutCancel(ctx.UserContext())
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		runCtx, cancel := context.WithCancel(parent)
		defer cancel()
		fn(runCtx, &eventStream{w: w, cancel: cancel})
	}))
	return nil
}
