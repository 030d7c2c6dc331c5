package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/pkg/logger"
	"smart-search-be/internal/service"
	"smart-search-be/internal/tools"
)

const maxLineSize = 1024 * 1024

var errLineTooLong = errors.New("request line too long")

type request struct {
	Id     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type invokeParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Stream    bool            `json:"stream"`
}

type response struct {
	Id     json.RawMessage  `json:"id"`
	Result interface{}      `json:"result,omitempty"`
	Event  *dto.SearchEvent `json:"event,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Server speaks the line protocol: one JSON request per input line, one or
// more JSON lines back.
type Server struct {
	registry *tools.Registry
	logger   logger.ILogger

	mu  sync.Mutex
	out *bufio.Writer
}

func NewServer(registry *tools.Registry, log logger.ILogger) *Server {
	return &Server{
		registry: registry,
		logger:   log,
	}
}

// Serve handles requests from r until EOF or ctx is done. Malformed or
// oversized lines get an error response; they never stop the loop.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.out = bufio.NewWriter(w)
	reader := bufio.NewReaderSize(r, 64*1024)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		raw, err := readLine(reader, maxLineSize)
		if errors.Is(err, errLineTooLong) {
			s.logger.Warn("Stdio", "Request line too long", map[string]interface{}{"limit": maxLineSize})
			if werr := s.write(response{Error: errLineTooLong.Error()}); werr != nil {
				return werr
			}
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		if line := bytes.TrimSpace(raw); len(line) > 0 {
			if herr := s.handle(ctx, line); herr != nil {
				return herr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

// readLine returns the next line including its terminator. A line longer
// than limit is consumed through its newline and reported as errLineTooLong.
func readLine(r *bufio.Reader, limit int) ([]byte, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > limit+1 {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if tooLong && (err == nil || errors.Is(err, io.EOF)) {
			return nil, errLineTooLong
		}
		return buf, err
	}
}

func (s *Server) handle(ctx context.Context, line []byte) error {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("Stdio", "Malformed request line", map[string]interface{}{"error": err.Error()})
		return s.write(response{Error: "Invalid JSON: " + err.Error()})
	}

	switch req.Method {
	case "list_tools":
		return s.write(response{Id: req.Id, Result: s.registry.List()})

	case "invoke_tool":
		var params invokeParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return s.write(response{Id: req.Id, Error: "Invalid params: " + err.Error()})
			}
		}
		var args map[string]interface{}
		if len(params.Arguments) > 0 {
			if err := json.Unmarshal(params.Arguments, &args); err != nil {
				return s.write(response{Id: req.Id, Error: "Invalid arguments: " + err.Error()})
			}
		}

		var sink service.EventSink
		if params.Stream {
			sink = service.SinkFunc(func(_ context.Context, ev dto.SearchEvent) {
				if err := s.write(response{Id: req.Id, Event: &ev}); err != nil {
					s.logger.Warn("Stdio", "Failed to write event", map[string]interface{}{"error": err.Error()})
				}
			})
		}

		out, err := s.registry.Invoke(ctx, params.Name, args, sink)
		if err != nil {
			return s.write(response{Id: req.Id, Error: errorText(params.Name, err)})
		}
		return s.write(response{Id: req.Id, Result: out})

	default:
		return s.write(response{Id: req.Id, Error: fmt.Sprintf("Unknown method: %s", req.Method)})
	}
}

func errorText(name string, err error) string {
	if errors.Is(err, service.ErrUnknownTool) {
		return fmt.Sprintf("Unknown tool: %s", name)
	}
	return err.Error()
}

func (s *Server) write(resp response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(response{Id: resp.Id, Error: err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		return err
	}
	return s.out.Flush()
}
