package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/entity"
	"smart-search-be/internal/pkg/metrics"
	"smart-search-be/internal/pkg/serverutils"
	"smart-search-be/internal/repository/contract"
	"smart-search-be/pkg/events"
	"smart-search-be/pkg/keylock"
	"smart-search-be/pkg/preference"
	"smart-search-be/pkg/summarize"
	"smart-search-be/pkg/utils"
	"smart-search-be/pkg/websearch"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	topURLCount        = 3
	scrapePreviewSize  = 1200
	scrapePreviewLimit = 3
	summaryChunkSize   = 800
	summaryStyle       = "balanced"

	modeSync   = "sync"
	modeStream = "stream"
)

var tracer = otel.Tracer("smart-search-be/service")

type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

type QueryRewriter interface {
	Rewrite(ctx context.Context, query string, prefs preference.Preferences) (string, error)
}

type TextSummarizer interface {
	Summarize(ctx context.Context, text string, opts summarize.Options) (string, error)
}

type ISmartSearchService interface {
	// Search runs the whole pipeline and returns only the final result.
	Search(ctx context.Context, req dto.SmartSearchRequest) (*dto.SmartSearchResponse, error)
	// SearchStream runs the same pipeline and reports every stage to sink.
	SearchStream(ctx context.Context, req dto.SmartSearchRequest, sink EventSink) (*dto.SmartSearchResponse, error)
	// WebSearch is a single raw search with no state involved.
	WebSearch(ctx context.Context, req dto.TavilySearchRequest) (*dto.TavilySearchResponse, error)
}

type SmartSearchConfig struct {
	SummaryMaxWords  int
	MaxRetainedTurns int // 0 keeps every turn
}

// SmartSearchDeps wires the pipeline. Turns, Events, Observer and Metrics are optional.
type SmartSearchDeps struct {
	State      contract.SearchStateRepository
	Rewriter   QueryRewriter
	Searcher   websearch.Searcher
	Fetcher    TextFetcher
	Summarizer TextSummarizer
	Audit      *AuditLogger
	Locks      *keylock.KeyedMutex

	Turns    IPublisherService
	Events   events.Publisher
	Observer EventSink
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

type smartSearchService struct {
	cfg  SmartSearchConfig
	deps SmartSearchDeps
}

func NewSmartSearchService(cfg SmartSearchConfig, deps SmartSearchDeps) ISmartSearchService {
	if cfg.SummaryMaxWords <= 0 {
		cfg.SummaryMaxWords = 250
	}
	if deps.Locks == nil {
		deps.Locks = keylock.New()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &smartSearchService{cfg: cfg, deps: deps}
}

func (s *smartSearchService) Search(ctx context.Context, req dto.SmartSearchRequest) (*dto.SmartSearchResponse, error) {
	return s.run(ctx, modeSync, req, NopSink{})
}

func (s *smartSearchService) SearchStream(ctx context.Context, req dto.SmartSearchRequest, sink EventSink) (*dto.SmartSearchResponse, error) {
	if sink == nil {
		sink = NopSink{}
	}
	return s.run(ctx, modeStream, req, sink)
}

func (s *smartSearchService) WebSearch(ctx context.Context, req dto.TavilySearchRequest) (*dto.TavilySearchResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	res, err := s.deps.Searcher.Search(ctx, req.Query)
	if err != nil {
		s.stageFailed("search")
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	s.observeLatency(res.LatencyMs)
	return &dto.TavilySearchResponse{Raw: res.Raw, LatencyMs: res.LatencyMs}, nil
}

// pipelineRun carries the per-request identity and the last reported progress.
type pipelineRun struct {
	svc       *smartSearchService
	sink      EventSink
	mode      string
	requestId string
	sessionId string
	progress  int
}

// emit reports an event at progress p. A p of 0 keeps the previous value.
func (r *pipelineRun) emit(ctx context.Context, name, level string, p int, message string, data map[string]interface{}) {
	if p > 0 {
		r.progress = p
	}
	ev := dto.SearchEvent{
		Event:     name,
		RequestId: r.requestId,
		SessionId: r.sessionId,
		Progress:  r.progress,
		Level:     level,
		Message:   message,
		Data:      data,
	}
	r.deliver(ctx, ev)
	// blank pages are logged in streaming mode only
	if name == dto.EventScrapeEmpty && r.mode != modeStream {
		return
	}
	if r.svc.deps.Audit != nil {
		r.svc.deps.Audit.Log(ctx, level, r.sessionId, r.requestId, message, data)
	}
}

func (r *pipelineRun) deliver(ctx context.Context, ev dto.SearchEvent) {
	r.sink.Emit(ctx, ev)
	if r.svc.deps.Observer != nil {
		r.svc.deps.Observer.Emit(ctx, ev)
	}
}

func (s *smartSearchService) run(ctx context.Context, mode string, req dto.SmartSearchRequest, sink EventSink) (*dto.SmartSearchResponse, error) {
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	started := time.Now()
	r := &pipelineRun{svc: s, sink: sink, mode: mode, requestId: uuid.NewString(), sessionId: req.SessionId}

	ctx, span := tracer.Start(ctx, "smart_search.run", trace.WithAttributes(
		attribute.String("session_id", req.SessionId),
		attribute.String("request_id", r.requestId),
		attribute.String("mode", mode),
	))
	defer span.End()

	r.emit(ctx, dto.EventStart, entity.LogLevelInfo, 1, "smart_search start | session="+req.SessionId,
		map[string]interface{}{"query": req.Query})

	unlock := s.deps.Locks.Lock(req.SessionId)
	defer unlock()

	state, ok := s.deps.State.Get(ctx, req.SessionId)
	if !ok {
		state = entity.NewSearchState(req.SessionId)
	}
	r.emit(ctx, dto.EventStateLoaded, entity.LogLevelInfo, 3,
		fmt.Sprintf("state loaded | recent_turns=%d", len(state.Turns)),
		map[string]interface{}{"turn_count": len(state.Turns)})

	prefs := preference.Infer(req.Query, req.Request, s.deps.Now())
	r.emit(ctx, dto.EventPrefsInferred, entity.LogLevelInfo, 7, "prefs inferred",
		map[string]interface{}{"prefs": prefs})

	rewritten, usedQuery := s.rewrite(ctx, r, req.Query, prefs)

	r.emit(ctx, dto.EventSearchStarted, entity.LogLevelInfo, 0, "searching: "+usedQuery, nil)
	searchCtx, searchSpan := tracer.Start(ctx, "smart_search.search")
	res, err := s.deps.Searcher.Search(searchCtx, usedQuery)
	if err != nil {
		searchSpan.RecordError(err)
		searchSpan.End()
		return nil, s.fail(ctx, r, span, mode, req, err)
	}
	searchSpan.End()
	s.observeLatency(res.LatencyMs)
	r.emit(ctx, dto.EventSearchDone, entity.LogLevelInfo, 35,
		fmt.Sprintf("search latency: %d ms", res.LatencyMs),
		map[string]interface{}{"latency_ms": res.LatencyMs, "provider": s.deps.Searcher.Name()})

	urls := websearch.ExtractTopURLs(res.Raw, topURLCount)
	scraped := s.scrape(ctx, r, urls)

	combined := CombineContext(state.Turns, scraped)
	hasHistory := len(state.Turns) > 0
	r.emit(ctx, dto.EventCombineDone, entity.LogLevelInfo, 80,
		fmt.Sprintf("combine ready | total_chars=%d | has_history=%t", utf8.RuneCountInString(combined), hasHistory),
		map[string]interface{}{"total_chars": utf8.RuneCountInString(combined), "has_history": hasHistory})

	summary := s.summarize(ctx, r, combined, req.Query, prefs.TargetLanguage)

	turn := entity.SearchTurn{
		Id:             uuid.New(),
		SessionId:      req.SessionId,
		Timestamp:      s.deps.Now().UTC(),
		OriginalQuery:  req.Query,
		InferredPrefs:  prefs,
		RewrittenQuery: rewritten,
		UsedQuery:      usedQuery,
		Provider:       s.deps.Searcher.Name(),
		ResultMeta: entity.ResultMeta{
			TopUrls:   urls,
			LatencyMs: res.LatencyMs,
			Summary:   summary,
		},
	}
	turnCount := s.persist(ctx, r, state, turn)

	resp := &dto.SmartSearchResponse{
		RewrittenQuery: rewritten,
		UsedQuery:      usedQuery,
		Result:         res.Raw,
		Summary:        summary,
		StateMeta: dto.StateMeta{
			SessionId:     req.SessionId,
			TurnCount:     turnCount,
			LatestTopUrls: urls,
			LatencyMs:     res.LatencyMs,
		},
	}

	r.progress = 100
	r.deliver(ctx, dto.SearchEvent{
		Event:     dto.EventEnd,
		RequestId: r.requestId,
		SessionId: r.sessionId,
		Progress:  100,
		Level:     entity.LogLevelInfo,
		Message:   "smart_search done",
		Final:     resp,
	})

	if s.deps.Metrics != nil {
		s.deps.Metrics.Runs.WithLabelValues(mode, "ok").Inc()
		s.deps.Metrics.RunDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
	}
	return resp, nil
}

// rewrite never fails the run: on error the original query is used as is.
func (s *smartSearchService) rewrite(ctx context.Context, r *pipelineRun, query string, prefs preference.Preferences) (*string, string) {
	r.emit(ctx, dto.EventRewriteStarted, entity.LogLevelInfo, 0, "rewriting query", nil)

	ctx, span := tracer.Start(ctx, "smart_search.rewrite")
	defer span.End()

	out, err := s.deps.Rewriter.Rewrite(ctx, query, prefs)
	if err != nil {
		span.RecordError(err)
		s.stageFailed("rewrite")
		r.emit(ctx, dto.EventRewriteFailed, entity.LogLevelWarning, 15, "rewrite failed, fallback | "+err.Error(),
			map[string]interface{}{"error": err.Error()})
		return nil, query
	}

	out = strings.TrimSpace(out)
	used := query
	if out != "" {
		used = out
	}
	r.emit(ctx, dto.EventRewriteDone, entity.LogLevelInfo, 15, "rewrite done → "+used,
		map[string]interface{}{"rewritten_query": out, "used_query": used})
	return &out, used
}

func (s *smartSearchService) fail(ctx context.Context, r *pipelineRun, span trace.Span, mode string, req dto.SmartSearchRequest, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "web search failed")
	s.stageFailed("search")

	r.emit(ctx, dto.EventSearchFailed, entity.LogLevelError, 0, "search failed | "+err.Error(),
		map[string]interface{}{"error": err.Error()})
	r.deliver(ctx, dto.SearchEvent{
		Event:     dto.EventError,
		RequestId: r.requestId,
		SessionId: r.sessionId,
		Progress:  r.progress,
		Level:     entity.LogLevelError,
		Message:   "smart_search aborted",
		Error:     err.Error(),
	})

	if s.deps.Events != nil {
		evt := events.New(events.SearchTurnFailed, map[string]interface{}{
			"session_id": req.SessionId,
			"request_id": r.requestId,
			"query":      req.Query,
			"error":      err.Error(),
		})
		if pubErr := s.deps.Events.Publish(ctx, evt); pubErr != nil && s.deps.Audit != nil {
			s.deps.Audit.Log(ctx, entity.LogLevelWarning, r.sessionId, r.requestId, "Failed to publish failure event",
				map[string]interface{}{"error": pubErr.Error()})
		}
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.Runs.WithLabelValues(mode, "error").Inc()
	}
	return fmt.Errorf("%w: %w", ErrSearchFailed, err)
}

type scrapeOutcome struct {
	content string
	err     error
}

// scrape fetches all URLs concurrently and reports them in URL order.
// Failed and blank pages are skipped.
func (s *smartSearchService) scrape(ctx context.Context, r *pipelineRun, urls []string) []string {
	r.emit(ctx, dto.EventScrapeStarted, entity.LogLevelInfo, 40, fmt.Sprintf("top URLs: %v", urls),
		map[string]interface{}{"urls": urls})
	if len(urls) == 0 {
		return []string{}
	}

	ctx, span := tracer.Start(ctx, "smart_search.scrape", trace.WithAttributes(attribute.Int("url_count", len(urls))))
	defer span.End()

	outcomes := make([]scrapeOutcome, len(urls))
	var g errgroup.Group
	for i, url := range urls {
		g.Go(func() error {
			content, err := s.deps.Fetcher.FetchText(ctx, url)
			outcomes[i] = scrapeOutcome{content: content, err: err}
			return nil
		})
	}
	_ = g.Wait()

	step := 40 / len(urls)
	scraped := make([]string, 0, len(urls))
	for i, url := range urls {
		n := i + 1
		progress := min(40+n*step, 80)
		r.emit(ctx, dto.EventScrapeURL, entity.LogLevelInfo, 0, fmt.Sprintf("scraping [%d/%d]: %s", n, len(urls), url),
			map[string]interface{}{"url": url, "index": n, "total": len(urls)})

		out := outcomes[i]
		switch {
		case out.err != nil:
			s.scrapeResult("failed")
			r.emit(ctx, dto.EventScrapeFailed, entity.LogLevelError, progress, "scrape failed: "+url+" | "+out.err.Error(),
				map[string]interface{}{"url": url, "error": out.err.Error()})
		case strings.TrimSpace(out.content) == "":
			s.scrapeResult("empty")
			r.emit(ctx, dto.EventScrapeEmpty, entity.LogLevelWarning, progress, "empty content: "+url,
				map[string]interface{}{"url": url})
		default:
			s.scrapeResult("ok")
			scraped = append(scraped, out.content)
			for j, chunk := range utils.ChunkText(out.content, scrapePreviewSize) {
				if j >= scrapePreviewLimit {
					r.emit(ctx, dto.EventScrapeChunk, entity.LogLevelDebug, 0, "(truncated preview for "+url+")",
						map[string]interface{}{"url": url, "truncated": true})
					break
				}
				r.emit(ctx, dto.EventScrapeChunk, entity.LogLevelInfo, 0, fmt.Sprintf("%s · chunk %d", url, j+1),
					map[string]interface{}{"url": url, "chunk": j + 1, "text": chunk})
			}
			chars := utf8.RuneCountInString(out.content)
			r.emit(ctx, dto.EventScrapeDone, entity.LogLevelInfo, progress, fmt.Sprintf("scraped %s | chars=%d", url, chars),
				map[string]interface{}{"url": url, "chars": chars})
		}
	}
	return scraped
}

// summarize returns nil when the summarizer fails.
func (s *smartSearchService) summarize(ctx context.Context, r *pipelineRun, combined, title, language string) *string {
	r.emit(ctx, dto.EventSummarizeStart, entity.LogLevelInfo, 0, "summarizing", nil)

	ctx, span := tracer.Start(ctx, "smart_search.summarize")
	defer span.End()

	text, err := s.deps.Summarizer.Summarize(ctx, combined, summarize.Options{
		MaxWords:       s.cfg.SummaryMaxWords,
		Language:       language,
		Style:          summaryStyle,
		IncludeBullets: true,
		Title:          title,
	})
	if err != nil {
		span.RecordError(err)
		s.stageFailed("summarize")
		r.emit(ctx, dto.EventSummarizeFailed, entity.LogLevelError, 92, "summary failed | "+err.Error(),
			map[string]interface{}{"error": err.Error()})
		return nil
	}

	for k, chunk := range utils.ChunkText(text, summaryChunkSize) {
		r.emit(ctx, dto.EventSummaryChunk, entity.LogLevelInfo, 0, fmt.Sprintf("summary chunk %d", k+1),
			map[string]interface{}{"chunk": k + 1, "text": chunk})
	}
	r.emit(ctx, dto.EventSummarizeDone, entity.LogLevelInfo, 92, "summary done", nil)
	return &text
}

// persist appends turn to state, stores it and hands the turn to the turn
// log. It returns the session's turn count. Storage errors are reported but
// do not fail the run.
func (s *smartSearchService) persist(ctx context.Context, r *pipelineRun, state *entity.SearchState, turn entity.SearchTurn) int {
	state.Turns = append(state.Turns, turn)
	if limit := s.cfg.MaxRetainedTurns; limit > 0 && len(state.Turns) > limit {
		state.Turns = state.Turns[len(state.Turns)-limit:]
	}

	storeCtx := context.WithoutCancel(ctx)
	if err := s.deps.State.Set(storeCtx, state); err != nil {
		s.stageFailed("persist")
		r.emit(ctx, dto.EventPersisted, entity.LogLevelWarning, 0, "state persist failed | "+err.Error(),
			map[string]interface{}{"error": err.Error()})
	} else {
		r.emit(ctx, dto.EventPersisted, entity.LogLevelInfo, 0, "state persisted",
			map[string]interface{}{"turn_count": len(state.Turns), "turn_id": turn.Id.String()})
	}

	if s.deps.Turns != nil {
		payload, err := json.Marshal(turn)
		if err == nil {
			err = s.deps.Turns.Publish(storeCtx, payload)
		}
		if err != nil && s.deps.Audit != nil {
			s.deps.Audit.Log(ctx, entity.LogLevelWarning, r.sessionId, r.requestId, "Failed to publish turn",
				map[string]interface{}{"error": err.Error()})
		}
	}
	return len(state.Turns)
}

func (s *smartSearchService) stageFailed(stage string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.StageFailures.WithLabelValues(stage).Inc()
	}
}

func (s *smartSearchService) scrapeResult(result string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.ScrapedPages.WithLabelValues(result).Inc()
	}
}

func (s *smartSearchService) observeLatency(ms int64) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.SearchLatency.Observe(float64(ms))
	}
}
