package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/pkg/serverutils"
)

// apiClient talks to a running REST server.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		// streaming runs can take a while; the context bounds them instead
		http: &http.Client{Timeout: 0},
	}
}

func (c *apiClient) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do sends the request and decodes the envelope's data into out.
func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope serverutils.Response
	envelope.Data = out
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if !envelope.Success {
		return fmt.Errorf("server error %d: %s", envelope.Code, envelope.Message)
	}
	return nil
}

func (c *apiClient) Search(ctx context.Context, req dto.SmartSearchRequest) (*dto.SmartSearchResponse, error) {
	var out dto.SmartSearchResponse
	if err := c.do(ctx, http.MethodPost, "/api/search/v1/smart-search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchStream posts to the SSE endpoint and calls onEvent for each frame.
// It returns the final result carried by the end event.
func (c *apiClient) SearchStream(ctx context.Context, req dto.SmartSearchRequest, onEvent func(dto.SearchEvent)) (*dto.SmartSearchResponse, error) {
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/search/v1/smart-search/stream", req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope serverutils.Response
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, envelope.Message)
	}
	return readStream(resp.Body, onEvent)
}

func readStream(body io.Reader, onEvent func(dto.SearchEvent)) (*dto.SmartSearchResponse, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		payload, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var ev dto.SearchEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return nil, fmt.Errorf("bad event frame: %w", err)
		}
		onEvent(ev)

		switch ev.Event {
		case dto.EventEnd:
			return ev.Final, nil
		case dto.EventError:
			return nil, fmt.Errorf("pipeline failed: %s", ev.Error)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("stream ended without a result")
}

func (c *apiClient) GetContext(ctx context.Context, sessionId string) (*dto.ContextResponse, error) {
	var out dto.ContextResponse
	if err := c.do(ctx, http.MethodGet, "/api/search/v1/context/"+url.PathEscape(sessionId), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) ClearContext(ctx context.Context, sessionId string) (*dto.ClearContextResponse, error) {
	var out dto.ClearContextResponse
	if err := c.do(ctx, http.MethodDelete, "/api/search/v1/context/"+url.PathEscape(sessionId), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func timeoutContext(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}
