package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/csheth/edugenius/internal/assistant"
	"github.com/csheth/edugenius/internal/catalog"
	"github.com/csheth/edugenius/internal/history"
	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/markdown"
	"github.com/csheth/edugenius/internal/settings"
)

var errNoProvider = errors.New("no language model is configured")

type catalogResponse struct {
	Subjects  []catalog.Subject `json:"subjects"`
	Modes     []catalog.Mode    `json:"modes"`
	Languages []string          `json:"languages"`
	Ads       settings.AdConfig `json:"ads"`
	Provider  string            `json:"provider,omitempty"`
}

type askRequest struct {
	Subject  string `json:"subject"`
	Mode     string `json:"mode"`
	Language string `json:"language"`
	Query    string `json:"query"`
}

type renderRequest struct {
	Text string `json:"text"`
}

type answerResponse struct {
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	References []string        `json:"references,omitempty"`
	Blocks     markdown.Blocks `json:"blocks"`
	Outline    []outlineEntry  `json:"outline"`
	HTML       string          `json:"html"`
	TookMillis int64           `json:"tookMs"`
}

type renderResponse struct {
	Blocks  markdown.Blocks `json:"blocks"`
	Outline []outlineEntry  `json:"outline"`
	HTML    string          `json:"html"`
}

// outlineEntry points at a heading block so clients can jump between sections.
type outlineEntry struct {
	Line  int    `json:"line"`
	Level int    `json:"level"`
	Text  string `json:"text"`
}

func outline(blocks markdown.Blocks) []outlineEntry {
	entries := []outlineEntry{}
	for _, line := range blocks.Headings() {
		entries = append(entries, outlineEntry{
			Line:  line,
			Level: blocks[line].Level,
			Text:  blocks[line].Visible(),
		})
	}
	return entries
}

type historyResponse struct {
	Entries []history.Entry `json:"entries"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	current := s.cfg.Settings.Current()
	resp := catalogResponse{
		Subjects:  current.Subjects,
		Modes:     catalog.Modes(),
		Languages: catalog.Languages(),
		Ads:       current.Ads,
	}
	if s.cfg.LLM != nil {
		resp.Provider = s.cfg.LLM.Name()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var body askRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := s.buildRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	orch := s.orchestrator(w, r)
	if s.cfg.LLM == nil {
		writeError(w, http.StatusServiceUnavailable, errNoProvider)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.AskTimeout)
	defer cancel()
	result, err := orch.Submit(ctx, req)
	switch {
	case errors.Is(err, assistant.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, assistant.ErrBusy):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, errors.New(orch.Snapshot().Message))
		return
	}

	page, err := markdown.HTML(result.Blocks)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("render answer: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Title:      result.Response.Title,
		Content:    result.Response.Content,
		References: result.Response.References,
		Blocks:     result.Blocks,
		Outline:    outline(result.Blocks),
		HTML:       page,
		TookMillis: result.Took.Milliseconds(),
	})
}

// buildRequest fills unset selections with the defaults the terminal starts
// with and rejects values outside the catalog.
func (s *Server) buildRequest(body askRequest) (llm.Request, error) {
	current := s.cfg.Settings.Current()
	req := llm.Request{
		Subject:  strings.TrimSpace(body.Subject),
		Mode:     catalog.DefaultMode,
		Language: catalog.DefaultLanguage,
		Query:    body.Query,
	}
	if req.Subject == "" {
		if req.Subject = current.FallbackSubject(catalog.DefaultSubject); req.Subject == "" {
			return llm.Request{}, errors.New("no subjects are configured")
		}
	} else if _, ok := current.Subject(req.Subject); !ok {
		return llm.Request{}, fmt.Errorf("unknown subject %q", req.Subject)
	}
	if strings.TrimSpace(body.Mode) != "" {
		mode, err := catalog.ParseMode(body.Mode)
		if err != nil {
			return llm.Request{}, err
		}
		req.Mode = mode
	}
	if strings.TrimSpace(body.Language) != "" {
		lang, err := catalog.ParseLanguage(body.Language)
		if err != nil {
			return llm.Request{}, err
		}
		req.Language = lang
	}
	req.Material = s.cfg.Material.ForMode(req.Mode)
	return req, nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var body renderRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	blocks := markdown.RenderWith(body.Text, s.cfg.RenderOptions)
	page, err := markdown.HTML(blocks)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("render text: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{Blocks: blocks, Outline: outline(blocks), HTML: page})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := historyPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	if s.cfg.History == nil {
		writeJSON(w, http.StatusOK, historyResponse{Entries: []history.Entry{}})
		return
	}
	entries, err := s.cfg.History.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("load history: %w", err))
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries})
}
