package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mpavel/diffscope/internal/analyze"
	"github.com/mpavel/diffscope/internal/diff"
	"github.com/mpavel/diffscope/internal/github"
	"github.com/mpavel/diffscope/internal/rules"
)

// Fetcher retrieves pull request data. Satisfied by *github.Client.
type Fetcher interface {
	GetPRDiff(ctx context.Context, owner, repo string, prNumber int) (string, error)
	GetPR(ctx context.Context, owner, repo string, prNumber int) (*github.PR, error)
}

// Server is the HTTP UI: a paste form, an HTML report, a JSON API, and a
// Prometheus scrape endpoint.
type Server struct {
	analyzer *analyze.Analyzer
	fetcher  Fetcher
	mux      *http.ServeMux
	tmpl     *template.Template
	metrics  *metrics
	log      *slog.Logger
}

// New creates a server over the given analyzer and embedded assets. The
// fetcher may be nil, in which case PR URLs are rejected with a clear error.
func New(analyzer *analyze.Analyzer, fetcher Fetcher, assets fs.FS, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"scoreClass": scoreClass,
	}).ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		analyzer: analyzer,
		fetcher:  fetcher,
		mux:      http.NewServeMux(),
		tmpl:     tmpl,
		metrics:  newMetrics(),
		log:      log,
	}
	s.routes(assets)
	return s, nil
}

// Handler returns the http.Handler (useful for testing).
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes(assets fs.FS) {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /review", s.handleReview)
	s.mux.HandleFunc("POST /api/review", s.handleAPIReview)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", s.metrics.handler())
	s.mux.Handle("GET /static/", http.FileServerFS(assets))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, "")
}

func (s *Server) renderIndex(w http.ResponseWriter, errMsg string) {
	if err := s.tmpl.ExecuteTemplate(w, "index.html", struct{ Error string }{errMsg}); err != nil {
		s.log.Error("rendering index", "error", err)
	}
}

// handleReview accepts either a GitHub PR URL or pasted diff text in the
// "source" form field and renders the HTML report.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimSpace(r.FormValue("source"))
	if source == "" {
		s.renderIndex(w, "Paste a PR URL or diff text first.")
		return
	}

	diffText := source
	sourceLabel := "local diff"
	title := ""

	if strings.HasPrefix(source, "https://github.com/") {
		owner, repo, number, err := github.ParsePRURL(source)
		if err != nil {
			s.renderIndex(w, err.Error())
			return
		}
		if s.fetcher == nil {
			s.renderIndex(w, "PR fetching is not configured on this server.")
			return
		}
		diffText, err = s.fetcher.GetPRDiff(r.Context(), owner, repo, number)
		if err != nil {
			s.log.Warn("fetching PR diff", "error", err)
			s.renderIndex(w, fmt.Sprintf("Could not fetch PR: %v", err))
			return
		}
		sourceLabel = fmt.Sprintf("%s/%s #%d", owner, repo, number)
		if pr, err := s.fetcher.GetPR(r.Context(), owner, repo, number); err == nil {
			title = pr.Title
		}
	}

	report, err := s.runAnalysis(diffText)
	if err != nil {
		var merr *diff.MalformedError
		if errors.As(err, &merr) {
			s.renderIndex(w, fmt.Sprintf("Not a valid unified diff: %v", merr))
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := reportData(report, sourceLabel, title)
	if err := s.tmpl.ExecuteTemplate(w, "report.html", data); err != nil {
		s.log.Error("rendering report", "error", err)
	}
}

// handleAPIReview analyzes a raw diff posted as the request body and returns
// the full report as JSON.
func (s *Server) handleAPIReview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "reading request body", http.StatusBadRequest)
		return
	}

	report, err := s.runAnalysis(string(body))
	if err != nil {
		var merr *diff.MalformedError
		if errors.As(err, &merr) {
			writeJSONError(w, http.StatusUnprocessableEntity, merr.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		s.log.Error("encoding report", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) runAnalysis(text string) (*analyze.Report, error) {
	start := time.Now()
	report, err := s.analyzer.Analyze(text)
	s.metrics.observe(report, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.log.Info("analysis complete",
		"files", report.Summary.Files,
		"findings", report.Summary.Total,
		"score", report.Score.Overall,
	)
	return report, nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// fileView is the per-file card the report template renders.
type fileView struct {
	Path     string
	Kind     diff.ChangeKind
	Added    int
	Removed  int
	Score    float64
	Findings []rules.Finding
	Patch    string
}

type reportView struct {
	Source string
	Title  string
	Report *analyze.Report
	Files  []fileView
}

func reportData(report *analyze.Report, source, title string) reportView {
	byPath := make(map[string][]rules.Finding)
	for _, f := range report.Findings {
		byPath[f.Path] = append(byPath[f.Path], f)
	}

	files := make([]fileView, 0, len(report.Model.Files))
	for i := range report.Model.Files {
		fc := &report.Model.Files[i]
		files = append(files, fileView{
			Path:     fc.Path(),
			Kind:     fc.Kind,
			Added:    fc.AddedCount(),
			Removed:  fc.RemovedCount(),
			Score:    report.Score.PerFile[fc.Path()],
			Findings: byPath[fc.Path()],
			Patch:    renderPatch(fc),
		})
	}

	return reportView{Source: source, Title: title, Report: report, Files: files}
}

// renderPatch re-serializes a file change back into unified hunk text for
// display.
func renderPatch(fc *diff.FileChange) string {
	if len(fc.Hunks) == 0 {
		return ""
	}
	var b strings.Builder
	for _, h := range fc.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, l := range h.Lines {
			switch l.Kind {
			case diff.LineAdded:
				b.WriteString("+")
			case diff.LineRemoved:
				b.WriteString("-")
			default:
				b.WriteString(" ")
			}
			b.WriteString(l.Content)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func scoreClass(score float64) string {
	switch {
	case score >= 80:
		return "score-good"
	case score >= 50:
		return "score-mid"
	default:
		return "score-bad"
	}
}
