// Package server owns the table rendering HTTP server and the process-wide
// manager that keeps exactly one instance of it alive.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/openrend/rend/internal/table"
)

// Server serves published table documents over HTTP. Routes:
//
//	GET  /healthz                 liveness check used by the startup poll
//	POST /api/tables              publish a document, returns its route
//	GET  /api/tables/{id}         document as JSON
//	GET  /api/tables/{id}/status  whether the table page has been fetched
//	GET  /t/{id}                  rendered table page
type Server struct {
	logger *slog.Logger

	mu      sync.Mutex
	docs    map[string]*table.Document
	fetched map[string]bool
}

func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:  logger,
		docs:    make(map[string]*table.Document),
		fetched: make(map[string]bool),
	}
}

// Handler returns the server's route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/tables", s.handlePublish)
	mux.HandleFunc("GET /api/tables/{id}", s.handleDocument)
	mux.HandleFunc("GET /api/tables/{id}/status", s.handleStatus)
	mux.HandleFunc("GET /t/{id}", s.handleTable)
	return mux
}

// ListenAndServe binds the listener and serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, host string, port int) error {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not bind %s: %w", addr, err)
	}

	srv := &http.Server{Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("table server listening", "addr", addr)

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Publish stores a document under a fresh route and returns its path.
// Ragged rows are normalized to the column count first.
func (s *Server) Publish(doc *table.Document) string {
	width := len(doc.Layout.Columns)
	for i, row := range doc.Rows {
		if len(row) == width {
			continue
		}
		normalized := make([]string, width)
		copy(normalized, row)
		doc.Rows[i] = normalized
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.docs[id] = doc
	s.mu.Unlock()
	s.logger.Debug("published table", "id", id, "title", doc.Layout.Title)
	return "/t/" + id
}

func (s *Server) document(id string) (*table.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	return doc, ok
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var doc table.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, fmt.Sprintf("invalid table document: %v", err), http.StatusBadRequest)
		return
	}
	path := s.Publish(&doc)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"path": path})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	_, known := s.docs[id]
	fetched := s.fetched[id]
	s.mu.Unlock()
	if !known {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"fetched": fetched})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, ok := s.document(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	// Serving the page is the render-complete signal the parent process
	// waits for before tearing the server down.
	s.mu.Lock()
	s.fetched[id] = true
	s.mu.Unlock()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tablePage.Execute(w, doc); err != nil {
		s.logger.Error("render failed", "err", err)
	}
}

var tablePage = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Layout.Title}}</title>
<style>
body { font-family: sans-serif; padding: 5px; }
h1 { font-size: x-large; font-weight: normal; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid grey; padding: 4px; font-size: {{.Layout.FontSizePX}}px; }
th { background: rgb(180, 180, 180); }
tr { height: {{.Layout.RowHeightPX}}px; }
tr:nth-child(odd) td { background: rgb(230, 230, 230); }
td.num { text-align: right; }
td.clip { overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
</style>
</head>
<body>
<h1 title="{{.Layout.Description}}">{{.Layout.Title}}</h1>
<table>
<thead><tr>
{{- range .Layout.Columns}}
<th title="{{.Tooltip}}" style="min-width: {{.WidthPX}}px">{{.Name}}</th>
{{- end}}
</tr></thead>
<tbody>
{{- $cols := .Layout.Columns}}
{{- range .Rows}}
<tr>
{{- range $i, $cell := .}}
{{- $col := index $cols $i}}
<td class="{{if not $col.AlignLeft}}num {{end}}{{if not $col.Wrap}}clip{{end}}">{{$cell}}</td>
{{- end}}
</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))
