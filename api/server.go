// Package api exposes the extraction pipeline over HTTP. This is a
// capability module that can be enabled via the CLI or used
// programmatically.
package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/expenseatlas/atlas/extractor"
	"github.com/expenseatlas/atlas/extractor/common"
)

// Config holds the API server configuration
type Config struct {
	Port      string
	LogPrefix string
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:      ":8080",
		LogPrefix: "API: ",
	}
}

// Server represents the HTTP API server
type Server struct {
	config    Config
	processor *extractor.Processor
	mux       *http.ServeMux
}

// New creates a new API server around a processor
func New(cfg Config, processor *extractor.Processor) *Server {
	s := &Server{
		config:    cfg,
		processor: processor,
		mux:       http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/extract", s.handleExtract)
	s.mux.HandleFunc("/categorize", s.handleCategorize)
	s.mux.HandleFunc("/health", s.handleHealth)
}

// Handler returns the http.Handler for the server.
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	log.Printf("%sStarting server on %s", s.config.LogPrefix, s.config.Port)
	return http.ListenAndServe(s.config.Port, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleExtract accepts a statement as a multipart file upload ("file",
// PDF or plain text/CSV) or as a raw "text" form value, and returns the
// extraction result as JSON.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	log.Printf("%sReceived request from %s", s.config.LogPrefix, r.RemoteAddr)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form with 32MB max memory
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Printf("%sError parsing multipart form: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := extractor.Format(firstNonEmpty(r.FormValue("format"), r.URL.Query().Get("format")))

	text := r.FormValue("text")
	if text == "" {
		file, handler, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "Provide a 'file' upload or a 'text' form value", http.StatusBadRequest)
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(handler.Filename))
		if ext == ".pdf" {
			text, err = common.ExtractTextFromPDFReader(file)
			if err != nil {
				log.Printf("%sError extracting PDF text: %v", s.config.LogPrefix, err)
				http.Error(w, "Could not extract text from PDF: "+err.Error(), http.StatusBadRequest)
				return
			}
			if format == extractor.FormatUnknown {
				format = extractor.FormatPDF
			}
		} else {
			raw, err := io.ReadAll(file)
			if err != nil {
				http.Error(w, "Could not read file: "+err.Error(), http.StatusInternalServerError)
				return
			}
			text = string(raw)
			if format == extractor.FormatUnknown && ext == ".csv" {
				format = extractor.FormatCSV
			}
		}
	}

	result, err := s.processor.Extract(r.Context(), text, format)
	if err != nil {
		log.Printf("%sExtraction failed: %v", s.config.LogPrefix, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

type categorizeResponse struct {
	Results []categorizedItem `json:"results"`
}

type categorizedItem struct {
	Index      int     `json:"index"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// handleCategorize accepts a JSON array of transactions and categorizes
// them sequentially against the model. Client disconnect cancels the
// stream; results already produced are not retracted.
func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var items []extractor.Item
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		http.Error(w, "Could not decode request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var resp categorizeResponse
	for result := range s.processor.CategorizeStream(r.Context(), items) {
		item := categorizedItem{
			Index:      result.Index,
			Category:   string(result.Category),
			Confidence: result.Confidence,
			Reasoning:  result.Reasoning,
		}
		if result.Err != nil {
			item.Error = result.Err.Error()
		}
		resp.Results = append(resp.Results, item)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
