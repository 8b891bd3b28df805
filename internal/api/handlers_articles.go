package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jmertens/pmcminer/internal/article"
)

// articleResponse is the synchronous parse result for one article.
type articleResponse struct {
	Title           string                  `json:"title"`
	Journal         string                  `json:"journal"`
	Volume          string                  `json:"volume"`
	FirstPage       string                  `json:"first_page"`
	LastPage        string                  `json:"last_page"`
	PMCID           string                  `json:"pmc_id"`
	PubmedID        string                  `json:"pubmed_id"`
	PublicationDate article.PublicationDate `json:"publication_date"`
	Authors         []article.Author        `json:"authors"`
	Figures         []article.Figure        `json:"figures"`
	Tables          []article.Table         `json:"tables"`
	References      []article.Reference     `json:"references"`
	Abstract        []*article.Sentence     `json:"abstract"`
	FullText        []*article.Sentence     `json:"full_text"`
}

// handleParseArticle parses an uploaded NXML/HTML article synchronously
// and returns its metadata and sentence records.
func (s *Server) handleParseArticle(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	var art *article.Article
	var err error
	if isHTMLName(filename) {
		art, err = article.ParseHTML(bytes.NewReader(data))
	} else {
		art, err = article.Parse(bytes.NewReader(data))
	}
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := articleResponse{
		Title:           art.Title(),
		Journal:         art.Journal(),
		Volume:          art.Volume(),
		FirstPage:       art.FirstPage(),
		LastPage:        art.LastPage(),
		PMCID:           art.PMCID(),
		PubmedID:        art.PubmedID(),
		PublicationDate: art.PublicationDate(),
		Authors:         art.Authors(),
		Figures:         art.Figures(),
		Tables:          art.Tables(),
		References:      art.References(),
		Abstract:        art.Abstract(),
		FullText:        art.FullText(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// readUpload reads the multipart "file" field within the configured size
// limit. On failure it writes the error response and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (data []byte, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	data, ok = s.readLimited(w, file, header)
	if !ok {
		return nil, "", false
	}
	return data, sanitizeFilename(header.Filename), true
}

func (s *Server) readLimited(w http.ResponseWriter, file multipart.File, header *multipart.FileHeader) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return data, true
}

func isHTMLName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
