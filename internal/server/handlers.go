package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/latexify/internal/extract"
	"github.com/hyperjump/latexify/internal/llm"
	"github.com/hyperjump/latexify/internal/models"
	"github.com/hyperjump/latexify/internal/pipeline"
)

// multipartMemory is how much of an upload is held in memory before spilling to disk.
const multipartMemory = 8 << 20

type convertResponse struct {
	Latex string                `json:"latex"`
	Path  models.GenerationPath `json:"path"`
}

type editRequest struct {
	Latex        string `json:"latex"`
	Instructions string `json:"instructions"`
}

type editResponse struct {
	Latex string `json:"latex"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if s.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	s.logger.Debug("convert request",
		zap.String("name", name),
		zap.Int64("size", header.Size),
		zap.String("format", r.FormValue("format")))

	var opts []pipeline.RequestOption
	if title := r.FormValue("title"); title != "" {
		opts = append(opts, pipeline.WithTitle(title))
	}
	if instructions := r.FormValue("instructions"); instructions != "" {
		opts = append(opts, pipeline.WithInstructions(instructions))
	}

	doc, err := s.converter.ConvertUpload(r.Context(), name, file, r.FormValue("format"), opts...)
	if err != nil {
		s.respondConvertError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, convertResponse{Latex: doc.Source, Path: doc.Path})
}

func (s *Server) supportedFormats() string {
	formats := s.converter.Registry().Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func (s *Server) respondConvertError(w http.ResponseWriter, err error) {
	var unsupported *extract.UnsupportedFormatError
	var extraction *extract.ExtractionError
	switch {
	case errors.As(err, &unsupported):
		s.respondError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("%v (supported: %s)", err, s.supportedFormats()))
	case errors.As(err, &extraction):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("conversion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if s.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	}
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("edit request", zap.Int("latex_bytes", len(req.Latex)))

	doc, err := s.converter.EditDocument(r.Context(), req.Latex, req.Instructions)
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusOK, editResponse{Latex: doc.Source})
	case errors.Is(err, models.ErrEmptyInstructions), errors.Is(err, pipeline.ErrEmptyLatex):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, llm.ErrEditUnavailable):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("edit failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "API is working"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
