// Package api exposes the assistant as synchronous HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"map-assistant/internal/domain"
)

const (
	maxAudioBytes = 10 * 1024 * 1024
	maxTextBytes  = 4096
)

// Service is the part of application.Service the handlers need.
type Service interface {
	Transcribe(ctx context.Context, audio []byte) (domain.TranscribeResult, error)
	ParseText(text string) domain.TranscribeResult
	Wakeup(ctx context.Context, audio []byte) (bool, error)
}

// Mux is satisfied by *audio.HTTPSource and by adapters around http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.HandlerFunc)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux Mux) {
	mux.Handle("POST /transcribe", h.handleTranscribe)
	mux.Handle("POST /parse", h.handleParse)
	mux.Handle("POST /wakeup", h.handleWakeup)
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	audio, ok := readAudio(w, r)
	if !ok {
		return
	}

	result, err := h.service.Transcribe(r.Context(), audio)
	if err != nil {
		h.logger.Error("transcribe failed", "error", err)
		writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type parseRequest struct {
	Text string `json:"text"`
}

// handleParse accepts either a plain text body or {"text": "..."}.
func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r, maxTextBytes)
	if !ok {
		return
	}

	text := string(body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req parseRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		text = req.Text
	}

	writeJSON(w, http.StatusOK, h.service.ParseText(text))
}

func (h *Handler) handleWakeup(w http.ResponseWriter, r *http.Request) {
	audio, ok := readAudio(w, r)
	if !ok {
		return
	}

	// Classifier failures answer false rather than an error status.
	detected, err := h.service.Wakeup(r.Context(), audio)
	if err != nil {
		h.logger.Warn("wake word detection failed", "error", err)
		detected = false
	}

	writeJSON(w, http.StatusOK, map[string]bool{"wakeup": detected})
}

// readAudio takes the clip from the "file" field of a multipart upload, or
// the raw body otherwise.
func readAudio(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return readBody(w, r, maxAudioBytes)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	data, err := readFormFile(r, "file")
	if err != nil {
		writeReadError(w, err)
		return nil, false
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty file")
		return nil, false
	}
	return data, true
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("reading form file %q: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading form file %q: %w", field, err)
	}
	return data, nil
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	defer r.Body.Close()

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		writeReadError(w, err)
		return nil, false
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty body")
		return nil, false
	}
	return data, true
}

func writeReadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", maxErr.Limit))
		return
	}
	if errors.Is(err, http.ErrMissingFile) {
		writeError(w, http.StatusBadRequest, `missing "file" field`)
		return
	}
	writeError(w, http.StatusBadRequest, "failed to read body")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
