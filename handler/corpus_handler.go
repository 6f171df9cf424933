package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tieubaoca/questbot-be/service"
	"github.com/tieubaoca/questbot-be/types"
)

const maxUploadSize = 50 << 20

// CorpusHandler exposes the corpus manager over HTTP: list, upload,
// select/deselect and deletion.
type CorpusHandler struct {
	corpus   *service.CorpusService
	sessions *service.SessionStore
}

func NewCorpusHandler(corpus *service.CorpusService, sessions *service.SessionStore) *CorpusHandler {
	return &CorpusHandler{
		corpus:   corpus,
		sessions: sessions,
	}
}

func (h *CorpusHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	resolveSession(h.sessions, w, r)
	names, err := h.corpus.ListFileNames(r.Context())
	if err != nil {
		sendError(w, "List failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, types.ListFilesResponse{Files: names})
}

// HandleUpload ingests one or more corpus files from a multipart form.
// Files whose names collide with existing corpus entries replace them.
func (h *CorpusHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	resolveSession(h.sessions, w, r)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		sendError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		sendError(w, "No files provided", http.StatusBadRequest)
		return
	}

	tmpDir, err := os.MkdirTemp("", "corpus-upload-")
	if err != nil {
		sendError(w, "Upload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(tmpDir)

	var files []types.IngestFile
	for _, header := range headers {
		path, err := saveUpload(header, tmpDir)
		if err != nil {
			sendError(w, "Upload failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		files = append(files, types.IngestFile{Name: filepath.Base(header.Filename), Path: path})
	}

	if err := h.corpus.Upload(r.Context(), files); err != nil {
		sendError(w, "Upload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	names, err := h.corpus.ListFileNames(r.Context())
	if err != nil {
		sendError(w, "List failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, types.ListFilesResponse{Files: names})
}

func (h *CorpusHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	session := resolveSession(h.sessions, w, r)
	var req types.SelectFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	session.SetSelectedFile(req.FileName)
	sendSuccess(w, types.SelectFileRequest{FileName: req.FileName})
}

func (h *CorpusHandler) HandleDeselect(w http.ResponseWriter, r *http.Request) {
	session := resolveSession(h.sessions, w, r)
	session.ClearSelection()
	sendSuccess(w, nil)
}

func (h *CorpusHandler) HandleDeleteSelected(w http.ResponseWriter, r *http.Request) {
	session := resolveSession(h.sessions, w, r)
	if session.SelectedFile() == "" {
		sendError(w, "No file selected", http.StatusBadRequest)
		return
	}
	if err := h.corpus.DeleteSelected(r.Context(), session); err != nil {
		sendError(w, "Delete failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	names, err := h.corpus.ListFileNames(r.Context())
	if err != nil {
		sendError(w, "List failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, types.ListFilesResponse{Files: names})
}

func (h *CorpusHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	session := resolveSession(h.sessions, w, r)
	if err := h.corpus.DeleteAll(r.Context(), session); err != nil {
		sendError(w, "Delete failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, types.ListFilesResponse{Files: nil})
}

// saveUpload copies one multipart file into dir under its base name.
func saveUpload(header *multipart.FileHeader, dir string) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, filepath.Base(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}
