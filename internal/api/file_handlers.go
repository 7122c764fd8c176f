package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"datashare-backend/internal/auth"
	"datashare-backend/internal/database"
	"datashare-backend/internal/models"
	"datashare-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxFileSize = 100 << 20 // 100 MiB

type UploadResponse struct {
	Message        string    `json:"message"`
	FileID         int64     `json:"fileId"`
	FileName       string    `json:"fileName"`
	DownloadLink   string    `json:"downloadLink"`
	ExpirationDate time.Time `json:"expirationDate"`
}

func (s *Server) downloadLink(r *http.Request, fileID int64) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/v1/files/download/%d", scheme, r.Host, fileID)
}

// @Summary      Upload a file
// @Description  Stores the file under an opaque generated name and records its metadata. The expiration date must be in the future; an optional password protects downloads.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file          formData  file    true   "File content"
// @Param        idUser        formData  int     true   "Owner's user id"
// @Param        endDate       formData  string  true   "Expiration date (RFC 3339)"
// @Param        filePassword  formData  string  false  "Optional download password"
// @Success      200  {object}  UploadResponse
// @Failure      400  {object}  MessageResponse
// @Failure      500  {object}  MessageResponse
// @Router       /files/upload [post]
func (s *Server) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+(1<<20))

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "error parsing multipart form")
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file was provided")
		return
	}
	defer file.Close()

	if handler.Size == 0 {
		respondError(w, http.StatusBadRequest, "no file was provided")
		return
	}
	if handler.Size > maxFileSize {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("file is too large, maximum size is %d MB", maxFileSize/(1<<20)))
		return
	}

	ownerID, err := strconv.ParseInt(r.FormValue("idUser"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	expiresAt, err := time.Parse(time.RFC3339, r.FormValue("endDate"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid end date, expected RFC 3339")
		return
	}

	exists, err := s.store.UserExists(r.Context(), ownerID)
	if err != nil {
		log.Printf("ERROR: owner lookup failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to upload file")
		return
	}
	if !exists {
		respondError(w, http.StatusBadRequest, "user not found")
		return
	}

	if !expiresAt.After(time.Now()) {
		respondError(w, http.StatusBadRequest, "end date must be in the future")
		return
	}

	// Opaque storage key: random UUID plus the original extension. The
	// display name never reaches the filesystem.
	storedName := uuid.NewString() + filepath.Ext(handler.Filename)

	// Blob write then row insert, best effort: a failed insert leaves an
	// orphaned blob behind, which is harmless.
	if err := s.storage.Save(storedName, file); err != nil {
		log.Printf("ERROR: failed to save blob %s: %v", storedName, err)
		respondError(w, http.StatusInternalServerError, "failed to save file")
		return
	}

	var passwordDigest *string
	if password := r.FormValue("filePassword"); password != "" {
		digest := auth.HashPassword(password)
		passwordDigest = &digest
	}

	record, err := s.store.CreateFile(r.Context(), database.CreateFileParams{
		OwnerID:      ownerID,
		FileName:     handler.Filename,
		StoredName:   storedName,
		PasswordHash: passwordDigest,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		log.Printf("ERROR: failed to create file record: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create file record")
		return
	}

	s.wsHub.PublishFileEvent(ownerID, websocket.FileEvent{
		Type:     websocket.EventFileUploaded,
		FileID:   record.ID,
		FileName: record.FileName,
	})

	respondJSON(w, http.StatusOK, UploadResponse{
		Message:        "file uploaded successfully",
		FileID:         record.ID,
		FileName:       record.FileName,
		DownloadLink:   s.downloadLink(r, record.ID),
		ExpirationDate: record.ExpiresAt,
	})
}

// @Summary      Download a file
// @Description  Streams the file content. Expired files are rejected; password-protected files require the password query parameter.
// @Tags         files
// @Produce      octet-stream
// @Param        id        path   int     true   "File ID"
// @Param        password  query  string  false  "File password"
// @Success      200  {file}    file
// @Failure      400  {object}  MessageResponse
// @Failure      401  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Router       /files/download/{id} [get]
func (s *Server) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	record, err := s.store.GetFileByID(r.Context(), fileID)
	if err != nil {
		log.Printf("ERROR: file lookup failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to download file")
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, "file not found or deleted")
		return
	}

	if record.IsExpired(time.Now()) {
		respondError(w, http.StatusBadRequest, "this file has expired")
		return
	}

	if record.PasswordHash != nil {
		password := r.URL.Query().Get("password")
		if password == "" {
			respondError(w, http.StatusUnauthorized, "a password is required to download this file")
			return
		}
		if !auth.CheckPasswordHash(password, *record.PasswordHash) {
			respondError(w, http.StatusUnauthorized, "password incorrect")
			return
		}
	}

	// A row without its blob is a consistency violation; answer 404
	// instead of surfacing a raw filesystem error.
	blob, err := s.storage.Get(record.StoredName)
	if err != nil {
		log.Printf("ERROR: blob %s missing for file %d: %v", record.StoredName, record.ID, err)
		respondError(w, http.StatusNotFound, "file content is missing on the server")
		return
	}
	defer blob.Close()

	contentType := mime.TypeByExtension(filepath.Ext(record.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	// FormatMediaType quotes and escapes the display name, so quotes or
	// non-ASCII in it cannot corrupt the header.
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": record.FileName}))
	if _, err := io.Copy(w, blob); err != nil {
		log.Printf("ERROR: failed to stream blob %s for file %d: %v", record.StoredName, record.ID, err)
	}
}

type FileOwnerInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type FileInfoResponse struct {
	ID             int64         `json:"id"`
	FileName       string        `json:"fileName"`
	HasPassword    bool          `json:"hasPassword"`
	CreationDate   time.Time     `json:"creationDate"`
	ExpirationDate time.Time     `json:"expirationDate"`
	IsExpired      bool          `json:"isExpired"`
	UploadedBy     FileOwnerInfo `json:"uploadedBy"`
}

// @Summary      Get file metadata
// @Description  Returns the file's metadata, including whether a password is required. The digest itself is never exposed.
// @Tags         files
// @Produce      json
// @Param        id   path      int  true  "File ID"
// @Success      200  {object}  FileInfoResponse
// @Failure      404  {object}  MessageResponse
// @Router       /files/{id} [get]
func (s *Server) GetFileInfoHandler(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	record, err := s.store.GetFileWithOwner(r.Context(), fileID)
	if err != nil {
		log.Printf("ERROR: file lookup failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch file info")
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, "file not found")
		return
	}

	respondJSON(w, http.StatusOK, FileInfoResponse{
		ID:             record.ID,
		FileName:       record.FileName,
		HasPassword:    record.PasswordHash != nil,
		CreationDate:   record.CreatedAt,
		ExpirationDate: record.ExpiresAt,
		IsExpired:      record.IsExpired(time.Now()),
		UploadedBy: FileOwnerInfo{
			ID:    record.OwnerID,
			Email: record.OwnerEmail,
		},
	})
}

type FileListEntry struct {
	ID             int64     `json:"id"`
	FileName       string    `json:"fileName"`
	CreationDate   time.Time `json:"creationDate"`
	ExpirationDate time.Time `json:"expirationDate"`
	IsExpired      bool      `json:"isExpired"`
	HasPassword    bool      `json:"hasPassword"`
	DownloadLink   string    `json:"downloadLink"`
}

// @Summary      List a user's files
// @Description  Returns the user's non-deleted files, newest first. An empty list is a normal result.
// @Tags         files
// @Produce      json
// @Param        userId  path      int  true  "Owner's user id"
// @Success      200  {array}   FileListEntry
// @Failure      500  {object}  MessageResponse
// @Router       /files/user/{userId} [get]
func (s *Server) ListUserFilesHandler(w http.ResponseWriter, r *http.Request) {
	ownerID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	files, err := s.store.ListFilesByOwner(r.Context(), ownerID)
	if err != nil {
		log.Printf("ERROR: file listing failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list files")
		return
	}

	now := time.Now()
	entries := make([]FileListEntry, 0, len(files))
	for i := range files {
		entries = append(entries, toListEntry(&files[i], now, s.downloadLink(r, files[i].ID)))
	}

	respondJSON(w, http.StatusOK, entries)
}

func toListEntry(f *models.File, now time.Time, link string) FileListEntry {
	return FileListEntry{
		ID:             f.ID,
		FileName:       f.FileName,
		CreationDate:   f.CreatedAt,
		ExpirationDate: f.ExpiresAt,
		IsExpired:      f.IsExpired(now),
		HasPassword:    f.PasswordHash != nil,
		DownloadLink:   link,
	}
}

// @Summary      Delete a file
// @Description  Soft-deletes the file. Only the owner may delete; the stored blob is kept on disk.
// @Tags         files
// @Produce      json
// @Param        id      path   int  true  "File ID"
// @Param        userId  query  int  true  "Requester's user id"
// @Success      200  {object}  MessageResponse
// @Failure      403  {object}  MessageResponse
// @Failure      404  {object}  MessageResponse
// @Router       /files/{id} [delete]
func (s *Server) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid file id")
		return
	}

	requesterID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	err = s.store.SoftDeleteFile(r.Context(), fileID, requesterID)
	switch {
	case errors.Is(err, database.ErrFileNotFound):
		respondError(w, http.StatusNotFound, "file not found")
		return
	case errors.Is(err, database.ErrNotFileOwner):
		respondError(w, http.StatusForbidden, "only the owner can delete this file")
		return
	case err != nil:
		log.Printf("ERROR: failed to delete file %d: %v", fileID, err)
		respondError(w, http.StatusInternalServerError, "failed to delete file")
		return
	}

	s.wsHub.PublishFileEvent(requesterID, websocket.FileEvent{
		Type:   websocket.EventFileDeleted,
		FileID: fileID,
	})

	respondJSON(w, http.StatusOK, MessageResponse{Message: "file deleted successfully"})
}
