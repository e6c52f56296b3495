package http

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/serkansentuna34/serkan-ai-api/internal/model"
)

// saveUpload streams one multipart file to the upload directory under a
// generated name and records it. Returns the public URL path.
func (s *Server) saveUpload(r *http.Request, userID string) (string, *model.UploadedFile, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	defer file.Close()
	return s.saveMultipartFile(r, userID, file, header)
}

func (s *Server) saveMultipartFile(r *http.Request, userID string, file multipart.File, header *multipart.FileHeader) (string, *model.UploadedFile, error) {
	ext := filepath.Ext(header.Filename)
	name := uuid.NewString() + strings.ToLower(ext)
	path := filepath.Join(s.cfg.UploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", nil, err
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(path)
		return "", nil, err
	}

	record := model.UploadedFile{
		Filename:     name,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         size,
		Path:         path,
		UploadedBy:   userID,
	}
	saved, err := s.store.CreateUploadedFile(r.Context(), record)
	if err != nil {
		os.Remove(path)
		return "", nil, err
	}
	return "/uploads/" + name, &saved, nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload")
		return
	}

	// Multi-file uploads arrive under "files"; a single file under "file".
	if headers := r.MultipartForm.File["files"]; len(headers) > 0 {
		type uploadResult struct {
			URL          string `json:"url"`
			Filename     string `json:"filename"`
			OriginalName string `json:"originalName"`
			Size         int64  `json:"size"`
		}
		results := make([]uploadResult, 0, len(headers))
		for _, header := range headers {
			file, err := header.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_upload")
				return
			}
			url, saved, err := s.saveMultipartFile(r, claims.UserID, file, header)
			file.Close()
			if err != nil {
				s.logger.Error("save upload", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "upload_failed")
				return
			}
			results = append(results, uploadResult{
				URL:          url,
				Filename:     saved.Filename,
				OriginalName: saved.OriginalName,
				Size:         saved.Size,
			})
		}
		writeJSON(w, http.StatusCreated, map[string]any{"files": results})
		return
	}

	url, saved, err := s.saveUpload(r, claims.UserID)
	if err != nil {
		s.logger.Error("save upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "upload_failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"url":          url,
		"filename":     saved.Filename,
		"originalName": saved.OriginalName,
		"size":         saved.Size,
	})
}

func (s *Server) handleUploadMaterial(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_upload")
		return
	}
	classID := r.FormValue("classId")
	title := strings.TrimSpace(r.FormValue("title"))
	if !validUUID(classID) || title == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	url, saved, err := s.saveUpload(r, claims.UserID)
	if err != nil {
		s.logger.Error("save material upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "upload_failed")
		return
	}

	material := model.CourseMaterial{
		ClassID:    classID,
		Title:      title,
		FileURL:    url,
		UploadedBy: &claims.UserID,
	}
	if desc := strings.TrimSpace(r.FormValue("description")); desc != "" {
		material.Description = &desc
	}
	if saved.MimeType != "" {
		material.FileType = &saved.MimeType
	}
	material.FileSize = &saved.Size

	created, err := s.store.CreateCourseMaterial(r.Context(), material)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      created.ID,
		"classId": created.ClassID,
		"title":   created.Title,
		"fileUrl": created.FileURL,
	})
}
