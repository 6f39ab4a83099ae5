package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/intervue/intervue-backend/internal/config"
	"github.com/intervue/intervue-backend/internal/model"
)

// Sentinel errors for resume uploads. Unsupported types are rejected
// synchronously, before any generation work begins.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Allowed resume MIME types.
var allowedMIMETypes = map[string]string{
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
}

// ResumeService validates, stores, and extracts uploaded resumes.
type ResumeService struct {
	cfg *config.Config
}

// NewResumeService creates a new ResumeService.
func NewResumeService(cfg *config.Config) *ResumeService {
	return &ResumeService{cfg: cfg}
}

// Intake validates an upload, stores a copy under the upload dir with a
// UUID filename, and returns the document handed to question generation.
// Plain text travels as extracted text; PDF bytes travel base64-encoded.
func (s *ResumeService) Intake(file multipart.File, header *multipart.FileHeader) (model.ResumeDocument, string, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return model.ResumeDocument{}, "", fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
	}

	if header.Size > s.cfg.MaxUploadBytes {
		return model.ResumeDocument{}, "", fmt.Errorf("%w: %d bytes (max: %d)",
			ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	raw, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return model.ResumeDocument{}, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > s.cfg.MaxUploadBytes {
		return model.ResumeDocument{}, "", fmt.Errorf("%w: stream exceeds max", ErrFileTooLarge)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return model.ResumeDocument{}, "", fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.New().String() + ext
	destPath := filepath.Join(s.cfg.UploadDir, filename)
	if err := os.WriteFile(destPath, raw, 0o644); err != nil {
		return model.ResumeDocument{}, "", fmt.Errorf("write file: %w", err)
	}

	doc := model.ResumeDocument{MimeType: contentType}
	if contentType == "text/plain" {
		doc.Text = string(raw)
	} else {
		doc.Base64 = base64.StdEncoding.EncodeToString(raw)
	}

	return doc, "/uploads/" + filename, nil
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	return types
}
