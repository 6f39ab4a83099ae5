package service

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intervue/intervue-backend/internal/config"
)

func newResumeService(t *testing.T) *ResumeService {
	t.Helper()
	return NewResumeService(&config.Config{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1 << 20,
	})
}

// upload builds a real multipart file/header pair the way gin hands it
// to the handler.
func upload(t *testing.T, contentType, filename, content string) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="resume"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	reader := multipart.NewReader(&buf, mw.Boundary())
	form, err := reader.ReadForm(4 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	header := form.File["resume"][0]
	file, err := header.Open()
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })
	return file, header
}

func TestIntakePlainText(t *testing.T) {
	svc := newResumeService(t)
	file, header := upload(t, "text/plain", "resume.txt", "Five years building Go services.")

	doc, url, err := svc.Intake(file, header)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", doc.MimeType)
	assert.Equal(t, "Five years building Go services.", doc.Text)
	assert.Empty(t, doc.Base64)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".txt"))

	stored := filepath.Join(svc.cfg.UploadDir, strings.TrimPrefix(url, "/uploads/"))
	raw, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "Five years building Go services.", string(raw))
}

func TestIntakePDFTravelsBase64(t *testing.T) {
	svc := newResumeService(t)
	content := "%PDF-1.7 fake body"
	file, header := upload(t, "application/pdf", "resume.pdf", content)

	doc, url, err := svc.Intake(file, header)
	require.NoError(t, err)
	assert.Empty(t, doc.Text)
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	decoded, err := base64.StdEncoding.DecodeString(doc.Base64)
	require.NoError(t, err)
	assert.Equal(t, content, string(decoded))
}

func TestIntakeRejectsUnsupportedType(t *testing.T) {
	svc := newResumeService(t)
	file, header := upload(t, "application/msword", "resume.doc", "old format")

	_, _, err := svc.Intake(file, header)
	require.ErrorIs(t, err, ErrUnsupportedFileType)

	// Nothing gets stored for a rejected upload.
	entries, readErr := os.ReadDir(svc.cfg.UploadDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestIntakeRejectsOversizedFile(t *testing.T) {
	svc := NewResumeService(&config.Config{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 8,
	})
	file, header := upload(t, "text/plain", "resume.txt", "this body is longer than eight bytes")

	_, _, err := svc.Intake(file, header)
	require.ErrorIs(t, err, ErrFileTooLarge)
}
