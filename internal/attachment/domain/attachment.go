package domain

import (
	"errors"
	"mime"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxBytes caps an upload when no limit is configured.
const DefaultMaxBytes = 5 * 1024 * 1024

// AllowedTypes are the accepted upload content types.
var AllowedTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
	"text/plain":      true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Attachment is the metadata of a file uploaded to a task. The bytes live in a blob store under
// StoragePath.
type Attachment struct {
	ID            string    `json:"id"`
	OrgID         string    `json:"orgId"`
	TaskID        string    `json:"taskId"`
	UserID        string    `json:"userId"`
	Filename      string    `json:"filename"`
	StoragePath   string    `json:"-"`
	FileType      string    `json:"fileType"`
	FileSizeBytes int64     `json:"fileSizeBytes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Validate checks required fields.
func (a *Attachment) Validate() error {
	if a.OrgID == "" || a.TaskID == "" || a.UserID == "" {
		return errors.New("attachment: organization, task and user are required")
	}
	if a.StoragePath == "" || a.Filename == "" {
		return errors.New("attachment: filename and storage path are required")
	}
	return nil
}

// NormalizeType strips parameters from a Content-Type header value ("text/plain; charset=utf-8"
// becomes "text/plain"). It returns "" for unparsable values.
func NormalizeType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

// SanitizeFilename drops every character outside [a-zA-Z0-9._-].
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "")
}

// NewStorageKey returns a unique blob key that keeps the sanitized original name readable.
func NewStorageKey(filename string) string {
	key := uuid.NewString()
	if s := SanitizeFilename(filename); s != "" {
		key += "-" + s
	}
	return key
}
