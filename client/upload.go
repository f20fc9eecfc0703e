package client

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Limits enforced before any upload URL is requested.
const (
	MaxDraftMediaItems = 3
	MaxMediaBytes      = 20 << 20 // 20 MB
	MaxDraftContent    = 1000
)

var (
	ErrContentLength      = errors.New("content must be between 1 and 1000 characters")
	ErrTooManyAttachments = fmt.Errorf("at most %d media items per post", MaxDraftMediaItems)
	ErrFileTooLarge       = errors.New("media file exceeds 20 MB")
	ErrBadMediaType       = errors.New("media must be an image or a video")
	ErrBadAspectRatio     = errors.New("media aspect ratio must be 16:9 or 1:1")
)

// Attachment is the tagged variant a draft post carries before submission:
// either media already in the object store, or a local file that still needs
// an upload URL.
type Attachment interface {
	attachment()
}

// RemoteMedia points at an already-uploaded object.
type RemoteMedia struct {
	URL    string
	Kind   string
	Format string
}

// PendingLocal is a file picked by the user but not yet uploaded.
type PendingLocal struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

func (RemoteMedia) attachment()  {}
func (PendingLocal) attachment() {}

// ValidateDraft runs every client-side rule for a draft post so invalid
// drafts never reach the server or mint upload URLs.
func ValidateDraft(content string, attachments []Attachment) error {
	length := utf8.RuneCountInString(content)
	if length < 1 || length > MaxDraftContent {
		return ErrContentLength
	}

	if len(attachments) > MaxDraftMediaItems {
		return ErrTooManyAttachments
	}

	for _, attachment := range attachments {
		local, ok := attachment.(PendingLocal)
		if !ok {
			continue
		}
		if err := validateLocal(local); err != nil {
			return err
		}
	}
	return nil
}

func validateLocal(local PendingLocal) error {
	if len(local.Data) > MaxMediaBytes {
		return ErrFileTooLarge
	}
	if !strings.HasPrefix(local.MimeType, "image/") && !strings.HasPrefix(local.MimeType, "video/") {
		return ErrBadMediaType
	}
	if !aspectRatioOK(local.Width, local.Height) {
		return ErrBadAspectRatio
	}
	return nil
}

// aspectRatioOK accepts 16:9 and 1:1 frames.
func aspectRatioOK(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	if width == height {
		return true
	}
	return width*9 == height*16
}
