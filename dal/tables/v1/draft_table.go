package v1

import "strings"

type DraftStatus string

const (
	DRAFT_EDITING    DraftStatus = "Editing"
	DRAFT_PUBLISHING DraftStatus = "Publishing"
	DRAFT_PUBLISHED  DraftStatus = "Published"
)

type Draft struct {
	// Required
	DraftID     string
	Content     string
	MediaUrls   []string // hosted urls, already resolved by the media pipeline
	Platforms   []string
	DraftStatus DraftStatus

	// Publish single-flight lock
	PublishLockID  string // ID of the process using the lock
	PublishLockTTL int64  // Time-in-future for when lock can be forcefully released.

	CreatedAtEpochMilli int64
	UpdatedAtEpochMilli int64
}

var videoExtensions = []string{".mp4", ".mov", ".webm", ".m4v"}

func (d Draft) HasAnyMedia() bool {
	return len(d.MediaUrls) > 0
}

func (d Draft) HasVideoMedia() bool {
	for _, url := range d.MediaUrls {
		lowered := strings.ToLower(url)
		for _, ext := range videoExtensions {
			if strings.HasSuffix(lowered, ext) {
				return true
			}
		}
	}
	return false
}
