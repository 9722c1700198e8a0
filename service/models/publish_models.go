package models

type PublishRequest struct {
	DraftID   string            `json:"draftId"`
	Selection []SelectedAccount `json:"selection"`
	Options   PublishOptions    `json:"options"`
}

type SelectedAccount struct {
	Platform  string `json:"platform"`
	AccountID string `json:"accountId"`
}

type PublishOptions struct {
	YouTubeVisibility string `json:"youtubeVisibility,omitempty"`
}
