package platformdrivers

import (
	"fmt"
	"time"

	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
)

type PublishCommand struct {
	Draft      tables.Draft
	AccountIDs []string // every target account of one platform group
	Options    PublishOptions
}

type PublishOptions struct {
	YouTubeVisibility string // "private" or "public", ignored by other platforms
}

type ResultStatus string

const (
	RESULT_SUCCESS ResultStatus = "success"
	RESULT_ERROR   ResultStatus = "error"
)

type PerAccountResult struct {
	AccountID string                 `json:"accountId"`
	Status    ResultStatus           `json:"status"`
	Error     string                 `json:"error,omitempty"`
	Raw       map[string]interface{} `json:"raw,omitempty"`
}

// PlatformDriver translates generic draft/account data into one platform's
// request and response shapes. Exactly one driver per supported platform,
// registered here; the orchestrator never branches on platform names.
type PlatformDriver interface {
	Platform() tables.Platform
	EndpointName() string
	BuildRequest(cmd PublishCommand) (map[string]interface{}, error)
	ParseResponse(raw []byte, accountIds []string) ([]PerAccountResult, error)
	ParseFeed(raw []byte) ([]map[string]interface{}, error)
	ExtractTimestamp(post map[string]interface{}) time.Time
	ContentRequirement(draft tables.Draft) error
}

func GetDriver(platform tables.Platform) (PlatformDriver, error) {
	switch platform {
	case tables.Platform_Facebook:
		return FacebookDriver{}, nil
	case tables.Platform_TikTok:
		return TikTokDriver{}, nil
	case tables.Platform_Discord:
		return DiscordDriver{}, nil
	case tables.Platform_YouTube:
		return YouTubeDriver{}, nil
	case tables.Platform_Mastodon:
		return MastodonDriver{}, nil
	case tables.Platform_Twitter:
		return TwitterDriver{}, nil
	}
	return nil, fmt.Errorf("no matching platform-to-driver found: %s", platform)
}
