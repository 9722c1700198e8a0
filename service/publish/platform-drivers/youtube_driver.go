package platformdrivers

import (
	"errors"
	"strings"
	"time"

	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
)

const youtubeTitleMaxLen = 100

type YouTubeDriver struct{}

func (s YouTubeDriver) Platform() tables.Platform {
	return tables.Platform_YouTube
}

func (s YouTubeDriver) EndpointName() string {
	return "youtube"
}

func (s YouTubeDriver) BuildRequest(cmd PublishCommand) (map[string]interface{}, error) {
	visibility := cmd.Options.YouTubeVisibility
	if visibility == "" {
		visibility = "public"
	}
	if visibility != "public" && visibility != "private" {
		return nil, errors.New("youtube visibility must be private or public")
	}

	payload := basePayload(cmd)
	payload["title"] = titleFromContent(cmd.Draft.Content)
	payload["description"] = cmd.Draft.Content
	payload["visibility"] = visibility
	return payload, nil
}

func (s YouTubeDriver) ParseResponse(raw []byte, accountIds []string) ([]PerAccountResult, error) {
	return parseGroupResults(raw, accountIds)
}

func (s YouTubeDriver) ParseFeed(raw []byte) ([]map[string]interface{}, error) {
	return unwrapFeed(raw, "items")
}

func (s YouTubeDriver) ExtractTimestamp(post map[string]interface{}) time.Time {
	return parseTimeField(post, "publishedAt", time.RFC3339)
}

func (s YouTubeDriver) ContentRequirement(draft tables.Draft) error {
	if !draft.HasVideoMedia() {
		return errors.New("youtube requires video content")
	}
	return nil
}

// titleFromContent derives the video title from the draft body: first line,
// capped at the provider's title limit.
func titleFromContent(content string) string {
	title := content
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)
	if len(title) > youtubeTitleMaxLen {
		title = title[:youtubeTitleMaxLen]
	}
	return title
}
