package platformdrivers

import (
	"errors"
	"time"

	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
)

type TikTokDriver struct{}

func (s TikTokDriver) Platform() tables.Platform {
	return tables.Platform_TikTok
}

func (s TikTokDriver) EndpointName() string {
	return "tiktok"
}

func (s TikTokDriver) BuildRequest(cmd PublishCommand) (map[string]interface{}, error) {
	payload := basePayload(cmd)
	payload["caption"] = cmd.Draft.Content
	payload["title"] = cmd.Draft.Content
	payload["description"] = cmd.Draft.Content
	return payload, nil
}

func (s TikTokDriver) ParseResponse(raw []byte, accountIds []string) ([]PerAccountResult, error) {
	return parseGroupResults(raw, accountIds)
}

func (s TikTokDriver) ParseFeed(raw []byte) ([]map[string]interface{}, error) {
	return unwrapFeed(raw, "videos")
}

func (s TikTokDriver) ExtractTimestamp(post map[string]interface{}) time.Time {
	return parseUnixField(post, "create_time")
}

func (s TikTokDriver) ContentRequirement(draft tables.Draft) error {
	if !draft.HasVideoMedia() {
		return errors.New("tiktok requires video content")
	}
	return nil
}
