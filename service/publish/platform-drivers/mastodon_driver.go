package platformdrivers

import (
	"time"

	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
)

type MastodonDriver struct{}

func (s MastodonDriver) Platform() tables.Platform {
	return tables.Platform_Mastodon
}

func (s MastodonDriver) EndpointName() string {
	return "mastodon"
}

func (s MastodonDriver) BuildRequest(cmd PublishCommand) (map[string]interface{}, error) {
	payload := basePayload(cmd)
	payload["status"] = cmd.Draft.Content
	return payload, nil
}

func (s MastodonDriver) ParseResponse(raw []byte, accountIds []string) ([]PerAccountResult, error) {
	return parseGroupResults(raw, accountIds)
}

// Mastodon exposes statuses as a top-level array, no envelope.
func (s MastodonDriver) ParseFeed(raw []byte) ([]map[string]interface{}, error) {
	return unwrapFeed(raw, "")
}

func (s MastodonDriver) ExtractTimestamp(post map[string]interface{}) time.Time {
	return parseTimeField(post, "created_at", time.RFC3339)
}

func (s MastodonDriver) ContentRequirement(draft tables.Draft) error {
	return nil
}
