package platformdrivers

import (
	"time"

	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
)

type TwitterDriver struct{}

func (s TwitterDriver) Platform() tables.Platform {
	return tables.Platform_Twitter
}

func (s TwitterDriver) EndpointName() string {
	return "twitter"
}

func (s TwitterDriver) BuildRequest(cmd PublishCommand) (map[string]interface{}, error) {
	payload := basePayload(cmd)
	payload["text"] = cmd.Draft.Content
	return payload, nil
}

func (s TwitterDriver) ParseResponse(raw []byte, accountIds []string) ([]PerAccountResult, error) {
	return parseGroupResults(raw, accountIds)
}

func (s TwitterDriver) ParseFeed(raw []byte) ([]map[string]interface{}, error) {
	return unwrapFeed(raw, "data")
}

func (s TwitterDriver) ExtractTimestamp(post map[string]interface{}) time.Time {
	return parseTimeField(post, "created_at", time.RFC3339)
}

func (s TwitterDriver) ContentRequirement(draft tables.Draft) error {
	return nil
}
