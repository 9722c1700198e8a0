package platformdrivers

import (
	"time"

	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
)

type DiscordDriver struct{}

func (s DiscordDriver) Platform() tables.Platform {
	return tables.Platform_Discord
}

func (s DiscordDriver) EndpointName() string {
	return "discord"
}

func (s DiscordDriver) BuildRequest(cmd PublishCommand) (map[string]interface{}, error) {
	payload := basePayload(cmd)
	payload["message"] = cmd.Draft.Content
	return payload, nil
}

func (s DiscordDriver) ParseResponse(raw []byte, accountIds []string) ([]PerAccountResult, error) {
	return parseGroupResults(raw, accountIds)
}

func (s DiscordDriver) ParseFeed(raw []byte) ([]map[string]interface{}, error) {
	return unwrapFeed(raw, "messages")
}

func (s DiscordDriver) ExtractTimestamp(post map[string]interface{}) time.Time {
	return parseTimeField(post, "timestamp", time.RFC3339)
}

func (s DiscordDriver) ContentRequirement(draft tables.Draft) error {
	return nil
}
