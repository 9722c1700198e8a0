package platformdrivers

import (
	"time"

	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
)

// Facebook timestamps carry a numeric zone offset, e.g. 2024-05-01T10:00:00+0000.
const facebookTimeLayout = "2006-01-02T15:04:05-0700"

type FacebookDriver struct{}

func (s FacebookDriver) Platform() tables.Platform {
	return tables.Platform_Facebook
}

func (s FacebookDriver) EndpointName() string {
	return "facebook"
}

func (s FacebookDriver) BuildRequest(cmd PublishCommand) (map[string]interface{}, error) {
	payload := basePayload(cmd)
	payload["message"] = cmd.Draft.Content
	return payload, nil
}

func (s FacebookDriver) ParseResponse(raw []byte, accountIds []string) ([]PerAccountResult, error) {
	return parseGroupResults(raw, accountIds)
}

func (s FacebookDriver) ParseFeed(raw []byte) ([]map[string]interface{}, error) {
	return unwrapFeed(raw, "data")
}

func (s FacebookDriver) ExtractTimestamp(post map[string]interface{}) time.Time {
	return parseTimeField(post, "created_time", facebookTimeLayout)
}

func (s FacebookDriver) ContentRequirement(draft tables.Draft) error {
	return nil
}
