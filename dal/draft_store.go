package dal

import (
	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
)

// DynamoDraftStore adapts the package-level draft DAO functions to the
// draft-store interface the publish orchestrator depends on.
type DynamoDraftStore struct{}

func (DynamoDraftStore) GetDraft(draftId string) (tables.Draft, error) {
	return GetDraft(draftId)
}

func (DynamoDraftStore) DeleteDraft(draftId string) error {
	return DeleteDraft(draftId)
}

func (DynamoDraftStore) TakePublishLock(draftId string, processId string) error {
	return TakeDraftPublishLock(draftId, processId)
}

func (DynamoDraftStore) ReleasePublishLock(draftId string, processId string) error {
	return ReleaseDraftPublishLock(draftId, processId)
}
