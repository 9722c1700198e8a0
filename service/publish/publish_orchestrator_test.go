package publish

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
	drivers "github.com/draftroom-social-core/v2/service/publish/platform-drivers"
)

type publishCall struct {
	endpointName string
	payload      map[string]interface{}
}

// fakeProvider replays canned responses keyed by endpoint name and records
// every dispatch.
type fakeProvider struct {
	responses map[string]drivers.ProviderResponse
	errs      map[string]error
	calls     []publishCall
}

func (f *fakeProvider) PublishPost(endpointName string, payload map[string]interface{}) (drivers.ProviderResponse, error) {
	f.calls = append(f.calls, publishCall{endpointName: endpointName, payload: payload})
	if err, ok := f.errs[endpointName]; ok {
		return drivers.ProviderResponse{}, err
	}
	if resp, ok := f.responses[endpointName]; ok {
		return resp, nil
	}
	return drivers.ProviderResponse{StatusCode: 200, Body: []byte(`{"id":"ok"}`)}, nil
}

func (f *fakeProvider) FetchPosts(endpointName string, accountId string) ([]byte, error) {
	panic("publish orchestrator must never read feeds")
}

type fakeDraftStore struct {
	draft      tables.Draft
	getErr     error
	deleted    bool
	lockHolder string
	lockTaken  int
	lockFreed  int
}

func (f *fakeDraftStore) GetDraft(draftId string) (tables.Draft, error) {
	if f.getErr != nil {
		return tables.Draft{}, f.getErr
	}
	return f.draft, nil
}

func (f *fakeDraftStore) DeleteDraft(draftId string) error {
	f.deleted = true
	return nil
}

func (f *fakeDraftStore) TakePublishLock(draftId string, processId string) error {
	if f.lockHolder != "" {
		return fmt.Errorf("unable to take publish lock. draftId: %s processId: %s", draftId, processId)
	}
	f.lockHolder = processId
	f.lockTaken++
	return nil
}

func (f *fakeDraftStore) ReleasePublishLock(draftId string, processId string) error {
	if f.lockHolder == processId {
		f.lockHolder = ""
		f.lockFreed++
	}
	return nil
}

func textDraft() tables.Draft {
	return tables.Draft{
		DraftID:   "draft-1",
		Content:   "Launch day!",
		MediaUrls: []string{"https://cdn.example.com/shot.png"},
	}
}

func newTestOrchestrator(provider *fakeProvider, store *fakeDraftStore) *Orchestrator {
	return &Orchestrator{Provider: provider, Drafts: store}
}

func TestPublishRejectsEmptySelection(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)

	_, err := orchestrator.Publish("draft-1", nil, drivers.PublishOptions{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, provider.calls)
	assert.False(t, store.deleted)
}

func TestPublishRejectsUnmetVideoRequirement(t *testing.T) {
	// Two facebook accounts plus one youtube account; the draft has no
	// video, youtube requires it, so the whole call is rejected.
	provider := &fakeProvider{}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)

	selection := []AccountTarget{
		{Platform: tables.Platform_Facebook, AccountID: "fb-1"},
		{Platform: tables.Platform_Facebook, AccountID: "fb-2"},
		{Platform: tables.Platform_YouTube, AccountID: "yt-1"},
	}
	session, err := orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	assert.Nil(t, session)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "youtube requires video content", validationErr.Message)
	assert.Empty(t, provider.calls, "zero network calls on validation failure")
	assert.False(t, store.deleted, "draft untouched on validation failure")
}

func TestPublishOneRequestPerPlatformGroup(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)

	selection := []AccountTarget{
		{Platform: tables.Platform_Facebook, AccountID: "fb-1"},
		{Platform: tables.Platform_Mastodon, AccountID: "ma-1"},
		{Platform: tables.Platform_Facebook, AccountID: "fb-2"},
		{Platform: tables.Platform_Twitter, AccountID: "tw-1"},
	}
	session, err := orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	require.NoError(t, err)

	require.Len(t, provider.calls, 3, "one request per distinct platform, never per account")
	assert.Equal(t, "facebook", provider.calls[0].endpointName, "dispatch follows first-appearance order")
	assert.Equal(t, "mastodon", provider.calls[1].endpointName)
	assert.Equal(t, "twitter", provider.calls[2].endpointName)
	assert.Equal(t, []string{"fb-1", "fb-2"}, provider.calls[0].payload["accountIds"],
		"the group request carries all of its account ids")

	assert.Equal(t, 3, session.Progress.Total)
	assert.Len(t, session.Results, 4)
}

func TestPublishDeduplicatesAccountIds(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)

	selection := []AccountTarget{
		{Platform: tables.Platform_Facebook, AccountID: "acc-1"},
		{Platform: tables.Platform_Facebook, AccountID: "acc-1"},
		{Platform: tables.Platform_Twitter, AccountID: "acc-1"}, // same id under another platform key
	}
	session, err := orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	require.NoError(t, err)

	require.Len(t, session.Groups, 1)
	assert.Equal(t, []string{"acc-1"}, session.Groups[0].AccountIDs)
	require.Len(t, provider.calls, 1, "duplicates must never cause double-publishing")
	assert.Len(t, session.Results, 1)
}

func TestPublishPartialFailureRetainsDraft(t *testing.T) {
	provider := &fakeProvider{
		responses: map[string]drivers.ProviderResponse{
			"facebook": {StatusCode: 200, Body: []byte(`{"results":[{"ok":true},{"ok":false,"error":"rate_limited"}]}`)},
		},
	}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)

	selection := []AccountTarget{
		{Platform: tables.Platform_Facebook, AccountID: "fb-1"},
		{Platform: tables.Platform_Facebook, AccountID: "fb-2"},
	}
	session, err := orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	require.NoError(t, err)

	require.Len(t, session.Results, 2)
	assert.Equal(t, "fb-1", session.Results[0].AccountID)
	assert.Equal(t, drivers.RESULT_SUCCESS, session.Results[0].Status)
	assert.Equal(t, "fb-2", session.Results[1].AccountID)
	assert.Equal(t, drivers.RESULT_ERROR, session.Results[1].Status)
	assert.Equal(t, "rate_limited", session.Results[1].Error)

	assert.Equal(t, STATUS_ERROR, session.Status())
	assert.False(t, store.deleted, "draft retained so the caller can retry failed accounts")
}

func TestPublishDeletesDraftOnlyOnFullSuccess(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)

	selection := []AccountTarget{
		{Platform: tables.Platform_Facebook, AccountID: "fb-1"},
		{Platform: tables.Platform_Mastodon, AccountID: "ma-1"},
	}
	session, err := orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	require.NoError(t, err)

	assert.Equal(t, STATUS_COMPLETED, session.Status())
	assert.Equal(t, 2, session.SuccessCount())
	assert.True(t, store.deleted)
}

func TestPublishGroupFailureIsolation(t *testing.T) {
	provider := &fakeProvider{
		errs: map[string]error{
			"facebook": &drivers.ProviderError{StatusCode: 500, Message: "provider down"},
		},
	}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)

	selection := []AccountTarget{
		{Platform: tables.Platform_Facebook, AccountID: "fb-1"},
		{Platform: tables.Platform_Facebook, AccountID: "fb-2"},
		{Platform: tables.Platform_Mastodon, AccountID: "ma-1"},
	}
	session, err := orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	require.NoError(t, err)

	require.Len(t, provider.calls, 2, "one platform's outage never blocks others")
	require.Len(t, session.Results, 3)
	assert.Equal(t, drivers.RESULT_ERROR, session.Results[0].Status)
	assert.Contains(t, session.Results[0].Error, "provider down")
	assert.Equal(t, drivers.RESULT_ERROR, session.Results[1].Status)
	assert.Equal(t, drivers.RESULT_SUCCESS, session.Results[2].Status)

	assert.Equal(t, STATUS_ERROR, session.Status())
	assert.False(t, store.deleted)
}

func TestPublishDiscordBadRequestSurfacedByDefault(t *testing.T) {
	provider := &fakeProvider{
		errs: map[string]error{
			"discord": &drivers.ProviderError{StatusCode: 400, Message: "flaky gateway"},
		},
	}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)

	selection := []AccountTarget{{Platform: tables.Platform_Discord, AccountID: "dc-1"}}
	session, err := orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	require.NoError(t, err)

	assert.Equal(t, drivers.RESULT_ERROR, session.Results[0].Status)
	assert.Equal(t, STATUS_ERROR, session.Status())
	assert.False(t, store.deleted)
}

func TestPublishDiscordBadRequestMaskedBehindFlag(t *testing.T) {
	provider := &fakeProvider{
		errs: map[string]error{
			"discord": &drivers.ProviderError{StatusCode: 400, Message: "flaky gateway"},
		},
	}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)
	orchestrator.MaskDiscordBadRequest = true

	selection := []AccountTarget{
		{Platform: tables.Platform_Discord, AccountID: "dc-1"},
		{Platform: tables.Platform_Discord, AccountID: "dc-2"},
	}
	session, err := orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	require.NoError(t, err)

	require.Len(t, session.Results, 2)
	assert.Equal(t, drivers.RESULT_SUCCESS, session.Results[0].Status)
	assert.Equal(t, drivers.RESULT_SUCCESS, session.Results[1].Status)
	assert.Equal(t, STATUS_COMPLETED, session.Status())
	assert.True(t, store.deleted, "masking fabricates a full success, delete included")

	// A 400 on any other platform stays a failure even with the flag on.
	otherProvider := &fakeProvider{
		errs: map[string]error{
			"twitter": &drivers.ProviderError{StatusCode: 400, Message: "bad request"},
		},
	}
	otherStore := &fakeDraftStore{draft: textDraft()}
	orchestrator = newTestOrchestrator(otherProvider, otherStore)
	orchestrator.MaskDiscordBadRequest = true
	session, err = orchestrator.Publish("draft-1",
		[]AccountTarget{{Platform: tables.Platform_Twitter, AccountID: "tw-1"}}, drivers.PublishOptions{})
	require.NoError(t, err)
	assert.Equal(t, drivers.RESULT_ERROR, session.Results[0].Status)
}

func TestPublishProgressCountsGroups(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)

	selection := []AccountTarget{
		{Platform: tables.Platform_Facebook, AccountID: "fb-1"},
		{Platform: tables.Platform_Facebook, AccountID: "fb-2"},
		{Platform: tables.Platform_Mastodon, AccountID: "ma-1"},
	}
	session, err := orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, session.Progress.Current, "progress counts platform groups, not accounts")
	assert.Equal(t, 2, session.Progress.Total)
	assert.Equal(t, STATUS_COMPLETED, session.Progress.Status)
}

func TestProgressLabelTitleCasesPlatform(t *testing.T) {
	group := PlatformGroup{Platform: tables.Platform_Facebook, AccountIDs: []string{"a", "b"}}
	assert.Equal(t, "2 Facebook account(s)", progressLabel(group))

	group = PlatformGroup{Platform: tables.Platform_Twitter, AccountIDs: []string{"a"}}
	assert.Equal(t, "1 Twitter account(s)", progressLabel(group))
}

func TestPublishLockTakenAndReleased(t *testing.T) {
	provider := &fakeProvider{}
	store := &fakeDraftStore{draft: textDraft()}
	orchestrator := newTestOrchestrator(provider, store)

	selection := []AccountTarget{{Platform: tables.Platform_Twitter, AccountID: "tw-1"}}
	_, err := orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.lockTaken)
	assert.Equal(t, 1, store.lockFreed)

	// A held lock turns away a second publish before any dispatch.
	store.lockHolder = "someone-else"
	_, err = orchestrator.Publish("draft-1", selection, drivers.PublishOptions{})
	assert.Error(t, err)
	assert.Len(t, provider.calls, 1, "locked draft publishes nothing")
}
