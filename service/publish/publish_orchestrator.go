package publish

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"bitbucket.org/creachadair/stringset"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	config "github.com/draftroom-social-core/v2/configuration"
	"github.com/draftroom-social-core/v2/dal"
	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
	drivers "github.com/draftroom-social-core/v2/service/publish/platform-drivers"
)

// DraftStore is the external draft collaborator. The orchestrator only ever
// reads a draft and requests its deletion after a fully successful publish.
type DraftStore interface {
	GetDraft(draftId string) (tables.Draft, error)
	DeleteDraft(draftId string) error
	TakePublishLock(draftId string, processId string) error
	ReleasePublishLock(draftId string, processId string) error
}

// AccountTarget is one entry of the caller's publish selection. The
// selection is an ordered flat list; platform groups dispatch in the order
// platforms first appear in it.
type AccountTarget struct {
	Platform  tables.Platform `json:"platform"`
	AccountID string          `json:"accountId"`
}

type PlatformGroup struct {
	Platform   tables.Platform `json:"platform"`
	AccountIDs []string        `json:"accountIds"`
}

// PublishSession accumulates one publish invocation's dispatch state. It is
// created fresh per call and never shared across invocations.
type PublishSession struct {
	DraftID  string                     `json:"draftId"`
	Groups   []PlatformGroup            `json:"groups"`
	Results  []drivers.PerAccountResult `json:"results"`
	Progress *ProgressTracker           `json:"progress"`
}

func (s *PublishSession) Status() SessionStatus {
	return s.Progress.Status
}

func (s *PublishSession) SuccessCount() int {
	count := 0
	for _, result := range s.Results {
		if result.Status == drivers.RESULT_SUCCESS {
			count++
		}
	}
	return count
}

// ValidationError rejects a publish call before any dispatch happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Orchestrator struct {
	Provider              drivers.ProviderAPI
	Drafts                DraftStore
	MaskDiscordBadRequest bool
}

func NewOrchestrator(provider drivers.ProviderAPI) *Orchestrator {
	return &Orchestrator{
		Provider:              provider,
		Drafts:                dal.DynamoDraftStore{},
		MaskDiscordBadRequest: config.GetEnvConfigs().MaskDiscordBadRequestAsSuccess,
	}
}

var titleCaser = cases.Title(language.English)

// Publish fans one draft out across the selected accounts, one request per
// platform group. Validation violations reject the whole call with zero
// dispatch; dispatch failures are collected per account and never abort the
// remaining groups. The draft is deleted only when every account succeeded.
func (s *Orchestrator) Publish(draftId string, selection []AccountTarget, options drivers.PublishOptions) (*PublishSession, error) {
	if len(selection) == 0 {
		return nil, &ValidationError{Message: "no accounts selected"}
	}
	groups := groupSelection(selection)
	if len(groups) == 0 {
		return nil, &ValidationError{Message: "no valid accounts selected"}
	}

	// Single-flight guard: concurrent publishes of one draft must not race
	// on the per-account accounting or the delete decision.
	processId := uuid.New().String()
	if err := s.Drafts.TakePublishLock(draftId, processId); err != nil {
		log.Printf("correlationID: %s unable to take draft publish lock: %s", draftId, err)
		return nil, err
	}
	defer s.Drafts.ReleasePublishLock(draftId, processId)

	draft, err := s.Drafts.GetDraft(draftId)
	if err != nil {
		log.Printf("correlationID: %s error loading draft: %s", draftId, err)
		return nil, err
	}

	if err := validateContentRequirements(draft, groups); err != nil {
		return nil, err
	}

	session := &PublishSession{
		DraftID:  draftId,
		Groups:   groups,
		Progress: NewProgressTracker(len(groups)),
	}

	for _, group := range groups {
		if err := session.Progress.Advance(progressLabel(group)); err != nil {
			log.Printf("correlationID: %s progress tracker refused advance: %s", draftId, err)
		}
		session.Results = append(session.Results, s.dispatchGroup(draft, group, options)...)
	}

	allSucceeded := len(session.Results) > 0 && session.SuccessCount() == len(session.Results)
	if err := session.Progress.Finish(allSucceeded); err != nil {
		log.Printf("correlationID: %s progress tracker refused finish: %s", draftId, err)
	}

	if !allSucceeded {
		// Draft stays untouched so the caller can retry the failed accounts.
		return session, nil
	}

	if err := s.Drafts.DeleteDraft(draftId); err != nil {
		log.Printf("correlationID: %s error deleting draft after full success: %s", draftId, err)
		return session, err
	}
	return session, nil
}

// groupSelection flattens the selection, drops duplicate and empty account
// ids, and partitions by platform preserving first-appearance order.
func groupSelection(selection []AccountTarget) []PlatformGroup {
	seen := stringset.New()
	groups := []PlatformGroup{}
	indexByPlatform := map[tables.Platform]int{}
	for _, target := range selection {
		if target.AccountID == "" || seen.Contains(target.AccountID) {
			continue
		}
		seen.Add(target.AccountID)

		idx, ok := indexByPlatform[target.Platform]
		if !ok {
			groups = append(groups, PlatformGroup{Platform: target.Platform})
			idx = len(groups) - 1
			indexByPlatform[target.Platform] = idx
		}
		groups[idx].AccountIDs = append(groups[idx].AccountIDs, target.AccountID)
	}
	return groups
}

// validateContentRequirements fails the entire call when any selected
// platform's requirement is unmet. No partial dispatch on violation.
func validateContentRequirements(draft tables.Draft, groups []PlatformGroup) error {
	for _, group := range groups {
		driver, err := drivers.GetDriver(group.Platform)
		if err != nil {
			return &ValidationError{Message: err.Error()}
		}
		if reqErr := driver.ContentRequirement(draft); reqErr != nil {
			return &ValidationError{Message: reqErr.Error()}
		}
	}
	return nil
}

// dispatchGroup issues exactly one provider request carrying every account
// id of the group. Failures are folded into per-account results so the
// dispatch loop always completes all groups.
func (s *Orchestrator) dispatchGroup(draft tables.Draft, group PlatformGroup, options drivers.PublishOptions) []drivers.PerAccountResult {
	driver, err := drivers.GetDriver(group.Platform)
	if err != nil {
		return drivers.UniformFailure(group.AccountIDs, err.Error())
	}

	cmd := drivers.PublishCommand{
		Draft:      draft,
		AccountIDs: group.AccountIDs,
		Options:    options,
	}
	payload, err := driver.BuildRequest(cmd)
	if err != nil {
		log.Printf("correlationID: %s error building %s request: %s", draft.DraftID, group.Platform, err)
		return drivers.UniformFailure(group.AccountIDs, err.Error())
	}

	resp, err := s.Provider.PublishPost(driver.EndpointName(), payload)
	if err != nil {
		if s.isMaskedDiscordBadRequest(group.Platform, err) {
			// Known provider quirk: the discord gateway intermittently
			// rejects valid group posts with a 400. Masking fabricates
			// success and hides genuine failures, so it stays behind an
			// explicit config flag and is off by default.
			log.Printf("correlationID: %s masking discord bad-request as success for %d account(s)",
				draft.DraftID, len(group.AccountIDs))
			return drivers.UniformSuccess(group.AccountIDs)
		}
		log.Printf("correlationID: %s error dispatching %s group: %s", draft.DraftID, group.Platform, err)
		return drivers.UniformFailure(group.AccountIDs, err.Error())
	}

	results, err := driver.ParseResponse(resp.Body, group.AccountIDs)
	if err != nil {
		log.Printf("correlationID: %s error parsing %s response: %s", draft.DraftID, group.Platform, err)
		return drivers.UniformFailure(group.AccountIDs, err.Error())
	}
	return results
}

func (s *Orchestrator) isMaskedDiscordBadRequest(platform tables.Platform, err error) bool {
	if !s.MaskDiscordBadRequest || platform != tables.Platform_Discord {
		return false
	}
	var providerErr *drivers.ProviderError
	return errors.As(err, &providerErr) && providerErr.StatusCode == http.StatusBadRequest
}

func progressLabel(group PlatformGroup) string {
	return fmt.Sprintf("%d %s account(s)", len(group.AccountIDs), titleCaser.String(string(group.Platform)))
}
