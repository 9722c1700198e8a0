package feed

import (
	"errors"
	"fmt"
	"log"
	"sort"

	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
	drivers "github.com/draftroom-social-core/v2/service/publish/platform-drivers"
)

// AggregatedPost keeps the provider's post fields as-is, stamped with the
// originating account's metadata under accountId/accountName/accountAvatar.
type AggregatedPost map[string]interface{}

// ConnectionHealth is the aggregate read-side signal. NeedsReconnect is set
// only when every attempt failed with an auth-class error.
type ConnectionHealth struct {
	Connected      bool   `json:"connected"`
	NeedsReconnect bool   `json:"needsReconnect"`
	Warning        string `json:"warning,omitempty"`
}

type Aggregator struct {
	Provider drivers.ProviderAPI
}

func NewAggregator(provider drivers.ProviderAPI) *Aggregator {
	return &Aggregator{Provider: provider}
}

// Aggregate fan-ins posts from every selected account of one platform into
// a single merged feed, sorted strictly descending by the platform's
// timestamp. A single account's failure never aborts the batch.
func (s *Aggregator) Aggregate(platform tables.Platform, accounts []tables.SocialAccount) ([]AggregatedPost, ConnectionHealth, error) {
	if len(accounts) == 0 {
		return nil, ConnectionHealth{}, errors.New("no accounts selected")
	}

	valid := make([]tables.SocialAccount, 0, len(accounts))
	for _, account := range accounts {
		if account.AccountID != "" {
			valid = append(valid, account)
		}
	}
	if len(valid) == 0 {
		return nil, ConnectionHealth{NeedsReconnect: true},
			errors.New("invalid account configuration, reconnect required")
	}

	driver, err := drivers.GetDriver(platform)
	if err != nil {
		return nil, ConnectionHealth{}, err
	}

	if len(valid) == 1 {
		// Shortcut for the common one-account case, skips merge machinery.
		return s.aggregateSingle(driver, valid[0])
	}

	merged := []AggregatedPost{}
	successCount := 0
	failureClasses := []drivers.FailureClass{}
	var lastErr error
	for _, account := range valid {
		posts, err := s.fetchAccountPosts(driver, account)
		if err != nil {
			failureClass := drivers.ClassifyFailure(err)
			log.Printf("correlationID: %s error fetching %s posts (%s): %s",
				account.AccountID, platform, failureClass, err)
			failureClasses = append(failureClasses, failureClass)
			lastErr = err
			continue
		}
		merged = append(merged, posts...)
		successCount++
	}

	if successCount == 0 {
		return s.aggregateFallback(driver, failureClasses, lastErr)
	}

	sortByTimestampDesc(driver, merged)
	health := ConnectionHealth{Connected: true}
	if successCount < len(valid) {
		health.Warning = fmt.Sprintf("%d of %d accounts loaded", successCount, len(valid))
	}
	return merged, health, nil
}

func (s *Aggregator) aggregateSingle(driver drivers.PlatformDriver, account tables.SocialAccount) ([]AggregatedPost, ConnectionHealth, error) {
	posts, err := s.fetchAccountPosts(driver, account)
	if err != nil {
		failureClass := drivers.ClassifyFailure(err)
		log.Printf("correlationID: %s error fetching %s posts (%s): %s",
			account.AccountID, driver.Platform(), failureClass, err)
		return s.aggregateFallback(driver, []drivers.FailureClass{failureClass}, err)
	}
	sortByTimestampDesc(driver, posts)
	return posts, ConnectionHealth{Connected: true}, nil
}

// aggregateFallback retries once with a platform-level fetch carrying no
// account filter. Best-effort single feed; posts carry no account stamps.
func (s *Aggregator) aggregateFallback(driver drivers.PlatformDriver,
	failureClasses []drivers.FailureClass, accountsErr error) ([]AggregatedPost, ConnectionHealth, error) {
	raw, err := s.Provider.FetchPosts(driver.EndpointName(), "")
	if err != nil {
		log.Printf("platform-level %s fallback fetch failed: %s", driver.Platform(), err)
		return nil, ConnectionHealth{NeedsReconnect: allAuthFailures(failureClasses)}, accountsErr
	}
	posts, err := driver.ParseFeed(raw)
	if err != nil {
		return nil, ConnectionHealth{NeedsReconnect: allAuthFailures(failureClasses)}, accountsErr
	}

	result := make([]AggregatedPost, 0, len(posts))
	for _, post := range posts {
		result = append(result, AggregatedPost(post))
	}
	sortByTimestampDesc(driver, result)
	return result, ConnectionHealth{Connected: true}, nil
}

func (s *Aggregator) fetchAccountPosts(driver drivers.PlatformDriver, account tables.SocialAccount) ([]AggregatedPost, error) {
	raw, err := s.Provider.FetchPosts(driver.EndpointName(), account.AccountID)
	if err != nil {
		return nil, err
	}
	posts, err := driver.ParseFeed(raw)
	if err != nil {
		return nil, err
	}

	stamped := make([]AggregatedPost, 0, len(posts))
	for _, post := range posts {
		post["accountId"] = account.AccountID
		post["accountName"] = account.AccountName()
		post["accountAvatar"] = account.AvatarUrl
		stamped = append(stamped, AggregatedPost(post))
	}
	return stamped, nil
}

// Strictly descending by extracted timestamp. Unparseable timestamps come
// back as the zero instant and sink to the bottom; ties keep merge order.
func sortByTimestampDesc(driver drivers.PlatformDriver, posts []AggregatedPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return driver.ExtractTimestamp(posts[i]).After(driver.ExtractTimestamp(posts[j]))
	})
}

func allAuthFailures(failureClasses []drivers.FailureClass) bool {
	if len(failureClasses) == 0 {
		return false
	}
	for _, failureClass := range failureClasses {
		if failureClass != drivers.FAILURE_AUTH_EXPIRED {
			return false
		}
	}
	return true
}
