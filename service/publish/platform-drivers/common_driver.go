package platformdrivers

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// basePayload carries the semantic inputs every platform shares. Each
// driver layers its own content field names on top.
func basePayload(cmd PublishCommand) map[string]interface{} {
	return map[string]interface{}{
		"mediaUrls":  cmd.Draft.MediaUrls,
		"accountIds": cmd.AccountIDs,
	}
}

// parseGroupResults zips a provider results array positionally against the
// group's account ids. A response without a results array is a bare success
// object: the provider gave no per-account breakdown, so the whole group is
// treated as published. Best-effort fallback, the provider contract does
// not always include per-account results.
func parseGroupResults(raw []byte, accountIds []string) ([]PerAccountResult, error) {
	body := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			log.Printf("error unmarshalling provider publish response: %s", err)
			return nil, err
		}
	}

	rawResults, ok := body["results"].([]interface{})
	if !ok {
		return UniformSuccess(accountIds), nil
	}

	results := make([]PerAccountResult, 0, len(accountIds))
	for i, accountId := range accountIds {
		if i >= len(rawResults) {
			results = append(results, PerAccountResult{
				AccountID: accountId,
				Status:    RESULT_ERROR,
				Error:     "provider omitted result for account",
			})
			continue
		}
		entry, _ := rawResults[i].(map[string]interface{})
		if isOk, _ := entry["ok"].(bool); isOk {
			results = append(results, PerAccountResult{
				AccountID: accountId,
				Status:    RESULT_SUCCESS,
				Raw:       entry,
			})
			continue
		}
		errMessage, _ := entry["error"].(string)
		if errMessage == "" {
			errMessage = "provider reported failure"
		}
		results = append(results, PerAccountResult{
			AccountID: accountId,
			Status:    RESULT_ERROR,
			Error:     errMessage,
			Raw:       entry,
		})
	}
	return results, nil
}

func UniformSuccess(accountIds []string) []PerAccountResult {
	results := make([]PerAccountResult, 0, len(accountIds))
	for _, accountId := range accountIds {
		results = append(results, PerAccountResult{AccountID: accountId, Status: RESULT_SUCCESS})
	}
	return results
}

func UniformFailure(accountIds []string, errMessage string) []PerAccountResult {
	results := make([]PerAccountResult, 0, len(accountIds))
	for _, accountId := range accountIds {
		results = append(results, PerAccountResult{AccountID: accountId, Status: RESULT_ERROR, Error: errMessage})
	}
	return results
}

// unwrapFeed flattens a platform feed response into a post list. Platforms
// either return a top-level array (nestedField "") or nest posts under a
// platform-specific field name.
func unwrapFeed(raw []byte, nestedField string) ([]map[string]interface{}, error) {
	var rawPosts []interface{}
	if nestedField == "" {
		if err := json.Unmarshal(raw, &rawPosts); err != nil {
			return nil, fmt.Errorf("error unmarshalling top-level feed array: %s", err)
		}
	} else {
		body := map[string]interface{}{}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("error unmarshalling feed response: %s", err)
		}
		nested, ok := body[nestedField].([]interface{})
		if !ok {
			return []map[string]interface{}{}, nil
		}
		rawPosts = nested
	}

	posts := make([]map[string]interface{}, 0, len(rawPosts))
	for _, p := range rawPosts {
		if post, ok := p.(map[string]interface{}); ok {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// parseTimeField reads a string timestamp off a post. Missing or
// unparseable values sort as the oldest possible instant.
func parseTimeField(post map[string]interface{}, field string, layout string) time.Time {
	value, ok := post[field].(string)
	if !ok {
		return time.Time{}
	}
	parsed, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// parseUnixField reads an epoch-seconds timestamp off a post.
func parseUnixField(post map[string]interface{}, field string) time.Time {
	value, ok := post[field].(float64)
	if !ok {
		return time.Time{}
	}
	return time.Unix(int64(value), 0).UTC()
}
