package platformdrivers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	config "github.com/draftroom-social-core/v2/configuration"
)

// ProviderAPI is the transport to the provider gateway. One logical publish
// endpoint and one logical read endpoint per platform.
type ProviderAPI interface {
	// PublishPost posts one platform group's payload to POST {base}/{platform}/post.
	PublishPost(endpointName string, payload map[string]interface{}) (ProviderResponse, error)
	// FetchPosts reads GET {base}/{platform}/posts, optionally filtered by
	// a single accountId. Empty accountId means the provider's default feed.
	FetchPosts(endpointName string, accountId string) ([]byte, error)
}

type ProviderResponse struct {
	StatusCode int
	Body       []byte
}

type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}

type FailureClass string

const (
	FAILURE_AUTH_EXPIRED FailureClass = "AuthExpired"
	FAILURE_BAD_REQUEST  FailureClass = "BadRequest"
	FAILURE_SERVER_ERROR FailureClass = "ServerError"
	FAILURE_OTHER        FailureClass = "Other"
)

func ClassifyFailure(err error) FailureClass {
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		return FAILURE_OTHER
	}
	switch {
	case providerErr.StatusCode == http.StatusUnauthorized || providerErr.StatusCode == http.StatusForbidden:
		return FAILURE_AUTH_EXPIRED
	case providerErr.StatusCode >= 400 && providerErr.StatusCode < 500:
		return FAILURE_BAD_REQUEST
	case providerErr.StatusCode >= 500:
		return FAILURE_SERVER_ERROR
	}
	return FAILURE_OTHER
}

// RestProviderClient is the production ProviderAPI. Timeouts are whatever
// the underlying transport defaults to; nothing is imposed here.
type RestProviderClient struct {
	BaseUrl string
	Client  *http.Client
}

func NewRestProviderClient() *RestProviderClient {
	return &RestProviderClient{
		BaseUrl: config.GetEnvConfigs().ProviderApiBaseUrl,
		Client:  http.DefaultClient,
	}
}

func (c *RestProviderClient) PublishPost(endpointName string, payload map[string]interface{}) (ProviderResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("error marshalling provider payload for %s: %s", endpointName, err)
		return ProviderResponse{}, err
	}

	postUrl := fmt.Sprintf("%s/%s/post", c.BaseUrl, endpointName)
	resp, err := c.Client.Post(postUrl, "application/json", bytes.NewReader(body))
	if err != nil {
		return ProviderResponse{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ProviderResponse{StatusCode: resp.StatusCode}, err
	}

	result := ProviderResponse{StatusCode: resp.StatusCode, Body: respBody}
	if resp.StatusCode >= 400 {
		return result, &ProviderError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return result, nil
}

func (c *RestProviderClient) FetchPosts(endpointName string, accountId string) ([]byte, error) {
	fetchUrl := fmt.Sprintf("%s/%s/posts", c.BaseUrl, endpointName)
	if accountId != "" {
		fetchUrl = fmt.Sprintf("%s?accountId=%s", fetchUrl, url.QueryEscape(accountId))
	}

	resp, err := c.Client.Get(fetchUrl)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return respBody, nil
}
