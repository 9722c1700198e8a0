package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	config "github.com/draftroom-social-core/v2/configuration"
	dal "github.com/draftroom-social-core/v2/dal"
	tables "github.com/draftroom-social-core/v2/dal/tables/v1"
	"github.com/draftroom-social-core/v2/service/feed"
	requestModels "github.com/draftroom-social-core/v2/service/models"
	"github.com/draftroom-social-core/v2/service/publish"
	drivers "github.com/draftroom-social-core/v2/service/publish/platform-drivers"
)

func HandlerHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Ok")
}

// The authorization gate itself lives upstream; this only rejects callers
// missing the shared service token.
func isAuthorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == config.GetEnvConfigs().ServiceAuthToken
}

type feedResponse struct {
	Posts  []feed.AggregatedPost `json:"posts"`
	Health feed.ConnectionHealth `json:"health"`
	Error  string                `json:"error,omitempty"`
}

func HandlerFeed(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintf(w, "Unauthorized.")
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Route must be called with GET, given %s", r.Method)
		return
	}

	platform := tables.Platform(r.URL.Query().Get("platform"))
	if platform == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Missing platform query parameter")
		return
	}

	accounts, err := dal.ListAccountsByPlatform(platform)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}

	aggregator := feed.NewAggregator(drivers.NewRestProviderClient())
	posts, health, err := aggregator.Aggregate(platform, accounts)
	response := feedResponse{Posts: posts, Health: health}
	if err != nil {
		response.Error = err.Error()
		writeJson(w, http.StatusBadGateway, response)
		return
	}
	writeJson(w, http.StatusOK, response)
}

func HandlerPublish(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintf(w, "Unauthorized.")
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Route must be called with POST, given %s", r.Method)
		return
	}

	decoder := json.NewDecoder(r.Body)
	var payload requestModels.PublishRequest
	if err := decoder.Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, err.Error())
		return
	}

	selection := make([]publish.AccountTarget, 0, len(payload.Selection))
	for _, selected := range payload.Selection {
		selection = append(selection, publish.AccountTarget{
			Platform:  tables.Platform(selected.Platform),
			AccountID: selected.AccountID,
		})
	}
	options := drivers.PublishOptions{
		YouTubeVisibility: payload.Options.YouTubeVisibility,
	}

	orchestrator := publish.NewOrchestrator(drivers.NewRestProviderClient())
	session, err := orchestrator.Publish(payload.DraftID, selection, options)

	var validationErr *publish.ValidationError
	if errors.As(err, &validationErr) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, validationErr.Message)
		return
	}
	if err != nil && session == nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}
	writeJson(w, http.StatusOK, session)
}

func writeJson(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
