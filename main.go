package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	config "github.com/draftroom-social-core/v2/configuration"
	dynamo_configuration "github.com/draftroom-social-core/v2/configuration/dynamo"
	handlers "github.com/draftroom-social-core/v2/handlers"
)

const route_health = "/health"

// Fan-in/fan-out orchestrator surface
const route_feed = "/v1/feed"       // merged per-platform feed across connected accounts
const route_publish = "/v1/publish" // fan one draft out across platforms/accounts

func main() {
	godotenv.Load() // best-effort, AWS creds may come from the environment

	http.HandleFunc(route_health, handlers.HandlerHealthCheck)
	http.HandleFunc(route_feed, handlers.HandlerFeed)
	http.HandleFunc(route_publish, handlers.HandlerPublish)

	config.GetEnvConfigs()
	dynamo_configuration.Init()
	log.Fatal(http.ListenAndServe(":8080", nil))
}
