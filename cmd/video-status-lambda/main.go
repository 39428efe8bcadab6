// Package main provides a Lambda entry point for the game video status API.
//
// The app's front end polls this endpoint while a game's video is being
// processed instead of reading the Game table directly.
//
// Endpoints:
//
//	GET /api/health                  health check
//	GET /api/games/{gameId}/video    processing status, rendition and thumbnail URLs
package main

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/courtside/game-video/internal/lambdaboot"
	"github.com/courtside/game-video/internal/logging"
	"github.com/courtside/game-video/internal/store"
)

// recordReader is the read side of store.GameStore.
type recordReader interface {
	GetProcessingRecord(ctx context.Context, gameID string) (*store.ProcessingRecord, error)
}

// records is initialized at cold start.
var records recordReader

// gameIDRegex allows the identifiers the app generates plus human-entered
// ids: alphanumeric first character, then alphanumerics, dots, hyphens,
// underscores, and spaces.
var gameIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._ -]{0,127}$`)

// initClients runs at cold start. It is called from main rather than init so
// the handlers can be tested without AWS configuration.
func initClients() {
	initStart := time.Now()
	logging.Init()

	awsClients := lambdaboot.InitAWS()
	gameStore := lambdaboot.InitGameStore(awsClients.Config, lambdaboot.GameTableEnvVar)
	records = gameStore

	lambdaboot.StartupLog("video-status-lambda", initStart).
		CommitHash(commitHash).
		BuildTime(buildTime).
		DynamoTable("games", gameStore.TableName()).
		Log()
}

func main() {
	initClients()
	adapter := httpadapter.NewV2(newMux())
	lambda.Start(adapter.ProxyWithContext)
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", handleHealth)
	mux.HandleFunc("/api/games/", handleGameRoutes)
	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "courtside-game-video",
		"version": commitHash,
	})
}

// handleGameRoutes dispatches /api/games/{gameId}/video.
func handleGameRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/games/"), "/")
	if len(parts) != 2 || parts[1] != "video" {
		httpError(w, http.StatusBadRequest, "expected /api/games/{gameId}/video")
		return
	}
	gameID := parts[0]
	if !gameIDRegex.MatchString(gameID) {
		httpError(w, http.StatusBadRequest, "invalid gameId")
		return
	}
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	handleGetVideo(w, r, gameID)
}

// GET /api/games/{gameId}/video
func handleGetVideo(w http.ResponseWriter, r *http.Request, gameID string) {
	rec, err := records.GetProcessingRecord(r.Context(), gameID)
	if errors.Is(err, store.ErrGameNotFound) || (err == nil && rec == nil) {
		httpError(w, http.StatusNotFound, "game not found")
		return
	}
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to read game", err.Error())
		return
	}

	log.Debug().
		Str("gameId", gameID).
		Str("status", rec.Status.String()).
		Msg("Served video status")
	respondJSON(w, http.StatusOK, rec)
}
