package server

import (
	"encoding/json"
	"net/http"
	"strings"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/tambola/internal/game"
	"github.com/playperu/tambola/internal/handler/health"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomPath and GamePath describe path parameters for the document.
type RoomPath struct {
	RoomID string `path:"roomID"`
}

type GamePath struct {
	GameID string `path:"gameID"`
}

type operation struct {
	method      string
	path        string
	summary     string
	description string
	req         any
	resp        any
	status      int
	contentType string
	errors      []int
}

var operations = []operation{
	{
		method:      http.MethodGet,
		path:        "/healthz",
		summary:     "Health check",
		description: "Returns the health of backend dependencies and the number of live rooms.",
		resp:        health.Response{},
		status:      http.StatusOK,
		errors:      []int{http.StatusServiceUnavailable},
	},
	{
		method:      http.MethodPost,
		path:        "/api/rooms",
		summary:     "Create room",
		description: "Creates a room with the given configuration and joins the caller as host.",
		req:         CreateRoomRequest{},
		resp:        CreateRoomResponse{},
		status:      http.StatusCreated,
		errors:      []int{http.StatusBadRequest, http.StatusUnprocessableEntity},
	},
	{
		method:      http.MethodGet,
		path:        "/api/rooms/{roomID}",
		summary:     "Room snapshot",
		description: "Returns the public state of a room.",
		resp:        game.Snapshot{},
		status:      http.StatusOK,
		errors:      []int{http.StatusNotFound},
	},
	{
		method:      http.MethodPost,
		path:        "/api/rooms/{roomID}/players",
		summary:     "Join room",
		description: "Adds a player to a room that has not started yet.",
		req: struct {
			RoomPath
			JoinRoomRequest
		}{},
		resp:   game.JoinResult{},
		status: http.StatusCreated,
		errors: []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	},
	{
		method:      http.MethodDelete,
		path:        "/api/rooms/{roomID}/players/me",
		summary:     "Leave room",
		description: "Removes the calling player. Requires Bearer player id.",
		status:      http.StatusNoContent,
		errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	},
	{
		method:      http.MethodPost,
		path:        "/api/rooms/{roomID}/ticket",
		summary:     "Request ticket",
		description: "Returns the caller's ticket, generating it on the first request.",
		resp:        TicketResponse{},
		status:      http.StatusOK,
		errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	},
	{
		method:      http.MethodPost,
		path:        "/api/rooms/{roomID}/start",
		summary:     "Start game",
		description: "Host only. Starts the game and, with automatic calling, the draw timer.",
		resp:        game.Snapshot{},
		status:      http.StatusOK,
		errors:      []int{http.StatusForbidden, http.StatusNotFound, http.StatusConflict},
	},
	{
		method:      http.MethodPut,
		path:        "/api/rooms/{roomID}/calling",
		summary:     "Configure calling",
		description: "Host only. Changes the calling interval or switches automatic calling.",
		req: struct {
			RoomPath
			game.CallingUpdate
		}{},
		resp:   game.Snapshot{},
		status: http.StatusOK,
		errors: []int{http.StatusBadRequest, http.StatusForbidden, http.StatusConflict},
	},
	{
		method:      http.MethodPost,
		path:        "/api/rooms/{roomID}/calling/pause",
		summary:     "Pause calling",
		description: "Host only. Suspends automatic draws.",
		resp:        game.Snapshot{},
		status:      http.StatusOK,
		errors:      []int{http.StatusForbidden, http.StatusConflict},
	},
	{
		method:      http.MethodPost,
		path:        "/api/rooms/{roomID}/calling/resume",
		summary:     "Resume calling",
		description: "Host only. Resumes automatic draws.",
		resp:        game.Snapshot{},
		status:      http.StatusOK,
		errors:      []int{http.StatusForbidden, http.StatusConflict},
	},
	{
		method:      http.MethodPost,
		path:        "/api/rooms/{roomID}/draw",
		summary:     "Draw number",
		description: "Host only. Calls the next number while automatic calling is off.",
		resp:        DrawResponse{},
		status:      http.StatusOK,
		errors:      []int{http.StatusForbidden, http.StatusConflict},
	},
	{
		method:      http.MethodPost,
		path:        "/api/rooms/{roomID}/stop",
		summary:     "Stop game",
		description: "Host only. Ends the game and archives it.",
		resp:        game.Snapshot{},
		status:      http.StatusOK,
		errors:      []int{http.StatusForbidden, http.StatusConflict},
	},
	{
		method:      http.MethodPost,
		path:        "/api/rooms/{roomID}/claims",
		summary:     "Claim prize",
		description: "Validates the claim against the called numbers and awards the prize to the first valid claimant.",
		req: struct {
			RoomPath
			ClaimRequest
		}{},
		resp:   game.ClaimResult{},
		status: http.StatusOK,
		errors: []int{http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity},
	},
	{
		method:      http.MethodPost,
		path:        "/api/rooms/{roomID}/strikes",
		summary:     "Strike number",
		description: "Broadcasts that the caller struck a called number on their ticket.",
		req: struct {
			RoomPath
			StrikeRequest
		}{},
		status: http.StatusNoContent,
		errors: []int{http.StatusBadRequest, http.StatusConflict},
	},
	{
		method:      http.MethodGet,
		path:        "/api/rooms/{roomID}/events",
		summary:     "Room event stream",
		description: "Server-Sent Events stream of room events, starting with a room_state snapshot.",
		status:      http.StatusOK,
		contentType: "text/event-stream",
		errors:      []int{http.StatusNotFound},
	},
	{
		method:      http.MethodGet,
		path:        "/api/rooms/{roomID}/chat",
		summary:     "Chat history",
		description: "Returns the latest chat messages of a room, oldest first.",
		resp:        []game.ChatMessage{},
		status:      http.StatusOK,
	},
	{
		method:      http.MethodGet,
		path:        "/ws/rooms/{roomID}",
		summary:     "Room WebSocket",
		description: "Duplex connection to a room. ?player= reconnects; ?name= joins.",
		status:      http.StatusSwitchingProtocols,
		contentType: "text/plain",
		errors:      []int{http.StatusNotFound, http.StatusConflict},
	},
	{
		method:      http.MethodGet,
		path:        "/api/games",
		summary:     "List archived games",
		description: "Returns the most recently completed games first.",
		resp:        []GameListItem{},
		status:      http.StatusOK,
	},
	{
		method:      http.MethodGet,
		path:        "/api/games/{gameID}",
		summary:     "Get archived game",
		description: "Returns the full summary of a completed game.",
		resp:        game.GameSummary{},
		status:      http.StatusOK,
		errors:      []int{http.StatusNotFound},
	},
	{
		method:  http.MethodDelete,
		path:    "/api/games/{gameID}",
		summary: "Delete archived game",
		status:  http.StatusNoContent,
		errors:  []int{http.StatusNotFound},
	},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Tambola API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Multiplayer Tambola (Housie) room server.")

	for _, op := range operations {
		oc, _ := r.NewOperationContext(op.method, op.path)
		oc.SetSummary(op.summary)
		if op.description != "" {
			oc.SetDescription(op.description)
		}
		req := op.req
		if req == nil {
			switch {
			case strings.Contains(op.path, "{roomID}"):
				req = RoomPath{}
			case strings.Contains(op.path, "{gameID}"):
				req = GamePath{}
			}
		}
		if req != nil {
			oc.AddReqStructure(req)
		}
		if op.contentType != "" {
			oc.AddRespStructure(nil, openapi.WithHTTPStatus(op.status), openapi.WithContentType(op.contentType))
		} else {
			oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(op.status))
		}
		for _, status := range op.errors {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
