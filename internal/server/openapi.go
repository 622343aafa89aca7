package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/cluehunt/internal/store"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "ClueHunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the ClueHunt scavenger-hunt game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/auth/register
	postRegister, _ := r.NewOperationContext(http.MethodPost, "/api/auth/register")
	postRegister.SetSummary("Register")
	postRegister.SetDescription("Creates a user with an empty game profile and returns a session token.")
	postRegister.AddReqStructure(RegisterRequest{})
	postRegister.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postRegister)

	// POST /api/auth/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/auth/login")
	postLogin.SetSummary("Login")
	postLogin.SetDescription("Authenticates with email and password and returns a session token.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// GET /api/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/me")
	getMe.SetSummary("Current profile")
	getMe.SetDescription("Returns the caller's game profile. Requires Bearer token.")
	getMe.AddRespStructure(ProfileInfo{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// POST /api/game/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/game/start")
	postStart.SetSummary("Start game")
	postStart.SetDescription("Enrolls the caller in an event and unlocks its first clue. Requires Bearer token.")
	postStart.AddReqStructure(StartGameRequest{})
	postStart.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postStart)

	// POST /api/game/requests
	postRequest, _ := r.NewOperationContext(http.MethodPost, "/api/game/requests")
	postRequest.SetSummary("Request to join an event")
	postRequest.SetDescription("Creates a pending join request an admin can approve. Requires Bearer token.")
	postRequest.AddReqStructure(JoinRequestRequest{})
	postRequest.AddRespStructure(JoinRequestResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postRequest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postRequest)

	// GET /api/game/events/{eventID}/clues
	getClues, _ := r.NewOperationContext(http.MethodGet, "/api/game/events/{eventID}/clues")
	getClues.SetSummary("Clue view")
	getClues.SetDescription("Returns the event's clues in sequence order with the caller's lock and completion state. Requires Bearer token.")
	getClues.AddReqStructure(struct {
		EventID string `path:"eventID"`
	}{})
	getClues.AddRespStructure([]ClueInfo{}, openapi.WithHTTPStatus(http.StatusOK))
	getClues.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getClues)

	// GET /api/game/events/{eventID}/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/game/events/{eventID}/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Returns the event's participants ordered by total XP. Requires Bearer token.")
	getBoard.AddReqStructure(struct {
		EventID string `path:"eventID"`
	}{})
	getBoard.AddRespStructure([]store.LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getBoard)

	// POST /api/game/complete
	postComplete, _ := r.NewOperationContext(http.MethodPost, "/api/game/complete")
	postComplete.SetSummary("Complete clue")
	postComplete.SetDescription("Checks the answer, marks the clue completed, unlocks the next clue, and grants the reward once. Requires Bearer token.")
	postComplete.AddReqStructure(CompleteClueRequest{})
	postComplete.AddRespStructure(CompleteClueResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postComplete.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postComplete.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	postComplete.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postComplete)

	// POST /api/game/skip
	postSkip, _ := r.NewOperationContext(http.MethodPost, "/api/game/skip")
	postSkip.SetSummary("Skip clue")
	postSkip.SetDescription("Marks the clue completed and unlocks the next clue without granting any reward. Requires Bearer token.")
	postSkip.AddReqStructure(SkipClueRequest{})
	postSkip.AddRespStructure(CompleteClueResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSkip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postSkip)

	// POST /api/game/sabotage
	postSabotage, _ := r.NewOperationContext(http.MethodPost, "/api/game/sabotage")
	postSabotage.SetSummary("Sabotage rival")
	postSabotage.SetDescription("Spends coins to freeze a rival's profile for a few minutes. Requires Bearer token.")
	postSabotage.AddReqStructure(SabotageRequest{})
	postSabotage.AddRespStructure(SabotageResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSabotage.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postSabotage.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postSabotage)

	// GET /api/game/stream
	getStream, _ := r.NewOperationContext(http.MethodGet, "/api/game/stream")
	getStream.SetSummary("SSE event stream")
	getStream.SetDescription("Server-Sent Events stream for real-time game updates. Pass token as query parameter.")
	getStream.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getStream)

	// POST /api/payments/orders
	postOrder, _ := r.NewOperationContext(http.MethodPost, "/api/payments/orders")
	postOrder.SetSummary("Create payment order")
	postOrder.SetDescription("Creates a coin purchase order with the payment provider. Requires Bearer token.")
	postOrder.AddReqStructure(CreateOrderRequest{})
	postOrder.AddRespStructure(CreateOrderResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postOrder.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(postOrder)

	// POST /api/webhooks/pagoapago
	postWebhook, _ := r.NewOperationContext(http.MethodPost, "/api/webhooks/pagoapago")
	postWebhook.SetSummary("Payment webhook")
	postWebhook.SetDescription("Provider callback with the order status. Credits coins on the first paid delivery.")
	postWebhook.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postWebhook.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postWebhook)

	// POST /api/admin/events
	postEvent, _ := r.NewOperationContext(http.MethodPost, "/api/admin/events")
	postEvent.SetSummary("Create event")
	postEvent.SetDescription("Creates an empty event. Requires an admin session.")
	postEvent.AddReqStructure(CreateEventRequest{})
	postEvent.AddRespStructure(CreateEventResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postEvent)

	// POST /api/admin/events/{eventID}/clues
	postClues, _ := r.NewOperationContext(http.MethodPost, "/api/admin/events/{eventID}/clues")
	postClues.SetSummary("Author clues")
	postClues.SetDescription("Appends a batch of clues to the event's sequence. Requires an admin session.")
	postClues.AddReqStructure(struct {
		EventID string `path:"eventID"`
	}{})
	postClues.AddReqStructure(CreateCluesRequest{})
	postClues.AddRespStructure(CreateCluesResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postClues.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postClues.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(postClues)

	// POST /api/admin/requests/{requestID}/approve
	postApprove, _ := r.NewOperationContext(http.MethodPost, "/api/admin/requests/{requestID}/approve")
	postApprove.SetSummary("Approve join request")
	postApprove.SetDescription("Approves a pending join request and creates the game player. Requires an admin session.")
	postApprove.AddReqStructure(struct {
		RequestID string `path:"requestID"`
	}{})
	postApprove.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postApprove.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postApprove.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postApprove)

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
