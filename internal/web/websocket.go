package web

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/karolswdev/careplan/internal/plan"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Websocket message types sent by the server.
const (
	MessageStatus = "status"
	MessagePlan   = "plan"
	MessageError  = "error"

	StatePlanning = "planning"
)

// SocketMessage is one server-to-client websocket frame.
type SocketMessage struct {
	Type  string        `json:"type"`
	State string        `json:"state,omitempty"`
	Plan  *PlanResponse `json:"plan,omitempty"`
	Error *APIError     `json:"error,omitempty"`
}

// handlePlanSocket reads study requests one at a time and answers each with a "planning"
// status followed by the plan or an error. The next request is not read until the current
// one has been answered.
func (s *Server) handlePlanSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestIDFrom(c)).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	reqID := requestIDFrom(c)
	log.Debug().Str("request_id", reqID).Msg("Plan websocket connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("request_id", reqID).Msg("Plan websocket closed unexpectedly")
			}
			return
		}

		var req plan.StudyRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if !s.send(conn, SocketMessage{Type: MessageError, Error: &APIError{Code: ErrorBadRequest, Message: "message must be a JSON study request"}}) {
				return
			}
			continue
		}

		if !s.send(conn, SocketMessage{Type: MessageStatus, State: StatePlanning}) {
			return
		}

		if !s.send(conn, s.answer(c, req)) {
			return
		}
	}
}

func (s *Server) answer(c *gin.Context, req plan.StudyRequest) SocketMessage {
	if !s.limiter.tryAcquire() {
		_, apiErr := newAPIError(ErrServerBusy, false)
		return SocketMessage{Type: MessageError, Error: apiErr}
	}
	defer s.limiter.release()

	res, err := s.generate(c.Request.Context(), req)
	if err != nil {
		if !isInputError(err) {
			log.Error().Err(err).Str("request_id", requestIDFrom(c)).Msg("Plan generation failed")
		}
		_, apiErr := newAPIError(err, s.opts.ShowErrorDetails)
		return SocketMessage{Type: MessageError, Error: apiErr}
	}
	resp := newPlanResponse(res)
	return SocketMessage{Type: MessagePlan, Plan: &resp}
}

func (s *Server) send(conn *websocket.Conn, msg SocketMessage) bool {
	if err := conn.WriteJSON(msg); err != nil {
		log.Warn().Err(err).Str("type", msg.Type).Msg("Failed to write websocket message")
		return false
	}
	return true
}
