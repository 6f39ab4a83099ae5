package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/intervue/intervue-backend/internal/response"
	"github.com/intervue/intervue-backend/internal/session"
	ws "github.com/intervue/intervue-backend/internal/websocket"
)

// WSHandler bridges the browser shell and a live interview controller.
// The shell owns the devices (camera, mic, speech recognizer) and relays
// their output here; the server owns the state machine and pushes every
// state change back as a snapshot event.
type WSHandler struct {
	registry *session.Registry
	upgrader gorilla.Upgrader
	log      zerolog.Logger
}

// NewWSHandler creates a new WSHandler. allowedOrigins follows the CORS
// configuration; "*" disables the origin check.
func NewWSHandler(registry *session.Registry, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	allowAll := false
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		originSet[o] = struct{}{}
	}

	return &WSHandler{
		registry: registry,
		upgrader: gorilla.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := originSet[origin]
				return ok
			},
		},
		log: log.With().Str("component", "ws_handler").Logger(),
	}
}

// Stream godoc
// GET /ws/v1/interviews/:id/stream
// Upgrades to a WebSocket, replays the current snapshot, and then runs
// two loops: one pushing controller events out, one dispatching client
// actions in.
func (h *WSHandler) Stream(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	ctrl := h.registry.Get(id)
	if ctrl == nil {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.With().Str("session_id", id.String()).Logger()
	log.Info().Msg("WebSocket stream opened")

	var writeMu sync.Mutex
	write := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return ws.WriteTyped(conn, v)
	}

	// Initial sync so a reconnecting shell picks up mid-session.
	if err := write(ws.SessionEvent{
		Event:    ws.EventSession,
		Kind:     "sync",
		Snapshot: ctrl.Snapshot(),
	}); err != nil {
		return
	}

	connDone := make(chan struct{})
	var pumpWG sync.WaitGroup
	pumpWG.Add(1)
	go func() {
		defer pumpWG.Done()
		for {
			select {
			case ev := <-ctrl.Events():
				err := write(ws.SessionEvent{
					Event:    ws.EventSession,
					Kind:     string(ev.Kind),
					Snapshot: ev.Snapshot,
				})
				if err != nil {
					conn.Close()
					return
				}
			case <-ctrl.Done():
				return
			case <-connDone:
				return
			}
		}
	}()

	h.readLoop(conn, ctrl, write, log)
	close(connDone)
	pumpWG.Wait()
	log.Info().Msg("WebSocket stream closed")
}

func (h *WSHandler) readLoop(conn *gorilla.Conn, ctrl *session.Interview, write func(interface{}) error, log zerolog.Logger) {
	for {
		var payload ws.RequestPayload
		if err := ws.ReadJSON(conn, &payload); err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseGoingAway, gorilla.CloseNormalClosure) {
				log.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}

		switch payload.Action {
		case ws.ActionTranscript:
			ctrl.Fragment(payload.Text, payload.Final)
		case ws.ActionSTTError:
			ctrl.SpeechError(payload.Code)
		case ws.ActionFaceAbsent:
			ctrl.FaceAbsent(payload.Detail)
		case ws.ActionProctorReady:
			ctrl.ProctorReady()
		case ws.ActionProctorError:
			ctrl.ProctorError(payload.Detail)
		case ws.ActionPing:
			if err := write(ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case ws.ActionEnd:
			ctrl.End()
		default:
			if err := write(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action"}); err != nil {
				return
			}
		}
	}
}
