package hub

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/ShryukGrandhi/urban/internal/orchestrator"
	"github.com/ShryukGrandhi/urban/pkg/models"
)

// ClientMessage is one request read from a websocket client.
type ClientMessage struct {
	Type           string             `json:"type"`
	Category       models.Category    `json:"category,omitempty"`
	Description    string             `json:"description,omitempty"`
	SimulationData map[string]any     `json:"simulation_data,omitempty"`
	PolicyData     map[string]any     `json:"policy_data,omitempty"`
	CustomInput    map[string]any     `json:"custom_input,omitempty"`
	Config         *models.TaskConfig `json:"config,omitempty"`
}

// ServerMessage is one response written to a websocket client, either a
// relayed task event or a direct reply to a request.
type ServerMessage struct {
	Type       string              `json:"type"`
	Event      *orchestrator.Event `json:"event,omitempty"`
	Stats      *orchestrator.Stats `json:"stats,omitempty"`
	Categories []models.Category   `json:"categories,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// Handler upgrades HTTP requests to websocket subscriptions. Every
// connection receives all broadcast task events; execute requests start
// tasks whose events reach every connection, not just the requester.
type Handler struct {
	hub    *Hub
	orch   *orchestrator.Orchestrator
	logger *log.Logger
}

// NewHandler builds the websocket handler over hub and orch.
func NewHandler(hub *Hub, orch *orchestrator.Orchestrator) *Handler {
	return &Handler{
		hub:    hub,
		orch:   orch,
		logger: log.Default(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Printf("[hub] websocket accept failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	h.handleConnection(r.Context(), conn)
}

// connState serializes websocket writes: the event forwarder and the
// request loop both write to the same conn.
type connState struct {
	writeMu sync.Mutex
}

func (h *Handler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	id := uuid.NewString()
	events := h.hub.Connect(id)
	defer h.hub.Disconnect(id)

	state := &connState{}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		for ev := range events {
			ev := ev
			msg := ServerMessage{Type: "task_event", Event: &ev}
			if err := h.send(ctx, conn, state, msg); err != nil {
				h.logger.Printf("[hub] forward to %s failed: %v", id, err)
				cancel()
				return
			}
		}
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			h.logger.Printf("[hub] subscriber %s read ended: %v", id, err)
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendError(ctx, conn, state, "invalid message format")
			continue
		}

		switch msg.Type {
		case "execute":
			if err := h.handleExecute(ctx, msg); err != nil {
				h.sendError(ctx, conn, state, err.Error())
			}

		case "stats":
			stats := h.orch.Stats()
			h.send(ctx, conn, state, ServerMessage{Type: "stats", Stats: &stats})

		case "categories":
			h.send(ctx, conn, state, ServerMessage{Type: "categories", Categories: h.orch.Categories()})

		case "clear_context":
			h.orch.ClearContext()
			h.send(ctx, conn, state, ServerMessage{Type: "context_cleared"})

		default:
			h.sendError(ctx, conn, state, "unknown message type")
		}
	}
}

// handleExecute starts the requested task. Its events reach this and every
// other subscriber through the broadcast path, so the returned stream only
// needs draining.
func (h *Handler) handleExecute(ctx context.Context, msg ClientMessage) error {
	stream, err := h.orch.RunStream(context.WithoutCancel(ctx), orchestrator.TaskRequest{
		Category:       msg.Category,
		Description:    msg.Description,
		SimulationData: msg.SimulationData,
		PolicyData:     msg.PolicyData,
		CustomInput:    msg.CustomInput,
		Config:         msg.Config,
	})
	if err != nil {
		return err
	}

	go func() {
		for range stream {
		}
	}()
	return nil
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, state *connState, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	state.writeMu.Lock()
	defer state.writeMu.Unlock()
	return conn.Write(ctx, websocket.MessageText, data)
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, state *connState, errMsg string) {
	h.send(ctx, conn, state, ServerMessage{Type: "error", Error: errMsg})
}
