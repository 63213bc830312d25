package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/bubble/internal/app/orch"
	"github.com/dkeye/bubble/internal/domain"
)

type handlers struct {
	orch *orch.Orchestrator
}

type EnterRequest struct {
	Room    string   `json:"room"`
	Name    string   `json:"name"`
	Servers []string `json:"servers"`
}

type MessageRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *handlers) enterRoom(c *gin.Context) {
	var req EnterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrorInvalidArgument.String(), Message: "invalid body"})
		return
	}
	err := h.orch.EnterRoom(c.Request.Context(), orch.EnterRequest{Room: req.Room, Endpoints: req.Servers, User: req.Name})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) leaveRoom(c *gin.Context) {
	if err := h.orch.LeaveRoom(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) currentRoom(c *gin.Context) {
	room, state := h.orch.Current()
	c.JSON(http.StatusOK, gin.H{"room": room, "state": state.String(), "name": h.orch.User()})
}

func (h *handlers) listRooms(c *gin.Context) {
	set, err := h.orch.ListRooms(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	rooms := set.Sorted()
	if rooms == nil {
		rooms = []domain.RoomID{}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *handlers) sendMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: domain.ErrorInvalidArgument.String(), Message: "invalid body"})
		return
	}
	if err := h.orch.SendMessage(c.Request.Context(), req.Name, req.Message); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case domain.ErrorInvalidArgument:
		status = http.StatusBadRequest
	case domain.ErrorNotInRoom, domain.ErrorAlreadyInitialized:
		status = http.StatusConflict
	case domain.ErrorConnection, domain.ErrorSubscription, domain.ErrorSend:
		status = http.StatusBadGateway
	}
	c.JSON(status, ErrorResponse{Error: code.String(), Message: code.Notice()})
}
