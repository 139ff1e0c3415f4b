package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/moon-community/fto-queue-service/internal/api/dto"
	"github.com/moon-community/fto-queue-service/internal/domain"
	"github.com/moon-community/fto-queue-service/internal/service"
	"github.com/moon-community/fto-queue-service/internal/statusboard"
	apperrors "github.com/moon-community/fto-queue-service/pkg/util"
)

// BoardHandler serves read-only board snapshots rebuilt from the
// authoritative active rows, not from the best-effort Redis view.
type BoardHandler struct {
	queue *service.QueueService
}

// NewBoardHandler constructs handler.
func NewBoardHandler(queue *service.QueueService) *BoardHandler {
	return &BoardHandler{queue: queue}
}

// Get handles GET /boards/:channel_id/:message_id.
func (h *BoardHandler) Get(c *fiber.Ctx) error {
	channelID, err := strconv.ParseInt(c.Params("channel_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid channel_id", nil)
	}
	messageID, err := strconv.ParseInt(c.Params("message_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid message_id", nil)
	}

	board := domain.BoardRef{ChannelID: channelID, MessageID: messageID}
	lists, err := h.queue.WaitingLists(c.UserContext(), board)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{"data": dto.BoardResponse{
		ChannelID:    channelID,
		MessageID:    messageID,
		Probationers: lists[statusboard.ListProbationers],
		Officers:     lists[statusboard.ListOfficers],
	}})
}
