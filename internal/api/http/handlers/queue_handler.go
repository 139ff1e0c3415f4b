package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/moon-community/fto-queue-service/internal/api/dto"
	"github.com/moon-community/fto-queue-service/internal/auth"
	"github.com/moon-community/fto-queue-service/internal/domain"
	"github.com/moon-community/fto-queue-service/internal/roles"
	"github.com/moon-community/fto-queue-service/internal/service"
	apperrors "github.com/moon-community/fto-queue-service/pkg/util"
)

// QueueHandler exposes the join/leave interaction endpoints the gateway
// calls when a member presses a queue button.
type QueueHandler struct {
	queue            *service.QueueService
	officerRole      string
	probationaryRole string
}

// NewQueueHandler constructs handler.
func NewQueueHandler(queue *service.QueueService, officerRole, probationaryRole string) *QueueHandler {
	return &QueueHandler{queue: queue, officerRole: officerRole, probationaryRole: probationaryRole}
}

// Join handles POST /interactions/queue/join.
func (h *QueueHandler) Join(c *fiber.Ctx) error {
	principal, board, err := h.interactionContext(c)
	if err != nil {
		return err
	}

	actor := service.Actor{ID: principal.ActorID, DisplayName: principal.DisplayName}

	var result *service.JoinResult
	if len(principal.Capabilities) > 0 {
		// The gateway already attached the member's platform roles to the
		// token; no roles API round trip needed.
		role, roleErr := roles.FromRoleNames(principal.Capabilities, h.officerRole, h.probationaryRole)
		if roleErr != nil {
			return apperrors.MapError(roleErr)
		}
		result, err = h.queue.JoinAs(c.UserContext(), board, actor, role)
	} else {
		result, err = h.queue.Join(c.UserContext(), board, actor)
	}
	if err != nil {
		return apperrors.MapError(err)
	}

	resp := dto.JoinResponse{Status: "waiting"}
	if result.Paired {
		resp.Status = "paired"
		resp.Peer = &dto.PeerResponse{
			ActorID:     result.Peer.ActorID(),
			DisplayName: result.Peer.DisplayName,
			Role:        string(result.Peer.Role()),
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": resp})
}

// Leave handles POST /interactions/queue/leave.
func (h *QueueHandler) Leave(c *fiber.Ctx) error {
	principal, board, err := h.interactionContext(c)
	if err != nil {
		return err
	}

	if err := h.queue.Leave(c.UserContext(), board, principal.ActorID); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.LeaveResponse{Status: "left"}})
}

func (h *QueueHandler) interactionContext(c *fiber.Ctx) (*auth.Principal, domain.BoardRef, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, domain.BoardRef{}, apperrors.NewUnauthorized("authentication required")
	}

	var req dto.QueueInteractionRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, domain.BoardRef{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ChannelID == 0 || req.MessageID == 0 {
		return nil, domain.BoardRef{}, apperrors.NewValidationError("channel_id and message_id required", nil)
	}

	return principal, domain.BoardRef{ChannelID: req.ChannelID, MessageID: req.MessageID}, nil
}
