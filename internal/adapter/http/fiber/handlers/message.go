package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/ports"
)

// MessageHandler receives inbound worker messages, both from the
// WhatsApp webhook and from the dashboard's test console.
type MessageHandler struct {
	pipeline      ports.Pipeline
	delivery      ports.DeliveryService
	users         ports.UserRepository
	conversations ports.ConversationRepository
	log           *zap.Logger
}

func NewMessageHandler(
	pipeline ports.Pipeline,
	delivery ports.DeliveryService,
	users ports.UserRepository,
	conversations ports.ConversationRepository,
	log *zap.Logger,
) *MessageHandler {
	return &MessageHandler{
		pipeline:      pipeline,
		delivery:      delivery,
		users:         users,
		conversations: conversations,
		log:           log,
	}
}

// HandleWebhook is the Twilio inbound-message webhook. Twilio posts
// form-encoded fields; the reply goes back out through the delivery
// service rather than as TwiML so that delivery failures are counted.
func (h *MessageHandler) HandleWebhook(c *fiber.Ctx) error {
	from := strings.TrimPrefix(c.FormValue("From"), "whatsapp:")
	body := c.FormValue("Body")
	sid := c.FormValue("MessageSid")

	if from == "" || strings.TrimSpace(body) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "From and Body are required"})
	}
	if sid == "" {
		sid = uuid.New().String()
	}

	msg := &domain.InboundMessage{
		ID:     sid,
		Phone:  from,
		Text:   body,
		SentAt: time.Now(),
	}

	user, err := h.users.FindByPhone(c.Context(), from)
	if err != nil {
		h.log.Warn("user lookup failed for inbound message",
			zap.String("phone", from),
			zap.Error(err))
	}
	if user != nil {
		msg.UserID = user.ID
		msg.Language = user.PreferredLanguage
	}

	reply := h.pipeline.Process(c.Context(), msg)

	if err := h.delivery.SendMessage(c.Context(), from, reply.Text); err != nil {
		h.log.Error("failed to deliver reply",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return c.SendStatus(fiber.StatusBadGateway)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type MessageRequest struct {
	UserID   string `json:"user_id"`
	Text     string `json:"text"`
	Language string `json:"language"`
}

// HandleMessage runs a message through the pipeline and returns the
// reply without delivering it anywhere. Used by the dashboard console.
func (h *MessageHandler) HandleMessage(c *fiber.Ctx) error {
	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Text is required"})
	}

	msg := &domain.InboundMessage{
		ID:       uuid.New().String(),
		UserID:   req.UserID,
		Text:     req.Text,
		Language: req.Language,
		SentAt:   time.Now(),
	}

	reply := h.pipeline.Process(c.Context(), msg)
	return c.JSON(reply)
}

// GetHistory lists a worker's recent conversation entries.
func (h *MessageHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userID is required"})
	}

	limit := c.QueryInt("limit", 20)
	entries, err := h.conversations.FindRecentByUser(c.Context(), userID, limit)
	if err != nil {
		h.log.Error("failed to load conversation history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load history"})
	}

	return c.JSON(entries)
}
