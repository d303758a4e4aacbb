package httpadapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/application"
	"github.com/stoik/phishcatch/internal/domain"
	"github.com/stoik/phishcatch/internal/domain/traffic"
	"github.com/stoik/phishcatch/internal/logger"
	"github.com/stoik/phishcatch/internal/ports"
)

// EventRouter handles events reported by the extension
type EventRouter interface {
	Route(ctx context.Context, event domain.Event) (domain.RouteResult, error)
	DomainType(ctx context.Context, url string) domain.DomainType
}

// ButtonHandler resolves answered notifications
type ButtonHandler interface {
	HandleButtonClick(ctx context.Context, id string, buttonIndex int) error
}

type Handler struct {
	router     EventRouter
	buttons    ButtonHandler
	surface    ports.NotificationSurface
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(
	router EventRouter,
	buttons ButtonHandler,
	surface ports.NotificationSurface,
	log *slog.Logger,
	mws huma.Middlewares,
) *Handler {
	return &Handler{
		router:     router,
		buttons:    buttons,
		surface:    surface,
		log:        log.With(slog.String("component", "http_api")),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.eventOp(), h.submitEvent)
	huma.Register(api, h.domainOp(), h.classifyDomain)
	huma.Register(api, h.listNotificationsOp(), h.listNotifications)
	huma.Register(api, h.buttonOp(), h.clickButton)
	huma.Register(api, h.conversationOp(), h.inspectConversation)
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func toEvent(req eventRequest) (domain.Event, error) {
	c := req.Content
	switch domain.EventKind(req.MsgType) {
	case domain.EventUsername:
		return domain.UsernameEvent{URL: c.URL, Username: c.Username, DOM: c.DOM}, nil
	case domain.EventPassword:
		return domain.PasswordEvent{URL: c.URL, Username: c.Username, Password: c.Password, Save: c.Save}, nil
	case domain.EventDomString:
		return domain.DomStringEvent{URL: c.URL, DOM: c.DOM}, nil
	default:
		return nil, fmt.Errorf("unknown msgtype %q", req.MsgType)
	}
}

func (h *Handler) submitEvent(ctx context.Context, input *eventInput) (*eventOutput, error) {
	event, err := toEvent(input.Body)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	result, err := h.router.Route(ctx, event)
	if err != nil {
		h.log.Error("Failed to route event", slog.String("msgtype", input.Body.MsgType), logger.Err(err))
		return nil, huma.Error500InternalServerError("failed to route event")
	}

	return &eventOutput{
		Body: eventResponse{
			MsgType:    result.Kind,
			DomainType: result.DomainType,
			Outcome:    result.Outcome,
			DomMatch:   result.DomMatch,
		},
	}, nil
}

func (h *Handler) classifyDomain(ctx context.Context, input *domainInput) (*domainOutput, error) {
	return &domainOutput{
		Body: domainResponse{
			Host: input.Host,
			Type: h.router.DomainType(ctx, input.Host),
		},
	}, nil
}

func (h *Handler) listNotifications(ctx context.Context, _ *struct{}) (*notificationsOutput, error) {
	list, err := h.surface.List(ctx)
	if err != nil {
		h.log.Error("Failed to list notifications", logger.Err(err))
		return nil, huma.Error500InternalServerError("failed to list notifications")
	}
	return &notificationsOutput{Body: list}, nil
}

func (h *Handler) clickButton(ctx context.Context, input *buttonInput) (*struct{}, error) {
	err := h.buttons.HandleButtonClick(ctx, input.ID, input.Index)
	switch {
	case err == nil:
		return nil, nil
	case errors.Is(err, domain.ErrNotFound):
		return nil, huma.Error404NotFound("notification not found")
	case errors.Is(err, application.ErrInvalidButton):
		return nil, huma.Error400BadRequest(err.Error())
	default:
		h.log.Error("Failed to resolve notification", slog.String("notification_id", input.ID), logger.Err(err))
		return nil, huma.Error500InternalServerError("failed to resolve notification")
	}
}

func (h *Handler) inspectConversation(_ context.Context, input *conversationInput) (*conversationOutput, error) {
	conv, err := traffic.ParseConversation(input.RawBody)
	if err != nil {
		h.log.Debug("Dropped conversation body", logger.Err(err))
		return &conversationOutput{Body: conversationResponse{Accepted: false, Reason: "schema mismatch"}}, nil
	}

	last, err := conv.LastUserMessage()
	if err != nil {
		h.log.Debug("Dropped conversation body", logger.Err(err))
		return &conversationOutput{Body: conversationResponse{Accepted: false, Reason: "no messages"}}, nil
	}

	h.log.Info("Outbound chat message",
		slog.String("conversation_id", conv.ConversationID),
		slog.String("model", conv.Model),
		slog.String("message", last),
	)
	return &conversationOutput{Body: conversationResponse{Accepted: true}}, nil
}

func (h *Handler) healthCheck(_ context.Context, _ *struct{}) (*healthOutput, error) {
	h.log.Debug("health check request received")
	return &healthOutput{Body: healthResponse{Status: "OK"}}, nil
}
