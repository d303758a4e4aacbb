package httpadapter

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) eventOp() huma.Operation {
	return huma.Operation{
		OperationID: "events-submit",
		Method:      http.MethodPost,
		Path:        "/api/v1/events",
		Summary:     "Submit a page event",
		Description: "Routes a username, password or domstring event captured by the extension",
		Tags:        []string{"events"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) domainOp() huma.Operation {
	return huma.Operation{
		OperationID: "domains-classify",
		Method:      http.MethodGet,
		Path:        "/api/v1/domains/{host}",
		Summary:     "Classify a host",
		Tags:        []string{"domains"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listNotificationsOp() huma.Operation {
	return huma.Operation{
		OperationID: "notifications-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "List displayed notifications",
		Tags:        []string{"notifications"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) buttonOp() huma.Operation {
	return huma.Operation{
		OperationID:   "notifications-button",
		Method:        http.MethodPost,
		Path:          "/api/v1/notifications/{id}/buttons/{index}",
		Summary:       "Answer a notification",
		Description:   "0: this is a false positive, 1: that wasn't my enterprise password",
		Tags:          []string{"notifications"},
		DefaultStatus: http.StatusNoContent,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) conversationOp() huma.Operation {
	return huma.Operation{
		OperationID: "traffic-conversation",
		Method:      http.MethodPost,
		Path:        "/api/v1/traffic/conversation",
		Summary:     "Inspect an outbound chat request",
		Description: "Bodies that do not match the conversation model are dropped",
		Tags:        []string{"traffic"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Health check endpoint",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}
