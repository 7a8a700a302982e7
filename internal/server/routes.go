package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/campusbot/internal/api/v1"
	"github.com/gosuda/campusbot/internal/api/ws"
	cbslack "github.com/gosuda/campusbot/internal/messenger/slack"
)

func registerPublicRoutes(api huma.API, deps Deps) {
	v1.RegisterChatRoutes(api, deps.Store, deps.Resolver)
	v1.RegisterAuthRoutes(api, deps.Auth, deps.Notifier)
}

func registerAdminRoutes(api huma.API, deps Deps) {
	v1.RegisterUserRoutes(api, deps.Store, deps.Auth, deps.Notifier)
	v1.RegisterQARoutes(api, deps.Store)
	v1.RegisterDocumentRoutes(api, deps.Store, deps.Ingester)
	v1.RegisterMissRoutes(api, deps.Store)
	v1.RegisterKnowledgeRoutes(api, deps.Store)
	v1.RegisterAuditRoutes(api, deps.Store)
	v1.RegisterTenantSelfRoutes(api, deps.Store, deps.Auth)
}

func registerSuperAdminRoutes(api huma.API, deps Deps) {
	v1.RegisterTenantRoutes(api, deps.Store, deps.Dataset)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/misses", hub.ServeMisses)
}

func registerSlackRoutes(r chi.Router, handler *cbslack.Handler) {
	r.Post("/events", handler.HandleEvents)
	r.Post("/commands", handler.HandleCommand)
}
