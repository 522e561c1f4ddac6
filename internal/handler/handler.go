package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/member-crm/internal/service"
)

// APIV1Prefix is the base path of every versioned endpoint.
const APIV1Prefix = "/api/v1"

// NewRouter builds the engine with recovery, request ids and access logging in front of
// every route.
func NewRouter(p Pinger, svcs *service.Services, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(log))
	Register(r, p, svcs)
	return r
}

// Register mounts all public routes on the given engine. A nil svcs mounts the health
// probes only.
func Register(r *gin.Engine, p Pinger, svcs *service.Services) {
	h := NewHealthHandler(p)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		if svcs == nil {
			return
		}
		mount(api, service.MembershipTypes, svcs.MembershipTypes)
		mount(api, service.NAICSCodes, svcs.NAICSCodes)
		mount(api, service.Organizations, svcs.Organizations)
		mount(api, service.Members, svcs.Members)
		mount(api, service.Contacts, svcs.Contacts)
		mount(api, service.Opportunities, svcs.Opportunities)
		mount(api, service.Interactions, svcs.Interactions)
		mount(api, service.Cancellations, svcs.Cancellations)
		mount(api, service.Notes, svcs.Notes)
		mount(api, service.ProductionEmails, svcs.ProductionEmails)
		NewDashboardHandler(svcs.Dashboard).Register(api)
	}
}
