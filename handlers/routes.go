package handlers

import "github.com/gin-gonic/gin"

// Report service endpoints.
const (
	EndPointReports    = "/reports"
	EndPointReport     = "/reports/:id"
	EndPointRoute      = "/route/:id"
	EndPointSubscribe  = "/subscribe"
	EndPointHealth     = "/_health"
	EndPointIssueTypes = "/issue_types"
	EndPointMap        = "/map"
)

// RegisterRoutes attaches every gateway endpoint to the router. main.go and
// the handler tests share this wiring.
func RegisterRoutes(router *gin.Engine, h *Handlers) {
	router.GET(EndPointReports, h.ListReports)
	router.POST(EndPointReports, h.CreateReport)
	router.GET(EndPointReport, h.GetReport)
	router.PATCH(EndPointReport, h.UpdateReport)
	router.POST(EndPointRoute, h.RouteReport)
	router.POST(EndPointSubscribe, h.Subscribe)
	router.GET(EndPointHealth, h.HealthCheck)
	router.GET(EndPointIssueTypes, h.IssueTypes)
	router.GET(EndPointMap, h.MapReports)
}
