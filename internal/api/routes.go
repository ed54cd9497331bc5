package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handler, apiToken string) {
	r.GET("/health", h.Health)

	authed := r.Group("/", AuthMiddleware(apiToken))
	{
		authed.PUT("/testcases", h.PutTestCases)
		authed.GET("/testcases", h.GetTestCases)

		authed.PUT("/settings", h.PutSettings)
		authed.GET("/settings", h.GetSettings)

		authed.POST("/run", h.Run)
		authed.DELETE("/run", h.CancelRun)
	}
}
