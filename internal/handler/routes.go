package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the console screen routes.
func RegisterRoutes(r gin.IRouter, console *ConsoleHandler) {
	r.GET("/", console.Index)
	r.GET("/state", console.State)
	r.POST("/search", console.Search)
	r.POST("/refresh", console.Refresh)

	students := r.Group("/students")
	students.GET("/export", console.Export)
	students.POST("/new", console.OpenAdd)
	students.POST("/:id/edit", console.OpenEdit)
	students.GET("/:id/delete", console.ConfirmDelete)
	students.POST("/:id/delete", console.Delete)

	modal := r.Group("/modal")
	modal.POST("/field", console.ChangeField)
	modal.POST("/close", console.CloseModal)
	modal.POST("/submit", console.Submit)
}

// RegisterOpsRoutes mounts health, readiness and metrics endpoints.
func RegisterOpsRoutes(r gin.IRouter, ops *MetricsHandler, metricsEnabled bool) {
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	if metricsEnabled {
		r.GET("/metrics", ops.Prometheus)
	}
}
