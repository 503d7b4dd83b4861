package http

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"biosync/internal/core/ports"
)

func RegisterRoutes(r *gin.Engine, syncSvc ports.SyncService, reader ports.AttendanceReader, stats ports.StatsService, protocol string) {

	h := NewHandler(syncSvc, reader, stats, protocol)

	api := r.Group("/api")
	{
		api.GET("/sync", h.GetSync)
		api.GET("/health", h.GetHealth)
		api.GET("/stats", h.GetStats)

		employeesGroup := api.Group("/employees")
		{
			employeesGroup.GET("", h.GetEmployees)
			employeesGroup.GET("/:employee_id/attendance", h.GetAttendance)
		}
	}
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
