package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/clubops/ticket-desk/api"
	"github.com/clubops/ticket-desk/internal/handler"
)

const (
	pathHealth  = "/health"
	pathReady   = "/ready"
	pathSwagger = "/swagger"
)

func New(frontendOrigin string, tickets *handler.TicketHandler, webhook *handler.WebhookHandler, cron *handler.CronHandler) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if frontendOrigin == "" || frontendOrigin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{frontendOrigin}
	}
	r.Use(cors.New(corsCfg))

	r.GET("/", handler.Health)
	r.GET(pathHealth, handler.Health)
	r.GET(pathReady, handler.Ready)

	r.GET(pathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, pathSwagger+"/") })
	r.GET(pathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = pathSwagger + "/index.html"
			c.Request.RequestURI = pathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/version", handler.Version)
		apiGroup.GET("/tickets", tickets.List)
		apiGroup.POST("/tickets", tickets.Create)
		apiGroup.PATCH("/tickets/:id", tickets.Update)
	}

	r.POST("/telegram/webhook", webhook.Handle)
	r.GET("/cron/remind", cron.Remind)

	return r
}
