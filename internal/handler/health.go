package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceVersion = "v2.1"

func Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": serviceVersion,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
