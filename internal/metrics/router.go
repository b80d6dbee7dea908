package metrics

import (
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

// NewRouter returns a gin engine with mw installed and request metrics exported on /metrics
// under subsystem. Routes must be added to the returned engine, since gin copies the
// middleware chain into each route when it is registered.
func NewRouter(subsystem string, mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)

	p := ginprometheus.NewPrometheus(subsystem)
	p.Use(router)
	return router
}
