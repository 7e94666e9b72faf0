package router

import "github.com/gin-gonic/gin"

// Module describes a feature module that can register its routes on a RouterGroup.
// Modules added with Registry.Add get the /api group, those added with
// Registry.AddRoot get the engine root.
type Module interface {
	Register(rg *gin.RouterGroup)
}
