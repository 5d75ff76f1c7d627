// Package handler holds the HTTP surface: one sub-package per entity
// plus the shared response envelope and binding helpers.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/records-api/internal/model"
)

// actorKey matches the context key the auth middleware sets.
const actorKey = "actor"

// Actor returns the authenticated actor or aborts with 401. Routes sit
// behind Authenticate, so a miss means a wiring bug rather than a bad
// request.
func Actor(c *gin.Context) (*model.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse("authentication required"))
		c.Abort()
		return nil, false
	}
	actor, ok := v.(*model.Actor)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse("authentication required"))
		c.Abort()
		return nil, false
	}
	return actor, true
}

// UUIDParam parses a path parameter as a UUID or aborts with 400.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid "+name))
		c.Abort()
		return uuid.Nil, false
	}
	return id, true
}
