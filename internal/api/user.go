package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram-project/backend/internal/middleware"
	"github.com/foodgram-project/backend/internal/service"
)

type UserHandler struct {
	relations     *service.RelationService
	subscriptions *service.SubscriptionService
}

func NewUserHandler(relations *service.RelationService, subscriptions *service.SubscriptionService) *UserHandler {
	return &UserHandler{
		relations:     relations,
		subscriptions: subscriptions,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator) {
	users := router.Group("/users")
	{
		users.GET("/subscriptions", middleware.Auth(validator), h.ListSubscriptions)
		users.POST("/:id/subscribe", middleware.Auth(validator), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.Auth(validator), h.Unsubscribe)
	}
}

// ListSubscriptions returns the authors the user follows, each with a recipe
// preview capped by ?recipes_limit=.
func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	recipesLimit, _ := strconv.Atoi(c.Query("recipes_limit"))

	result, err := h.subscriptions.List(c.Request.Context(), userID, recipesLimit, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	result.Next, result.Previous = pageLinks(c, page, limit, result.Count)

	c.JSON(http.StatusOK, result)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.relations.Add(c.Request.Context(), service.RelationFollow, userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result.Author)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.relations.Remove(c.Request.Context(), service.RelationFollow, userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
