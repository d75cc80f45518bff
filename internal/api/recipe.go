package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-project/backend/internal/middleware"
	"github.com/foodgram-project/backend/internal/service"
	"github.com/foodgram-project/backend/internal/types"
)

type RecipeHandler struct {
	recipes   *service.RecipeService
	relations *service.RelationService
	shopping  *service.ShoppingListService
	auth      *service.AuthService
}

func NewRecipeHandler(recipes *service.RecipeService, relations *service.RelationService, shopping *service.ShoppingListService, auth *service.AuthService) *RecipeHandler {
	return &RecipeHandler{
		recipes:   recipes,
		relations: relations,
		shopping:  shopping,
		auth:      auth,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, validator middleware.TokenValidator) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuth(validator), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.Auth(validator), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuth(validator), h.GetRecipe)
		recipes.POST("", middleware.Auth(validator), h.CreateRecipe)
		recipes.PATCH("/:id", middleware.Auth(validator), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.Auth(validator), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.Auth(validator), h.FavoriteRecipe)
		recipes.DELETE("/:id/favorite", middleware.Auth(validator), h.UnfavoriteRecipe)
		recipes.POST("/:id/shopping_cart", middleware.Auth(validator), h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", middleware.Auth(validator), h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	viewer := middleware.CurrentViewer(c)
	page, limit := pageParams(c)

	filter := types.RecipeFilter{
		TagSlugs:  c.QueryArray("tags"),
		Favorited: c.Query("is_favorited") == "1",
		InCart:    c.Query("is_in_shopping_cart") == "1",
		Page:      page,
		Limit:     limit,
	}
	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}

	result, err := h.recipes.List(c.Request.Context(), filter, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	result.Next, result.Previous = pageLinks(c, page, limit, result.Count)

	c.JSON(http.StatusOK, result)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.recipes.Get(c.Request.Context(), recipeID, middleware.CurrentViewer(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var input types.CreateRecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view, err := h.recipes.Create(c.Request.Context(), userID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}

	var input types.UpdateRecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view, err := h.recipes.Update(c.Request.Context(), recipeID, userID, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), recipeID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) FavoriteRecipe(c *gin.Context) {
	h.addRelation(c, service.RelationFavorite)
}

func (h *RecipeHandler) UnfavoriteRecipe(c *gin.Context) {
	h.removeRelation(c, service.RelationFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, service.RelationCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, service.RelationCart)
}

// DownloadShoppingCart renders the aggregated shopping list as a plain-text
// attachment named after the user.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	lines, err := h.shopping.Build(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	report := h.shopping.Render(user, lines)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", h.shopping.Filename(user.Username)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

func (h *RecipeHandler) addRelation(c *gin.Context, kind service.RelationKind) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.relations.Add(c.Request.Context(), kind, userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result.Recipe)
}

func (h *RecipeHandler) removeRelation(c *gin.Context, kind service.RelationKind) {
	recipeID, ok := pathID(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.relations.Remove(c.Request.Context(), kind, userID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathID parses the :id path parameter, writing the 404 itself on failure.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}
