package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/savora-app/savora/internal/models"
)

// RecipeRequest represents a recipe create or update request
type RecipeRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Category     string   `json:"category" binding:"required" validate:"category"`
	PrepTime     int      `json:"prepTime" binding:"required,gt=0"`
	CookTime     int      `json:"cookTime" binding:"required,gt=0"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Image        string   `json:"image"`
}

// RecipeDetail represents a recipe returned in responses
type RecipeDetail struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	PrepTime     int       `json:"prepTime"`
	CookTime     int       `json:"cookTime"`
	Ingredients  []string  `json:"ingredients"`
	Instructions []string  `json:"instructions"`
	Image        string    `json:"image,omitempty"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

func recipeDetail(r *models.Recipe) RecipeDetail {
	return RecipeDetail{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Image:        r.Image,
		CreatedBy:    r.CreatedByID,
		CreatedAt:    r.CreatedAt,
	}
}

// @Summary List recipes
// @Description List all published recipes, newest first
// @Tags recipes
// @Produce json
// @Success 200 {array} RecipeDetail
// @Router /api/recipes [get]
func (s *Server) listRecipes(c *gin.Context) {
	var recipes []models.Recipe
	if err := s.db.Order("created_at DESC").Find(&recipes).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list recipes")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	details := make([]RecipeDetail, 0, len(recipes))
	for i := range recipes {
		details = append(details, recipeDetail(&recipes[i]))
	}

	c.JSON(http.StatusOK, details)
}

// @Summary Get recipe
// @Description Get a single recipe by ID
// @Tags recipes
// @Produce json
// @Success 200 {object} RecipeDetail
// @Failure 404 {object} map[string]interface{}
// @Router /api/recipes/{id} [get]
func (s *Server) getRecipe(c *gin.Context) {
	var recipe models.Recipe
	if err := s.db.Where("id = ?", c.Param("id")).First(&recipe).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Recipe not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, recipeDetail(&recipe))
}

// @Summary Create recipe
// @Description Publish a new recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecipeRequest true "Recipe"
// @Success 201 {object} RecipeDetail
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/recipes [post]
func (s *Server) createRecipe(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Category must be a lowercase slug"})
		return
	}

	recipe := &models.Recipe{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Image:        req.Image,
		CreatedByID:  sessionData.UserID,
	}

	if err := s.db.Create(recipe).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create recipe"})
		return
	}

	s.logger.Info().Str("recipe_id", recipe.ID).Str("user_id", sessionData.UserID).Msg("Recipe created")

	c.JSON(http.StatusCreated, recipeDetail(recipe))
}

// @Summary Update recipe
// @Description Replace one of your recipes
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecipeRequest true "Recipe"
// @Success 200 {object} RecipeDetail
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/recipes/{id} [put]
func (s *Server) updateRecipe(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var recipe models.Recipe
	if err := s.db.Where("id = ?", c.Param("id")).First(&recipe).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Recipe not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if recipe.CreatedByID != sessionData.UserID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only edit your own recipes"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Category must be a lowercase slug"})
		return
	}

	recipe.Name = req.Name
	recipe.Description = req.Description
	recipe.Category = req.Category
	recipe.PrepTime = req.PrepTime
	recipe.CookTime = req.CookTime
	recipe.Ingredients = req.Ingredients
	recipe.Instructions = req.Instructions
	recipe.Image = req.Image

	if err := s.db.Save(&recipe).Error; err != nil {
		s.logger.Error().Err(err).Str("recipe_id", recipe.ID).Msg("Failed to update recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update recipe"})
		return
	}

	s.logger.Info().Str("recipe_id", recipe.ID).Str("user_id", sessionData.UserID).Msg("Recipe updated")

	c.JSON(http.StatusOK, recipeDetail(&recipe))
}

// @Summary Delete recipe
// @Description Delete one of your recipes
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/recipes/{id} [delete]
func (s *Server) deleteRecipe(c *gin.Context) {
	sessionData, exists := GetSessionData(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var recipe models.Recipe
	if err := s.db.Where("id = ?", c.Param("id")).First(&recipe).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"message": "Recipe not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to find recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if recipe.CreatedByID != sessionData.UserID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only delete your own recipes"})
		return
	}

	if err := s.db.Delete(&recipe).Error; err != nil {
		s.logger.Error().Err(err).Str("recipe_id", recipe.ID).Msg("Failed to delete recipe")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete recipe"})
		return
	}

	s.logger.Info().Str("recipe_id", recipe.ID).Str("user_id", sessionData.UserID).Msg("Recipe deleted")

	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted"})
}
