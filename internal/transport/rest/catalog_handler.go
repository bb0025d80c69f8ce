package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/courtside-dev/stadium-booking/internal/model"
)

// GET /stadium
func (h *Handler) ListStadiums(c *gin.Context) {
	stadiums, err := h.courts.ListStadiums(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stadiums)
}

// POST /stadium
func (h *Handler) CreateStadium(c *gin.Context) {
	var body stadiumBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stadium := &model.Stadium{
		Name:        body.Name,
		Description: body.Description,
	}
	if body.Facilities != nil {
		raw, err := json.Marshal(body.Facilities)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid facilities"})
			return
		}
		stadium.Facilities = datatypes.JSON(raw)
	}

	if err := h.courts.CreateStadium(c.Request.Context(), stadium); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stadium)
}

// POST /stadium/:stadiumId/court
func (h *Handler) CreateCourt(c *gin.Context) {
	stadiumID, ok := pathUUID(c, "stadiumId")
	if !ok {
		return
	}
	var body courtBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	court := &model.Court{
		StadiumID: stadiumID,
		Name:      body.Name,
	}
	if err := h.courts.CreateCourt(c.Request.Context(), court); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, court)
}
