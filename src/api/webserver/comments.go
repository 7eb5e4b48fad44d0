package webserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/veritynews/verity/src/news"
)

type Comments struct {
	db        *gorm.DB
	sanitizer *bluemonday.Policy
}

func NewComments(db *gorm.DB) Comments {
	return Comments{db: db, sanitizer: bluemonday.UGCPolicy()}
}

func (h Comments) Create(c *gin.Context) {
	var req struct {
		ArticleID uint64  `json:"articleID" binding:"required"`
		ParentID  *uint64 `json:"parentID"`
		Body      string  `json:"body" binding:"required,max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	body := strings.TrimSpace(h.sanitizer.Sanitize(req.Body))
	if body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"err": "empty comment"})
		return
	}

	var art news.Article
	if err := h.db.First(&art, req.ArticleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "article not found"})
		return
	}
	if req.ParentID != nil {
		var parent news.Comment
		if err := h.db.First(&parent, *req.ParentID).Error; err != nil || parent.ArticleID != req.ArticleID {
			c.JSON(http.StatusBadRequest, gin.H{"err": "bad parent comment"})
			return
		}
	}

	cmt := news.Comment{
		ArticleID: req.ArticleID,
		UserID:    currentUser(c),
		ParentID:  req.ParentID,
		Body:      body,
	}
	if err := h.db.Create(&cmt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cmt)
}

func (h Comments) List(c *gin.Context) {
	articleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad article id"})
		return
	}

	var comments []news.Comment
	if err := h.db.Where("article_id = ?", articleID).Order("created_at ASC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
