package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/veritynews/verity/src/news"
)

type Bookmarks struct{ db *gorm.DB }

func NewBookmarks(db *gorm.DB) Bookmarks { return Bookmarks{db: db} }

func (b Bookmarks) Add(c *gin.Context) {
	var req struct {
		ArticleID uint64 `json:"articleID" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var art news.Article
	if err := b.db.First(&art, req.ArticleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "article not found"})
		return
	}

	bm := news.Bookmark{UserID: currentUser(c), ArticleID: req.ArticleID}
	if err := b.db.Create(&bm).Error; err != nil {
		// unique index: already bookmarked
		c.Status(http.StatusNoContent)
		return
	}
	c.Status(http.StatusCreated)
}

func (b Bookmarks) Remove(c *gin.Context) {
	articleID, err := strconv.ParseUint(c.Param("articleID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad article id"})
		return
	}
	b.db.Where("user_id = ? AND article_id = ?", currentUser(c), articleID).Delete(&news.Bookmark{})
	c.Status(http.StatusNoContent)
}

func (b Bookmarks) List(c *gin.Context) {
	var articles []news.Article
	err := b.db.Joins("JOIN bookmarks ON bookmarks.article_id = articles.id").
		Where("bookmarks.user_id = ?", currentUser(c)).
		Order("bookmarks.created_at DESC").
		Find(&articles).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}
