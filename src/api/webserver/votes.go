package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/veritynews/verity/src/news"
)

type Votes struct{ db *gorm.DB }

func NewVotes(db *gorm.DB) Votes { return Votes{db: db} }

func (v Votes) Cast(c *gin.Context) {
	var req struct {
		ArticleID uint64 `json:"articleID" binding:"required"`
		Value     int8   `json:"value"     binding:"required,oneof=-1 1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var art news.Article
	if err := v.db.First(&art, req.ArticleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "article not found"})
		return
	}

	uid := currentUser(c)
	err := v.db.Transaction(func(tx *gorm.DB) error {
		// Replace any earlier vote, then recompute the tally.
		if err := tx.Where("article_id = ? AND user_id = ?", req.ArticleID, uid).Delete(&news.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&news.Vote{ArticleID: req.ArticleID, UserID: uid, Value: req.Value}).Error; err != nil {
			return err
		}
		var score int64
		if err := tx.Model(&news.Vote{}).Where("article_id = ?", req.ArticleID).
			Select("COALESCE(SUM(value), 0)").Scan(&score).Error; err != nil {
			return err
		}
		return tx.Model(&news.Article{}).Where("id = ?", req.ArticleID).Update("score", score).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}
