package webserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/veritynews/verity/src/data"
	"github.com/veritynews/verity/src/news"
)

type Articles struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewArticles(db *gorm.DB, rdb *redis.Client) Articles {
	return Articles{db: db, rdb: rdb}
}

const maxPageSize = 100

func (a Articles) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "25"))
	if perPage < 1 || perPage > maxPageSize {
		perPage = 25
	}

	q := a.db.Model(&news.Article{})
	if feedID, err := strconv.ParseUint(c.Query("feed"), 10, 32); err == nil {
		q = q.Where("feed_id = ?", uint32(feedID))
	}
	switch c.DefaultQuery("sort", "newest") {
	case "top":
		q = q.Order("score DESC, published_at DESC")
	case "credible":
		q = q.Where("credibility_score >= 0").Order("credibility_score DESC")
	default:
		q = q.Order("published_at DESC")
	}

	var total int64
	q.Count(&total)

	var articles []news.Article
	if err := q.Limit(perPage).Offset((page - 1) * perPage).Find(&articles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"page":     page,
		"perPage":  perPage,
		"total":    total,
	})
}

func (a Articles) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad article id"})
		return
	}

	var art news.Article
	err = a.db.Preload("Feed").First(&art, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"err": "article not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	views, _ := data.IncrViewCount(c, a.rdb, art.ID)
	c.JSON(http.StatusOK, gin.H{"article": art, "views": views})
}
