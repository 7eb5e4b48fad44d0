package webserver

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/veritynews/verity/src/factcheck"
	"github.com/veritynews/verity/src/queue"
)

type FactCheck struct {
	orch *factcheck.Orchestrator
	q    *queue.Queue
}

func NewFactCheck(orch *factcheck.Orchestrator, q *queue.Queue) FactCheck {
	return FactCheck{orch: orch, q: q}
}

// Submit registers a fact-check job and hands polling to the checker
// worker. The request returns as soon as the PENDING record exists;
// completion is observed via Get.
func (f FactCheck) Submit(c *gin.Context) {
	articleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad article id"})
		return
	}

	var req struct {
		Mode string `json:"mode" binding:"omitempty,oneof=summary standard thorough synthesis"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if req.Mode == "" {
		req.Mode = factcheck.ModeStandard
	}

	rec, err := f.orch.Submit(c, articleID, req.Mode)
	switch {
	case errors.Is(err, factcheck.ErrArticleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": "article not found"})
		return
	case errors.Is(err, factcheck.ErrAlreadyChecked):
		c.JSON(http.StatusConflict, gin.H{"err": "article already fact-checked"})
		return
	case errors.Is(err, factcheck.ErrSubmissionFailed):
		c.JSON(http.StatusBadGateway, gin.H{"err": "fact-check service unavailable"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	if err := f.q.PublishPoll(c, queue.PollJob{JobID: rec.JobID, ArticleID: articleID}); err != nil {
		// Record stays PENDING; the checker's requeue sweep or a manual
		// re-enqueue picks it up.
		log.Printf("factcheck: enqueue poll for job %s: %v", rec.JobID, err)
	}

	c.JSON(http.StatusAccepted, rec)
}

func (f FactCheck) Get(c *gin.Context) {
	articleID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "bad article id"})
		return
	}

	rec, err := f.orch.GetByArticle(c, articleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "no fact check for article"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (f FactCheck) Cancel(c *gin.Context) {
	jobID := c.Param("jobID")

	rec, err := f.orch.Cancel(c, jobID)
	switch {
	case errors.Is(err, factcheck.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": "job not found"})
		return
	case errors.Is(err, factcheck.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, gin.H{"err": "job already finished", "record": rec})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}
