package news

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Directory is the article lookup and credibility write-back used by
// the fact-check orchestrator. It satisfies factcheck.ArticleDirectory.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) GetArticle(ctx context.Context, articleID uint64) (string, bool, error) {
	var art Article
	err := d.db.WithContext(ctx).Select("id", "url").First(&art, articleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return art.URL, true, nil
}

func (d *Directory) SetCredibility(ctx context.Context, articleID uint64, score int, verdict string) error {
	return d.db.WithContext(ctx).Model(&Article{}).
		Where("id = ?", articleID).
		Updates(map[string]any{"credibility_score": score, "fact_check_verdict": verdict}).Error
}
