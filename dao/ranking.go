package dao

import (
	"Perish/config"
	"Perish/models"
	"context"
	"fmt"
	"regexp"

	"gorm.io/gorm"
)

var procedureName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// RankingDAO 外部排名存储过程，本服务只调用不实现
type RankingDAO struct {
	Db                  *gorm.DB
	cohortProcedure     string
	hallOfFameProcedure string
}

func NewRankingDAO(db *gorm.DB, conf *config.Feed) *RankingDAO {
	for _, name := range []string{conf.CohortProcedure, conf.HallOfFameProcedure} {
		if !procedureName.MatchString(name) {
			panic(fmt.Sprintf("invalid procedure name %q", name))
		}
	}
	return &RankingDAO{
		Db:                  db,
		cohortProcedure:     conf.CohortProcedure,
		hallOfFameProcedure: conf.HallOfFameProcedure,
	}
}

// CurrentCohort 当前存活窗口内所有非不朽图片的排名
func (d *RankingDAO) CurrentCohort(ctx context.Context) ([]models.CohortRanking, error) {
	if d.Db == nil {
		return nil, ErrNotConfigured
	}
	var rows []models.CohortRanking
	err := d.Db.WithContext(ctx).Raw("CALL " + d.cohortProcedure + "()").Scan(&rows).Error
	return rows, err
}

// HallOfFame 名人堂排名，limit 为返回上限
func (d *RankingDAO) HallOfFame(ctx context.Context, limit int) ([]models.HallOfFameRanking, error) {
	if d.Db == nil {
		return nil, ErrNotConfigured
	}
	var rows []models.HallOfFameRanking
	err := d.Db.WithContext(ctx).Raw("CALL "+d.hallOfFameProcedure+"(?)", limit).Scan(&rows).Error
	return rows, err
}
