package models

import "database/sql"

// CohortRanking 当日排名存储过程返回的一行
type CohortRanking struct {
	ImageID        uint64        `gorm:"column:image_id"`
	CohortRank     int           `gorm:"column:cohort_rank"`
	CohortSize     int           `gorm:"column:cohort_size"`
	CutoffPosition int           `gorm:"column:cutoff_position"`
	LikesNeeded    sql.NullInt64 `gorm:"column:likes_needed"`
	WillSurvive    bool          `gorm:"column:will_survive"`
}

// HallOfFameRanking 名人堂存储过程返回的一行
type HallOfFameRanking struct {
	ImageID      uint64  `gorm:"column:image_id"`
	RankPosition int     `gorm:"column:rank_position"`
	Score        float64 `gorm:"column:score"`
}
