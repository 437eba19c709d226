package dao

import (
	"Perish/models"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// 投票表上的自赞拦截，违反时 SIGNAL SELF_VOTE，由 translateVoteError 识别
var selfVoteTriggers = map[string]string{
	"trg_image_likes_no_self_vote":      "image_likes",
	"trg_image_superlikes_no_self_vote": "image_superlikes",
}

const selfVoteTriggerSQL = `CREATE TRIGGER %s BEFORE INSERT ON %s FOR EACH ROW
BEGIN
  IF (SELECT user_id FROM images WHERE id = NEW.image_id) = NEW.user_id THEN
    SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'SELF_VOTE';
  END IF;
END`

// Migrate 建表、索引和约束触发器
func Migrate(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return ErrNotConfigured
	}
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(
		&models.Image{},
		&models.ImageLike{},
		&models.ImageSuperlike{},
		&models.Setting{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for name, table := range selfVoteTriggers {
		if err := db.Exec("DROP TRIGGER IF EXISTS " + name).Error; err != nil {
			return fmt.Errorf("drop trigger %s: %w", name, err)
		}
		if err := db.Exec(fmt.Sprintf(selfVoteTriggerSQL, name, table)).Error; err != nil {
			return fmt.Errorf("create trigger %s: %w", name, err)
		}
	}
	return nil
}
