package dao

import (
	"Perish/models"
	"context"

	"gorm.io/gorm"
)

type SettingDAO struct {
	Repo[models.Setting]
}

func NewSettingDAO(db *gorm.DB) *SettingDAO {
	return &SettingDAO{Repo: NewRepo[models.Setting](db)}
}

// LoadAll 全量读取，表很小
func (d *SettingDAO) LoadAll(ctx context.Context) ([]models.Setting, error) {
	db, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	var items []models.Setting
	err = db.Find(&items).Error
	return items, err
}
