package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting 运行期可调参数，value 为 JSON 标量或 {"value": ...}
type Setting struct {
	Key       string         `gorm:"column:key;type:varchar(128);primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"column:value" json:"value"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Setting) TableName() string { return "app_settings" }
