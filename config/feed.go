package config

import "time"

// Feed 信息流相关配置，运行期可调参数在 app_settings 表里
type Feed struct {
	// Timeout 组装信息流的硬超时
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// SettingsTTL 运行期参数快照的有效期
	SettingsTTL time.Duration `json:"settings_ttl" yaml:"settings_ttl"`
	CursorSalt  string        `json:"cursor_salt" yaml:"cursor_salt"`

	CohortProcedure     string `json:"cohort_procedure" yaml:"cohort_procedure"`
	HallOfFameProcedure string `json:"hall_of_fame_procedure" yaml:"hall_of_fame_procedure"`

	TaskQueueSize int `json:"task_queue_size" yaml:"task_queue_size"`
	TaskWorkers   int `json:"task_workers" yaml:"task_workers"`
}

func (f *Feed) normalize() {
	if f.Timeout <= 0 {
		f.Timeout = 8 * time.Second
	}
	if f.SettingsTTL <= 0 {
		f.SettingsTTL = time.Minute
	}
	if f.CursorSalt == "" {
		f.CursorSalt = "perish-feed-cursor"
	}
	if f.CohortProcedure == "" {
		f.CohortProcedure = "get_current_cohort_ranking"
	}
	if f.HallOfFameProcedure == "" {
		f.HallOfFameProcedure = "get_hall_of_fame_ranking"
	}
	if f.TaskQueueSize <= 0 {
		f.TaskQueueSize = 1024
	}
	if f.TaskWorkers <= 0 {
		f.TaskWorkers = 4
	}
}

func ProvideFeedConfig(cfg *Config) *Feed {
	return cfg.Feed
}
