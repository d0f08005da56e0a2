package services

import (
	"github.com/lucaswan/paperdesk/internal/models"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var cfg models.SystemConfig
	if err := s.db.Where("`key` = ?", key).First(&cfg).Error; err != nil {
		return "", err
	}
	return cfg.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where("`key` = ?", key).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		cfg = models.SystemConfig{
			Key:   key,
			Value: value,
		}
		return s.db.Create(&cfg).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&cfg).Update("value", value).Error
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where("`group` = ?", group).Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// UpdateGroup applies a key/value map to an existing config group. Keys not
// already present in the group are ignored so clients cannot invent settings.
func (s *SystemConfigService) UpdateGroup(group string, values map[string]string) error {
	configs, err := s.GetByGroup(group)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(configs))
	for _, c := range configs {
		known[c.Key] = true
	}

	for key, value := range values {
		if !known[key] {
			continue
		}
		if err := s.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}
