package history

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"moul.io/zapgorm2"

	"github.com/clipsave/clipsave"
)

const themeSettingKey = "theme"

type historyRecord struct {
	ID              string `gorm:"primaryKey"`
	Title           string
	Platform        string
	SourceURL       string
	SizeMB          *float64
	DurationSeconds *int
	SavedAt         time.Time `gorm:"index"`
}

type settingRecord struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// GormStore persists history in a sqlite database; an alternative to
// BoltStore for deployments that want the log queryable.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(path string, logger *zap.Logger) (*GormStore, error) {
	if logger == nil {
		logger = zap.L()
	}
	gormLogger := zapgorm2.New(logger)
	gormLogger.SetAsDefault()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&historyRecord{}, &settingRecord{}); err != nil {
		return nil, err
	}
	return &GormStore{db}, nil
}

// Append inserts the entry and trims past capacity in one transaction.
func (s *GormStore) Append(e Entry) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recordFromEntry(e)).Error; err != nil {
			return err
		}
		var stale []historyRecord
		if err := tx.Order("saved_at desc").Offset(MaxEntries).Find(&stale).Error; err != nil {
			return err
		}
		if len(stale) > 0 {
			return tx.Delete(&stale).Error
		}
		return nil
	})
}

func (s *GormStore) List() ([]Entry, error) {
	var records []historyRecord
	if err := s.db.Order("saved_at desc").Limit(MaxEntries).Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, entryFromRecord(r))
	}
	return entries, nil
}

func (s *GormStore) Clear() error {
	return s.db.Where("1 = 1").Delete(&historyRecord{}).Error
}

func (s *GormStore) Theme() (string, error) {
	var setting settingRecord
	err := s.db.First(&setting, "key = ?", themeSettingKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *GormStore) SetTheme(theme string) error {
	setting := settingRecord{Key: themeSettingKey, Value: theme}
	return s.db.Save(&setting).Error
}

func (s *GormStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func recordFromEntry(e Entry) *historyRecord {
	return &historyRecord{
		ID:              e.ID,
		Title:           e.Title,
		Platform:        string(e.Platform),
		SourceURL:       e.SourceURL,
		SizeMB:          e.SizeMB,
		DurationSeconds: e.DurationSeconds,
		SavedAt:         e.SavedAt,
	}
}

func entryFromRecord(r historyRecord) Entry {
	return Entry{
		ID:              r.ID,
		Title:           r.Title,
		Platform:        clipsave.Platform(r.Platform),
		SourceURL:       r.SourceURL,
		SizeMB:          r.SizeMB,
		DurationSeconds: r.DurationSeconds,
		SavedAt:         r.SavedAt,
	}
}
