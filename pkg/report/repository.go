package report

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("analysis not found")

type AnalysisRecord struct {
	ID        string            `json:"id" gorm:"primaryKey;column:id"`
	StudyID   string            `json:"study_id" gorm:"column:study_id;index"`
	Patients  int               `json:"patients" gorm:"column:patients"`
	Days      int               `json:"days" gorm:"column:days"`
	Threshold float64           `json:"threshold" gorm:"column:threshold"`
	Summary   datatypes.JSONMap `json:"summary" gorm:"column:summary"`
	CreatedAt time.Time         `json:"created_at" gorm:"column:created_at"`
}

func (AnalysisRecord) TableName() string {
	return "analyses"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&AnalysisRecord{})
}

func (r *Repository) Create(ctx context.Context, rec *AnalysisRecord) error {
	rec.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) Get(ctx context.Context, id string) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	result := r.db.WithContext(ctx).First(&rec, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, result.Error
}

func (r *Repository) ListByStudy(ctx context.Context, studyID string) ([]AnalysisRecord, error) {
	var recs []AnalysisRecord
	err := r.db.WithContext(ctx).
		Where("study_id = ?", studyID).
		Order("created_at desc").
		Find(&recs).Error
	return recs, err
}

func (r *Repository) CleanupExpired(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-ttl)
	return r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&AnalysisRecord{}).Error
}
