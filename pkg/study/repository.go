package study

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type PatientRecord struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	Name      string    `json:"name" gorm:"column:name;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (PatientRecord) TableName() string {
	return "patients"
}

type ObservationRecord struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	PatientID string    `json:"patient_id" gorm:"column:patient_id;index"`
	Day       int       `json:"day" gorm:"column:day"`
	Value     float64   `json:"value" gorm:"column:value"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (ObservationRecord) TableName() string {
	return "observations"
}

type DoctorRecord struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id"`
	Name      string    `json:"name" gorm:"column:name;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (DoctorRecord) TableName() string {
	return "doctors"
}

type CareAssignment struct {
	DoctorID  string    `json:"doctor_id" gorm:"primaryKey;column:doctor_id"`
	PatientID string    `json:"patient_id" gorm:"primaryKey;column:patient_id"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (CareAssignment) TableName() string {
	return "care_assignments"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&PatientRecord{}, &ObservationRecord{}, &DoctorRecord{}, &CareAssignment{})
}

func (r *Repository) CreatePatient(ctx context.Context, rec *PatientRecord) error {
	var existing PatientRecord
	err := r.db.WithContext(ctx).First(&existing, "name = ?", rec.Name).Error
	if err == nil {
		return ErrDuplicate
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) GetPatientByName(ctx context.Context, name string) (*PatientRecord, error) {
	var rec PatientRecord
	result := r.db.WithContext(ctx).First(&rec, "name = ?", name)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, result.Error
}

func (r *Repository) AddObservation(ctx context.Context, rec *ObservationRecord) error {
	rec.CreatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&PatientRecord{}).
		Where("id = ?", rec.PatientID).
		Update("updated_at", time.Now().UTC()).Error
}

// ListObservations returns a patient's observations in recording order.
func (r *Repository) ListObservations(ctx context.Context, patientID string) ([]ObservationRecord, error) {
	var recs []ObservationRecord
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at asc").
		Find(&recs).Error
	return recs, err
}

func (r *Repository) CreateDoctor(ctx context.Context, rec *DoctorRecord) error {
	var existing DoctorRecord
	err := r.db.WithContext(ctx).First(&existing, "name = ?", rec.Name).Error
	if err == nil {
		return ErrDuplicate
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	rec.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repository) GetDoctorByName(ctx context.Context, name string) (*DoctorRecord, error) {
	var rec DoctorRecord
	result := r.db.WithContext(ctx).First(&rec, "name = ?", name)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rec, result.Error
}

// AssignPatient records that a doctor follows a patient. Assigning the
// same patient twice is a no-op.
func (r *Repository) AssignPatient(ctx context.Context, doctorID, patientID string) error {
	var existing CareAssignment
	err := r.db.WithContext(ctx).
		First(&existing, "doctor_id = ? AND patient_id = ?", doctorID, patientID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	assignment := CareAssignment{
		DoctorID:  doctorID,
		PatientID: patientID,
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&assignment).Error
}

// ListAssignedPatients returns a doctor's patients in assignment order.
func (r *Repository) ListAssignedPatients(ctx context.Context, doctorID string) ([]PatientRecord, error) {
	var recs []PatientRecord
	err := r.db.WithContext(ctx).
		Joins("JOIN care_assignments ON care_assignments.patient_id = patients.id").
		Where("care_assignments.doctor_id = ?", doctorID).
		Order("care_assignments.created_at asc").
		Find(&recs).Error
	return recs, err
}
