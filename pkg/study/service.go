package study

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/inflammetry/platform/pkg/common/kafka"
	"github.com/inflammetry/platform/pkg/common/logger"
	"github.com/inflammetry/platform/pkg/common/models"
)

var (
	errNameRequired = errors.New("name required")
	errNegativeDay  = errors.New("day must not be negative")
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

type Service struct {
	repo     *Repository
	producer *kafka.Producer
}

func NewService(repo *Repository, producer *kafka.Producer) *Service {
	return &Service{repo: repo, producer: producer}
}

func (s *Service) RegisterPatient(ctx context.Context, name string) (*PatientRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError{reason: errNameRequired}
	}

	rec := &PatientRecord{ID: uuid.New().String(), Name: name}
	if err := s.repo.CreatePatient(ctx, rec); err != nil {
		return nil, err
	}

	s.publish(ctx, "patient", name, map[string]interface{}{
		"patient_id": rec.ID,
		"name":       name,
	})
	return rec, nil
}

// RecordObservation appends a measurement to a patient's series. When day
// is nil the next day is assigned: one past the last recorded day, or day 0
// for a patient with no observations yet.
func (s *Service) RecordObservation(ctx context.Context, patientName string, value float64, day *int) (*models.ObservationResponse, error) {
	if day != nil && *day < 0 {
		return nil, ValidationError{reason: errNegativeDay}
	}

	rec, err := s.repo.GetPatientByName(ctx, patientName)
	if err != nil {
		return nil, err
	}

	patient, err := s.loadPatient(ctx, rec)
	if err != nil {
		return nil, err
	}

	var obs Observation
	if day != nil {
		obs = patient.AddObservationAt(*day, value)
	} else {
		obs = patient.AddObservation(value)
	}

	obsRec := &ObservationRecord{
		ID:        uuid.New().String(),
		PatientID: rec.ID,
		Day:       obs.Day,
		Value:     obs.Value,
	}
	if err := s.repo.AddObservation(ctx, obsRec); err != nil {
		return nil, fmt.Errorf("persisting observation: %w", err)
	}

	s.publish(ctx, "observation", patientName, map[string]interface{}{
		"patient_id": rec.ID,
		"day":        obs.Day,
		"value":      obs.Value,
	})

	return &models.ObservationResponse{
		PatientName: patientName,
		Day:         obs.Day,
		Value:       obs.Value,
	}, nil
}

func (s *Service) GetPatient(ctx context.Context, name string) (*models.PatientResponse, error) {
	rec, err := s.repo.GetPatientByName(ctx, name)
	if err != nil {
		return nil, err
	}

	patient, err := s.loadPatient(ctx, rec)
	if err != nil {
		return nil, err
	}

	resp := &models.PatientResponse{Name: patient.Name}
	for _, obs := range patient.Observations() {
		resp.Observations = append(resp.Observations, models.ObservationResponse{
			PatientName: patient.Name,
			Day:         obs.Day,
			Value:       obs.Value,
		})
	}
	return resp, nil
}

func (s *Service) LastObservation(ctx context.Context, name string) (*models.ObservationResponse, error) {
	rec, err := s.repo.GetPatientByName(ctx, name)
	if err != nil {
		return nil, err
	}

	patient, err := s.loadPatient(ctx, rec)
	if err != nil {
		return nil, err
	}

	obs, err := patient.LastObservation()
	if err != nil {
		return nil, err
	}
	return &models.ObservationResponse{
		PatientName: name,
		Day:         obs.Day,
		Value:       obs.Value,
	}, nil
}

func (s *Service) RegisterDoctor(ctx context.Context, name string) (*DoctorRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError{reason: errNameRequired}
	}

	rec := &DoctorRecord{ID: uuid.New().String(), Name: name}
	if err := s.repo.CreateDoctor(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AssignPatient puts a patient under a doctor's care. Duplicate
// assignments are a no-op, matching Doctor.AddPatient.
func (s *Service) AssignPatient(ctx context.Context, doctorName, patientName string) error {
	doctor, err := s.repo.GetDoctorByName(ctx, doctorName)
	if err != nil {
		return err
	}
	patient, err := s.repo.GetPatientByName(ctx, patientName)
	if err != nil {
		return err
	}
	return s.repo.AssignPatient(ctx, doctor.ID, patient.ID)
}

func (s *Service) GetDoctor(ctx context.Context, name string) (*models.DoctorResponse, error) {
	rec, err := s.repo.GetDoctorByName(ctx, name)
	if err != nil {
		return nil, err
	}

	assigned, err := s.repo.ListAssignedPatients(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	doctor := NewDoctor(rec.Name)
	for _, p := range assigned {
		doctor.AddPatient(NewPatient(p.Name))
	}

	resp := &models.DoctorResponse{Name: doctor.Name, Patients: []string{}}
	for _, p := range doctor.Patients() {
		resp.Patients = append(resp.Patients, p.Name)
	}
	return resp, nil
}

// loadPatient rebuilds the patient entity from its persisted series.
func (s *Service) loadPatient(ctx context.Context, rec *PatientRecord) (*Patient, error) {
	recs, err := s.repo.ListObservations(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("loading observations: %w", err)
	}

	patient := NewPatient(rec.Name)
	for _, o := range recs {
		patient.AddObservationAt(o.Day, o.Value)
	}
	return patient, nil
}

func (s *Service) publish(ctx context.Context, eventType, subject string, data map[string]interface{}) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishKeyed(ctx, eventType, "study-service", subject, data); err != nil {
		logger.Log.WithError(err).Warn("failed to publish study event")
	}
}
