package models

import "time"

// Event bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // patient, observation, analysis
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Study service API models
type PatientRequest struct {
	Name string `json:"name"`
}

type DoctorRequest struct {
	Name string `json:"name"`
}

type ObservationRequest struct {
	Value float64 `json:"value"`
	// Day is optional; when omitted the next day in the patient's series
	// is assigned.
	Day *int `json:"day,omitempty"`
}

type ObservationResponse struct {
	PatientName string  `json:"patient_name"`
	Day         int     `json:"day"`
	Value       float64 `json:"value"`
}

type PatientResponse struct {
	Name         string                `json:"name"`
	Observations []ObservationResponse `json:"observations"`
}

type DoctorResponse struct {
	Name     string   `json:"name"`
	Patients []string `json:"patients"`
}

// Analytics service API models
type AnalysisRequest struct {
	StudyID   string      `json:"study_id"`
	Data      [][]float64 `json:"data"`
	Threshold *float64    `json:"threshold,omitempty"`
}

type AnalysisReport struct {
	ID            string      `json:"id"`
	StudyID       string      `json:"study_id"`
	Patients      int         `json:"patients"`
	Days          int         `json:"days"`
	Threshold     float64     `json:"threshold"`
	DailyMean     []float64   `json:"daily_mean"`
	DailyMax      []float64   `json:"daily_max"`
	DailyMin      []float64   `json:"daily_min"`
	DailyStd      []float64   `json:"daily_std"`
	PatientStdDev []float64   `json:"patient_std_dev"`
	DaysAbove     []int       `json:"days_above_threshold"`
	Severity      []string    `json:"severity"`
	Normalised    [][]float64 `json:"normalised,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}
