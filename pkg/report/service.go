package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/inflammetry/platform/pkg/common/kafka"
	"github.com/inflammetry/platform/pkg/common/logger"
	"github.com/inflammetry/platform/pkg/common/models"
	"github.com/inflammetry/platform/pkg/stats"
	"gorm.io/datatypes"
)

// Compute derives the full statistical report for a measurement table:
// per-day aggregates, per-patient spread, threshold counts and the
// normalised table, with each patient classified against the protocol.
func Compute(table stats.Table, threshold float64, proto Protocol) (*models.AnalysisReport, error) {
	normalised, err := stats.PatientNormalise(table)
	if err != nil {
		return nil, err
	}

	daysAbove := make([]int, table.Rows())
	severity := make([]string, table.Rows())
	for p := 0; p < table.Rows(); p++ {
		count, err := stats.DailyAboveThreshold(p, table, threshold)
		if err != nil {
			return nil, err
		}
		daysAbove[p] = count
		severity[p] = proto.Classify(count)
	}

	return &models.AnalysisReport{
		Patients:      table.Rows(),
		Days:          table.Cols(),
		Threshold:     threshold,
		DailyMean:     stats.DailyMean(table),
		DailyMax:      stats.DailyMax(table),
		DailyMin:      stats.DailyMin(table),
		DailyStd:      stats.DailyStd(table),
		PatientStdDev: stats.PatientStdDev(table),
		DaysAbove:     daysAbove,
		Severity:      severity,
		Normalised:    normalised.ToRows(),
	}, nil
}

type Service struct {
	repo     *Repository
	cache    *Cache
	producer *kafka.Producer
	proto    Protocol
}

func NewService(repo *Repository, cache *Cache, producer *kafka.Producer, proto Protocol) *Service {
	return &Service{repo: repo, cache: cache, producer: producer, proto: proto}
}

func (s *Service) Analyse(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error) {
	table, err := stats.FromRows(req.Data)
	if err != nil {
		return nil, err
	}
	return s.analyse(ctx, req.StudyID, table, req.Threshold)
}

// AnalyseTable runs the analysis on an already-parsed table, e.g. one
// loaded from a trial CSV.
func (s *Service) AnalyseTable(ctx context.Context, studyID string, table stats.Table, threshold *float64) (*models.AnalysisReport, error) {
	return s.analyse(ctx, studyID, table, threshold)
}

func (s *Service) analyse(ctx context.Context, studyID string, table stats.Table, threshold *float64) (*models.AnalysisReport, error) {
	th := s.proto.Threshold
	if threshold != nil {
		th = *threshold
	}

	rep, err := Compute(table, th, s.proto)
	if err != nil {
		return nil, err
	}
	rep.ID = uuid.New().String()
	rep.StudyID = studyID
	rep.CreatedAt = time.Now().UTC()

	summary, err := toJSONMap(rep)
	if err != nil {
		return nil, fmt.Errorf("encoding report summary: %w", err)
	}
	rec := &AnalysisRecord{
		ID:        rep.ID,
		StudyID:   rep.StudyID,
		Patients:  rep.Patients,
		Days:      rep.Days,
		Threshold: rep.Threshold,
		Summary:   summary,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting analysis: %w", err)
	}

	if err := s.cache.Put(ctx, rep); err != nil {
		logger.Log.WithError(err).Warn("failed to cache analysis report")
	}

	if s.producer != nil {
		data := map[string]interface{}{
			"analysis_id": rep.ID,
			"study_id":    rep.StudyID,
			"patients":    rep.Patients,
			"days":        rep.Days,
			"threshold":   rep.Threshold,
		}
		if err := s.producer.PublishKeyed(ctx, "analysis", "analytics-service", rep.StudyID, data); err != nil {
			logger.Log.WithError(err).Warn("failed to publish analysis event")
		}
	}

	return rep, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.AnalysisReport, error) {
	if cached, err := s.cache.Get(ctx, id); err != nil {
		logger.Log.WithError(err).Warn("report cache lookup failed")
	} else if cached != nil {
		return cached, nil
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rep, err := fromJSONMap(rec.Summary)
	if err != nil {
		return nil, fmt.Errorf("decoding report summary: %w", err)
	}

	if err := s.cache.Put(ctx, rep); err != nil {
		logger.Log.WithError(err).Warn("failed to re-cache analysis report")
	}
	return rep, nil
}

func (s *Service) ListByStudy(ctx context.Context, studyID string) ([]AnalysisRecord, error) {
	return s.repo.ListByStudy(ctx, studyID)
}

func (s *Service) Cleanup(ctx context.Context, ttl time.Duration) error {
	return s.repo.CleanupExpired(ctx, ttl)
}

func toJSONMap(rep *models.AnalysisReport) (datatypes.JSONMap, error) {
	data, err := json.Marshal(rep)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return datatypes.JSONMap(m), nil
}

func fromJSONMap(m datatypes.JSONMap) (*models.AnalysisReport, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var rep models.AnalysisReport
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
