package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/kamal-hamza/grassfier/internal/core/domain"
	"github.com/kamal-hamza/grassfier/internal/core/ports"
	"github.com/kamal-hamza/grassfier/internal/telemetry"
)

// ClassifierService connects intake, preview state and the predictor.
// The Start/Run/Finish helpers let an event loop run the slow half elsewhere.
type ClassifierService struct {
	intake    *IntakeService
	state     *PreviewState
	predictor ports.Predictor
	logger    *zap.Logger
}

// NewClassifierService creates a new classifier service
func NewClassifierService(intake *IntakeService, state *PreviewState, predictor ports.Predictor, logger *zap.Logger) *ClassifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassifierService{
		intake:    intake,
		state:     state,
		predictor: predictor,
		logger:    logger,
	}
}

// State returns the preview state driven by this service
func (s *ClassifierService) State() *PreviewState {
	return s.state
}

// StartIntake runs the synchronous checks and opens a new generation.
// A rejected candidate returns ErrRejectedCandidate and changes nothing.
// An oversized one is failed immediately and returns ErrTooLarge.
func (s *ClassifierService) StartIntake(c Candidate) (domain.Ticket, error) {
	err := s.intake.Check(c)
	if errors.Is(err, domain.ErrRejectedCandidate) {
		s.logger.Debug("candidate ignored", zap.String("name", c.Name), zap.String("mime_type", c.MIMEType))
		return domain.Ticket{}, err
	}

	ticket := s.state.BeginIntake()
	if err != nil {
		s.state.FailIntake(ticket, err)
		return ticket, err
	}
	return ticket, nil
}

// RunIntake reads and decodes the candidate. Safe to call off the UI loop.
func (s *ClassifierService) RunIntake(ctx context.Context, c Candidate) (*domain.Intake, error) {
	return s.intake.Accept(ctx, c)
}

// FinishIntake applies an intake outcome; stale tickets are dropped
func (s *ClassifierService) FinishIntake(ticket domain.Ticket, intake *domain.Intake, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.state.CancelIntake(ticket)
			return false
		}
		return s.state.FailIntake(ticket, err)
	}
	return s.state.SetIntake(ticket, intake)
}

// Intake runs a whole intake synchronously
func (s *ClassifierService) Intake(ctx context.Context, c Candidate) error {
	ticket, err := s.StartIntake(c)
	if err != nil {
		return err
	}

	intake, err := s.RunIntake(ctx, c)
	s.FinishIntake(ticket, intake, err)
	if err != nil {
		return fmt.Errorf("failed to accept %s: %w", c.Name, err)
	}
	return nil
}

// StartPrediction enters Loading and returns the file to upload
func (s *ClassifierService) StartPrediction() (domain.Ticket, domain.SourceFile, error) {
	return s.state.BeginPrediction()
}

// StartPredictionFor is StartPrediction for the image accepted under ticket.
// It returns ErrSuperseded when a newer image has been selected since.
func (s *ClassifierService) StartPredictionFor(ticket domain.Ticket) (domain.Ticket, domain.SourceFile, error) {
	return s.state.BeginPredictionFor(ticket)
}

// RunPrediction performs the network call. Safe to call off the UI loop.
func (s *ClassifierService) RunPrediction(ctx context.Context, file domain.SourceFile) (*domain.PredictionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "classifier.predict")
	defer span.End()
	span.SetAttributes(
		attribute.String("file.name", file.Name),
		attribute.Int64("file.size", file.Size()),
	)

	resp, err := s.predictor.Predict(ctx, file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		s.logger.Error("prediction failed", zap.String("name", file.Name), zap.Error(err))
		return nil, err
	}
	if resp == nil {
		span.SetStatus(codes.Error, "empty response")
		s.logger.Error("prediction returned no response", zap.String("name", file.Name))
		return nil, nil
	}

	span.SetAttributes(attribute.Bool("prediction.success", resp.Success))
	if resp.Success {
		s.logger.Info("prediction succeeded",
			zap.String("name", file.Name),
			zap.String("prediction", resp.Data.Label()),
		)
	} else {
		span.SetStatus(codes.Error, "application failure")
		s.logger.Warn("prediction rejected",
			zap.String("name", file.Name),
			zap.Strings("errors", resp.Errors),
		)
	}
	return resp, nil
}

// FinishPrediction applies a prediction outcome; stale tickets are dropped
func (s *ClassifierService) FinishPrediction(ticket domain.Ticket, resp *domain.PredictionResponse, err error) bool {
	return s.state.CompletePrediction(ticket, resp, err)
}

// Predict runs a whole prediction synchronously and returns the resulting state.
// Without an image it returns ErrNoImage and makes no network call.
func (s *ClassifierService) Predict(ctx context.Context) (Snapshot, error) {
	ticket, file, err := s.StartPrediction()
	if err != nil {
		return s.state.Snapshot(), err
	}

	resp, err := s.RunPrediction(ctx, file)
	s.FinishPrediction(ticket, resp, err)
	return s.state.Snapshot(), nil
}
