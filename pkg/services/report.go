package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vowsuite-inc/vowsuite-reports/pkg/apperrors"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/llm"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/logging"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/models"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/sqlsafety"
)

// ReportService answers natural-language report questions for a
// wedding. Every query passes through the safety validator before it
// touches the database, whether it came from the generator or from a
// caller rerunning saved SQL.
type ReportService interface {
	Ask(ctx context.Context, weddingID uuid.UUID, adminID, question string) (*models.ReportResult, error)
	Rerun(ctx context.Context, weddingID uuid.UUID, adminID, sqlText string) (*models.ReportResult, error)
}

type reportService struct {
	generator    llm.SQLGenerator
	validator    *sqlsafety.Validator
	executor     SQLExecutor
	systemPrompt string
	maxRows      int
	queryTimeout time.Duration
	logger       *zap.Logger
}

// NewReportService creates the report service. generator may be nil
// when no AI provider is configured; Ask then fails with
// apperrors.ErrServiceUnavailable while Rerun keeps working.
func NewReportService(
	generator llm.SQLGenerator,
	validator *sqlsafety.Validator,
	executor SQLExecutor,
	systemPrompt string,
	maxRows int,
	queryTimeout time.Duration,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		generator:    generator,
		validator:    validator,
		executor:     executor,
		systemPrompt: systemPrompt,
		maxRows:      maxRows,
		queryTimeout: queryTimeout,
		logger:       logger.Named("reports"),
	}
}

func (s *reportService) Ask(ctx context.Context, weddingID uuid.UUID, adminID, question string) (*models.ReportResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.ErrEmptyQuestion
	}
	if s.generator == nil {
		return nil, apperrors.ErrServiceUnavailable
	}

	s.logger.Info("report question received",
		zap.String("wedding_id", weddingID.String()),
		zap.String("provider", s.generator.Provider()),
		zap.Int("question_len", len(question)))

	raw, err := s.generator.GenerateSQL(ctx, s.systemPrompt, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrServiceUnavailable, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty model response", apperrors.ErrServiceUnavailable)
	}

	return s.validateAndRun(ctx, weddingID, adminID, raw)
}

func (s *reportService) Rerun(ctx context.Context, weddingID uuid.UUID, adminID, sqlText string) (*models.ReportResult, error) {
	if strings.TrimSpace(sqlText) == "" {
		return nil, &sqlsafety.ValidationError{
			Rule:    sqlsafety.RuleSelectOnly,
			Message: "Only SELECT queries are allowed",
		}
	}

	// Saved SQL gets no trust: the full pipeline runs again, so a
	// query that passed under an older policy cannot sneak through.
	return s.validateAndRun(ctx, weddingID, adminID, sqlText)
}

func (s *reportService) validateAndRun(ctx context.Context, weddingID uuid.UUID, adminID, rawSQL string) (*models.ReportResult, error) {
	result := s.validator.Validate(rawSQL)
	if !result.Valid() {
		s.logger.Warn("query rejected",
			zap.String("wedding_id", weddingID.String()),
			zap.String("rule", string(result.Err.Rule)),
			zap.String("sql", logging.SanitizeSQL(result.CleanedSQL)))
		return nil, result.Err
	}

	// Postgres rejects bound parameters the statement never references,
	// so the admin id is only bound when the query uses $2.
	params := []any{weddingID}
	if strings.Contains(result.CleanedSQL, "$2") {
		params = append(params, adminID)
	}
	if verr := sqlsafety.CheckParameters(params); verr != nil {
		return nil, verr
	}

	execCtx := ctx
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	queryResult, err := s.executor.ExecuteQuery(execCtx, result.CleanedSQL, params, s.maxRows)
	if err != nil {
		s.logger.Error("report query failed",
			zap.String("wedding_id", weddingID.String()),
			zap.String("sql", logging.SanitizeSQL(result.CleanedSQL)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", apperrors.ErrExecutionFailed, err)
	}

	s.logger.Info("report query completed",
		zap.String("wedding_id", weddingID.String()),
		zap.Int("row_count", queryResult.RowCount))

	return &models.ReportResult{
		Rows:     queryResult.Rows,
		SQL:      result.CleanedSQL,
		Columns:  queryResult.Columns,
		RowCount: queryResult.RowCount,
	}, nil
}
