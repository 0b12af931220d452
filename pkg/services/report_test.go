package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vowsuite-inc/vowsuite-reports/pkg/apperrors"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/llm"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/sqlsafety"
)

type stubExecutor struct {
	executeFunc func(ctx context.Context, sqlQuery string, params []any, limit int) (*QueryResult, error)

	calls      int
	lastSQL    string
	lastParams []any
	lastLimit  int
}

func (s *stubExecutor) ExecuteQuery(ctx context.Context, sqlQuery string, params []any, limit int) (*QueryResult, error) {
	s.calls++
	s.lastSQL = sqlQuery
	s.lastParams = params
	s.lastLimit = limit
	if s.executeFunc != nil {
		return s.executeFunc(ctx, sqlQuery, params, limit)
	}
	return &QueryResult{Columns: []string{}, Rows: []map[string]any{}}, nil
}

func newTestService(t *testing.T, gen llm.SQLGenerator, exec SQLExecutor) ReportService {
	t.Helper()
	validator := sqlsafety.NewValidator([]string{
		"families", "family_members", "seating_tables", "wedding_admins", "gifts",
	})
	return NewReportService(gen, validator, exec, "system prompt", 1000, time.Second, zap.NewNop())
}

func TestAsk_HappyPath(t *testing.T) {
	gen := llm.NewMockGenerator()
	gen.GenerateSQLFunc = func(ctx context.Context, systemPrompt, question string) (string, error) {
		return "```sql\nSELECT name FROM families WHERE wedding_id = $1 LIMIT 1000;\n```", nil
	}
	exec := &stubExecutor{
		executeFunc: func(ctx context.Context, sqlQuery string, params []any, limit int) (*QueryResult, error) {
			return &QueryResult{
				Columns:  []string{"name"},
				Rows:     []map[string]any{{"name": "Alvarez"}},
				RowCount: 1,
			}, nil
		},
	}

	weddingID := uuid.New()
	result, err := newTestService(t, gen, exec).Ask(context.Background(), weddingID, "admin-1", "list families")
	require.NoError(t, err)

	// Fences and trailing semicolon are stripped before execution.
	assert.Equal(t, "SELECT name FROM families WHERE wedding_id = $1 LIMIT 1000", result.SQL)
	assert.Equal(t, []string{"name"}, result.Columns)
	assert.Equal(t, 1, result.RowCount)

	require.Len(t, exec.lastParams, 1)
	assert.Equal(t, weddingID, exec.lastParams[0])
	assert.Equal(t, 1000, exec.lastLimit)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	svc := newTestService(t, llm.NewMockGenerator(), &stubExecutor{})

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := svc.Ask(context.Background(), uuid.New(), "admin-1", q)
		assert.ErrorIs(t, err, apperrors.ErrEmptyQuestion)
	}
}

func TestAsk_NoGenerator(t *testing.T) {
	svc := newTestService(t, nil, &stubExecutor{})

	_, err := svc.Ask(context.Background(), uuid.New(), "admin-1", "how many guests?")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
}

func TestAsk_GeneratorFailure(t *testing.T) {
	gen := llm.NewMockGenerator()
	gen.GenerateSQLFunc = func(ctx context.Context, systemPrompt, question string) (string, error) {
		return "", errors.New("rate limited")
	}
	exec := &stubExecutor{}

	_, err := newTestService(t, gen, exec).Ask(context.Background(), uuid.New(), "admin-1", "q")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
	assert.Zero(t, exec.calls)
}

func TestAsk_EmptyModelResponse(t *testing.T) {
	gen := llm.NewMockGenerator() // returns "" by default
	exec := &stubExecutor{}

	_, err := newTestService(t, gen, exec).Ask(context.Background(), uuid.New(), "admin-1", "q")
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
	assert.Zero(t, exec.calls)
}

func TestAsk_RejectedSQLNeverExecutes(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		wantRule sqlsafety.Rule
	}{
		{
			name:     "mutation",
			sql:      "DELETE FROM families WHERE wedding_id = $1",
			wantRule: sqlsafety.RuleSelectOnly,
		},
		{
			name:     "missing tenant marker",
			sql:      "SELECT name, wedding_id FROM families",
			wantRule: sqlsafety.RuleTenantParam,
		},
		{
			name:     "table outside allowlist",
			sql:      "SELECT * FROM payments WHERE wedding_id = $1",
			wantRule: sqlsafety.RuleTableAllowlist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := llm.NewMockGenerator()
			gen.GenerateSQLFunc = func(ctx context.Context, systemPrompt, question string) (string, error) {
				return tt.sql, nil
			}
			exec := &stubExecutor{}

			_, err := newTestService(t, gen, exec).Ask(context.Background(), uuid.New(), "admin-1", "q")

			var verr *sqlsafety.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantRule, verr.Rule)
			assert.Zero(t, exec.calls, "rejected SQL must not reach the executor")
		})
	}
}

func TestAsk_ExecutionFailure(t *testing.T) {
	gen := llm.NewMockGenerator()
	gen.GenerateSQLFunc = func(ctx context.Context, systemPrompt, question string) (string, error) {
		return "SELECT name FROM families WHERE wedding_id = $1", nil
	}
	exec := &stubExecutor{
		executeFunc: func(ctx context.Context, sqlQuery string, params []any, limit int) (*QueryResult, error) {
			return nil, errors.New(`column "nmae" does not exist`)
		},
	}

	_, err := newTestService(t, gen, exec).Ask(context.Background(), uuid.New(), "admin-1", "q")
	assert.ErrorIs(t, err, apperrors.ErrExecutionFailed)
}

func TestAsk_InjectionInAdminID(t *testing.T) {
	gen := llm.NewMockGenerator()
	gen.GenerateSQLFunc = func(ctx context.Context, systemPrompt, question string) (string, error) {
		return "SELECT name FROM wedding_admins WHERE wedding_id = $1 AND id = $2", nil
	}
	exec := &stubExecutor{}

	_, err := newTestService(t, gen, exec).Ask(context.Background(), uuid.New(), "' OR 1=1 --", "q")

	var verr *sqlsafety.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, sqlsafety.RuleParameterInjection, verr.Rule)
	assert.Zero(t, exec.calls)
}

func TestRerun_RevalidatesSavedSQL(t *testing.T) {
	exec := &stubExecutor{}
	svc := newTestService(t, nil, exec)

	// Rerun works without a generator: no AI call is involved.
	result, err := svc.Rerun(context.Background(), uuid.New(), "admin-1",
		"SELECT count(*) AS guests FROM family_members WHERE wedding_id = $1")
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 1, exec.calls)

	// Saved SQL that no longer passes policy is rejected.
	_, err = svc.Rerun(context.Background(), uuid.New(), "admin-1",
		"SELECT * FROM payments WHERE wedding_id = $1")
	var verr *sqlsafety.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, sqlsafety.RuleTableAllowlist, verr.Rule)
	assert.Equal(t, 1, exec.calls)
}

func TestRerun_EmptySQL(t *testing.T) {
	svc := newTestService(t, nil, &stubExecutor{})

	_, err := svc.Rerun(context.Background(), uuid.New(), "admin-1", "   ")
	var verr *sqlsafety.ValidationError
	require.ErrorAs(t, err, &verr)
}
