package service

import (
	"context"

	"github.com/codeduel/codeduel-backend/internal/models"
	"github.com/codeduel/codeduel-backend/pkg/logger"
	"github.com/codeduel/codeduel-backend/pkg/sandbox"
)

// languageIDs maps supported languages to sandbox language identifiers.
var languageIDs = map[models.Language]int{
	models.LanguageJavaScript: 63,
	models.LanguagePython:     71,
	models.LanguageJava:       62,
	models.LanguageCPP:        54,
}

// CaseRunner executes one submission against one test input. Satisfied by
// *sandbox.Client.
type CaseRunner interface {
	Run(ctx context.Context, languageID int, sourceCode, stdin, expectedOutput string) (*sandbox.RunResult, error)
}

// CaseResult is the evaluator's verdict for a single test case.
type CaseResult struct {
	Passed        bool    `json:"passed"`
	Output        string  `json:"output,omitempty"`
	Error         string  `json:"error,omitempty"`
	ExecutionTime float64 `json:"executionTime"` // seconds
	MemoryUsed    int     `json:"memoryUsed"`    // KB
}

// Evaluation is the aggregated scoring result for one submission.
type Evaluation struct {
	Score         int          `json:"score"` // 0..100
	PassedTests   int          `json:"passedTests"`
	TotalTests    int          `json:"totalTests"`
	Results       []CaseResult `json:"results"`
	FailureReason string       `json:"failureReason,omitempty"` // set when the zero score is a failure state, not a graded zero
}

// EvaluatorService scores submitted code against a problem's test cases by
// delegating each case to the external sandbox.
type EvaluatorService struct {
	runner CaseRunner
}

func NewEvaluatorService(runner CaseRunner) *EvaluatorService {
	return &EvaluatorService{runner: runner}
}

// Evaluate runs code against every test case and returns the score as
// round(100 * passed/total). A case that errors or times out counts as failed.
// If the sandbox could not be reached for any case at all, the evaluation
// carries an explicit failure reason and ErrSandboxUnavailable is returned so
// callers can surface the failure instead of a fabricated zero.
func (s *EvaluatorService) Evaluate(ctx context.Context, code string, lang models.Language, testCases []models.TestCase) (*Evaluation, error) {
	if len(testCases) == 0 {
		return nil, ErrNoTestCases
	}

	languageID, ok := languageIDs[lang]
	if !ok {
		languageID = languageIDs[models.DefaultLanguage]
	}

	eval := &Evaluation{
		TotalTests: len(testCases),
		Results:    make([]CaseResult, 0, len(testCases)),
	}

	unreachable := 0
	for i, tc := range testCases {
		result, err := s.runner.Run(ctx, languageID, code, tc.Input, tc.Expected)
		if err != nil {
			unreachable++
			logger.Warn("Sandbox run failed", "case", i, "error", err)
			eval.Results = append(eval.Results, CaseResult{
				Passed: false,
				Error:  err.Error(),
			})
			continue
		}

		cr := CaseResult{
			Passed:        result.Passed(),
			Output:        result.Stdout,
			ExecutionTime: result.Time,
			MemoryUsed:    result.Memory,
		}
		if !cr.Passed {
			cr.Error = caseError(result)
		}
		if cr.Passed {
			eval.PassedTests++
		}
		eval.Results = append(eval.Results, cr)
	}

	eval.Score = int(float64(eval.PassedTests)/float64(eval.TotalTests)*100 + 0.5)

	if unreachable == len(testCases) {
		eval.Score = 0
		eval.FailureReason = ErrSandboxUnavailable.Error()
		return eval, ErrSandboxUnavailable
	}

	return eval, nil
}

func caseError(r *sandbox.RunResult) string {
	switch r.StatusID {
	case sandbox.StatusCompilationError:
		if r.CompileOutput != "" {
			return r.CompileOutput
		}
		return "compilation error"
	case sandbox.StatusTimeLimitExceeded:
		return "time limit exceeded"
	case sandbox.StatusWrongAnswer:
		return "wrong answer"
	default:
		if r.Stderr != "" {
			return r.Stderr
		}
		return r.StatusName
	}
}
