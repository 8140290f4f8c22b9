package service

import (
	"context"
	"errors"
	"testing"

	"github.com/codeduel/codeduel-backend/internal/models"
	"github.com/codeduel/codeduel-backend/pkg/sandbox"
)

// fakeRunner scripts one outcome per test case, in order.
type fakeRunner struct {
	results []*sandbox.RunResult
	errs    []error
	calls   int
}

func (f *fakeRunner) Run(ctx context.Context, languageID int, sourceCode, stdin, expectedOutput string) (*sandbox.RunResult, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.results[i], nil
}

func accepted() *sandbox.RunResult {
	return &sandbox.RunResult{StatusID: sandbox.StatusAccepted, StatusName: "Accepted"}
}

func wrongAnswer() *sandbox.RunResult {
	return &sandbox.RunResult{StatusID: sandbox.StatusWrongAnswer, StatusName: "Wrong Answer"}
}

func makeCases(n int) []models.TestCase {
	cases := make([]models.TestCase, n)
	for i := range cases {
		cases[i] = models.TestCase{Input: "in", Expected: "out"}
	}
	return cases
}

func TestEvaluatorService_Evaluate_Scoring(t *testing.T) {
	tests := []struct {
		name          string
		results       []*sandbox.RunResult
		expectedScore int
		expectedPass  int
	}{
		{
			name:          "All cases pass",
			results:       []*sandbox.RunResult{accepted(), accepted(), accepted()},
			expectedScore: 100,
			expectedPass:  3,
		},
		{
			name:          "No cases pass",
			results:       []*sandbox.RunResult{wrongAnswer(), wrongAnswer(), wrongAnswer()},
			expectedScore: 0,
			expectedPass:  0,
		},
		{
			name:          "Two of three pass rounds to 67",
			results:       []*sandbox.RunResult{accepted(), accepted(), wrongAnswer()},
			expectedScore: 67,
			expectedPass:  2,
		},
		{
			name:          "One of three passes rounds to 33",
			results:       []*sandbox.RunResult{accepted(), wrongAnswer(), wrongAnswer()},
			expectedScore: 33,
			expectedPass:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{results: tt.results}
			evaluator := NewEvaluatorService(runner)

			eval, err := evaluator.Evaluate(context.Background(), "code", models.LanguagePython, makeCases(len(tt.results)))
			if err != nil {
				t.Fatalf("Evaluate returned error: %v", err)
			}

			if eval.Score != tt.expectedScore {
				t.Errorf("Score = %d, want %d", eval.Score, tt.expectedScore)
			}
			if eval.PassedTests != tt.expectedPass {
				t.Errorf("PassedTests = %d, want %d", eval.PassedTests, tt.expectedPass)
			}
			if eval.TotalTests != len(tt.results) {
				t.Errorf("TotalTests = %d, want %d", eval.TotalTests, len(tt.results))
			}
		})
	}
}

func TestEvaluatorService_Evaluate_PartialTransportErrorCountsAsFailed(t *testing.T) {
	runner := &fakeRunner{
		results: []*sandbox.RunResult{accepted(), nil, accepted()},
		errs:    []error{nil, errors.New("connection refused"), nil},
	}
	evaluator := NewEvaluatorService(runner)

	eval, err := evaluator.Evaluate(context.Background(), "code", models.LanguageJavaScript, makeCases(3))
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if eval.PassedTests != 2 {
		t.Errorf("PassedTests = %d, want 2", eval.PassedTests)
	}
	if eval.Score != 67 {
		t.Errorf("Score = %d, want 67", eval.Score)
	}
	if eval.FailureReason != "" {
		t.Errorf("FailureReason = %q, want empty for a partial failure", eval.FailureReason)
	}
	if eval.Results[1].Passed || eval.Results[1].Error == "" {
		t.Error("errored case should fail and carry its error message")
	}
}

func TestEvaluatorService_Evaluate_SandboxUnreachable(t *testing.T) {
	transportErr := errors.New("connection refused")
	runner := &fakeRunner{
		results: []*sandbox.RunResult{nil, nil},
		errs:    []error{transportErr, transportErr},
	}
	evaluator := NewEvaluatorService(runner)

	eval, err := evaluator.Evaluate(context.Background(), "code", models.LanguageJavaScript, makeCases(2))
	if !errors.Is(err, ErrSandboxUnavailable) {
		t.Fatalf("expected ErrSandboxUnavailable, got %v", err)
	}

	if eval == nil {
		t.Fatal("expected an evaluation alongside the error")
	}
	if eval.Score != 0 {
		t.Errorf("Score = %d, want 0", eval.Score)
	}
	if eval.FailureReason == "" {
		t.Error("expected an explicit failure reason")
	}
}

func TestEvaluatorService_Evaluate_NoTestCases(t *testing.T) {
	evaluator := NewEvaluatorService(&fakeRunner{})

	_, err := evaluator.Evaluate(context.Background(), "code", models.LanguagePython, nil)
	if !errors.Is(err, ErrNoTestCases) {
		t.Fatalf("expected ErrNoTestCases, got %v", err)
	}
}
