package practice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/denemehub/denemehub/internal/evaluate"
)

// retakeWindow is how long a user must wait before re-solving a test.
const retakeWindow = 24 * time.Hour

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// NewTest builds a validated PracticeTest. The key is stored uppercase and
// must line up with the question count.
func NewTest(name string, testNumber, questionCount int, answerKey, testBookID, subjectID string) (PracticeTest, error) {
	key := strings.ToUpper(strings.TrimSpace(answerKey))
	if len(key) != questionCount {
		return PracticeTest{}, ErrBadAnswerKey
	}
	return PracticeTest{
		ID:            uuid.NewString(),
		Name:          name,
		TestNumber:    testNumber,
		QuestionCount: questionCount,
		AnswerKey:     key,
		TestBookID:    testBookID,
		SubjectID:     subjectID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Solve evaluates a submission against the stored answer key and persists
// the result. Net score follows the exam convention: correct - wrong/4.
func (s *Service) Solve(ctx context.Context, userID, testID, userAnswers string) (SolveOutcome, error) {
	test, err := s.store.GetTest(ctx, testID)
	if err != nil {
		return SolveOutcome{}, err
	}

	if hours, blocked, err := s.retakeBlock(ctx, userID, testID); err != nil {
		return SolveOutcome{}, err
	} else if blocked {
		return SolveOutcome{}, &RetakeError{HoursRemaining: hours}
	}

	if len(userAnswers) != len(test.AnswerKey) {
		return SolveOutcome{}, ErrLengthMismatch
	}

	ev := evaluate.Evaluate(test.AnswerKey, userAnswers)
	r := TestResult{
		ID:             uuid.NewString(),
		UserID:         userID,
		PracticeTestID: testID,
		UserAnswers:    strings.ToUpper(userAnswers),
		CorrectCount:   ev.CorrectCount,
		WrongCount:     ev.WrongCount,
		EmptyCount:     ev.EmptyCount,
		NetScore:       float64(ev.CorrectCount) - float64(ev.WrongCount)/4.0,
		SolvedAt:       s.now().UTC(),
	}
	if err := s.store.CreateResult(ctx, r); err != nil {
		return SolveOutcome{}, err
	}
	return SolveOutcome{Result: r, CanRetake: true}, nil
}

// retakeBlock returns the remaining wait in hours when the user solved this
// test less than retakeWindow ago.
func (s *Service) retakeBlock(ctx context.Context, userID, testID string) (float64, bool, error) {
	latest, err := s.store.LatestResult(ctx, userID, testID)
	if err != nil {
		if err == ErrResultNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	elapsed := s.now().Sub(latest.SolvedAt)
	if elapsed < retakeWindow {
		return (retakeWindow - elapsed).Hours(), true, nil
	}
	return 0, false, nil
}

// Result fetches a single result, restricted to its owner unless the caller
// may view all results.
func (s *Service) Result(ctx context.Context, id, userID string, viewAll bool) (TestResult, error) {
	r, err := s.store.GetResult(ctx, id)
	if err != nil {
		return TestResult{}, err
	}
	if !viewAll && r.UserID != userID {
		return TestResult{}, ErrResultNotFound
	}
	return r, nil
}

func (s *Service) UserResults(ctx context.Context, userID, testID string, page, perPage int) ([]TestResult, int, error) {
	return s.store.ListResults(ctx, userID, testID, page, perPage)
}
