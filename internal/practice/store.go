package practice

import "context"

// Store is the persistence surface for practice tests and results.
type Store interface {
	CreateTest(ctx context.Context, t PracticeTest) error
	GetTest(ctx context.Context, id string) (PracticeTest, error)
	ListTests(ctx context.Context, testBookID string) ([]PracticeTest, error)
	UpdateTest(ctx context.Context, t PracticeTest) error
	DeleteTest(ctx context.Context, id string) error

	CreateResult(ctx context.Context, r TestResult) error
	GetResult(ctx context.Context, id string) (TestResult, error)
	// LatestResult returns the newest result for user+test, or
	// ErrResultNotFound when the user has never solved it.
	LatestResult(ctx context.Context, userID, testID string) (TestResult, error)
	// ListResults filters by user and optionally by practice test; page is
	// 1-based. Returns the page and the unpaginated total.
	ListResults(ctx context.Context, userID, testID string, page, perPage int) ([]TestResult, int, error)
}
