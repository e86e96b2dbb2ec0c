// Package practice owns practice tests and solved-test results.
package practice

import "time"

// PracticeTest is a numbered test inside a test book. AnswerKey is an
// uppercase string of option letters, one per question.
type PracticeTest struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TestNumber    int       `json:"test_number"`
	QuestionCount int       `json:"question_count"`
	AnswerKey     string    `json:"answer_key,omitempty"`
	TestBookID    string    `json:"test_book_id"`
	SubjectID     string    `json:"subject_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// TestResult is derived at solve time and never mutated afterwards.
type TestResult struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	PracticeTestID string    `json:"practice_test_id"`
	UserAnswers    string    `json:"user_answers"`
	CorrectCount   int       `json:"correct_count"`
	WrongCount     int       `json:"wrong_count"`
	EmptyCount     int       `json:"empty_count"`
	NetScore       float64   `json:"net_score"`
	SolvedAt       time.Time `json:"solved_at"`
}

// SolveOutcome is what the solve endpoint returns.
type SolveOutcome struct {
	Result           TestResult `json:"result"`
	CanRetake        bool       `json:"can_retake"`
	HoursUntilRetake *float64   `json:"hours_until_retake,omitempty"`
}
