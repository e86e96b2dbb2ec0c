package client

import "time"

type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsSystem    bool   `json:"is_system"`
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	Roles     []Role    `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

type Lesson struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ExamType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Subject struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LessonID   string `json:"lesson_id"`
	ExamTypeID string `json:"exam_type_id"`
}

type TestBook struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LessonID      string `json:"lesson_id"`
	ExamTypeID    string `json:"exam_type_id"`
	SubjectID     string `json:"subject_id"`
	PublishedYear int    `json:"published_year"`
}

type PracticeTest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TestNumber    int    `json:"test_number"`
	QuestionCount int    `json:"question_count"`
	TestBookID    string `json:"test_book_id"`
	SubjectID     string `json:"subject_id"`
}

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

type SolveOutcome struct {
	Result           TestResult `json:"result"`
	CanRetake        bool       `json:"can_retake"`
	HoursUntilRetake *float64   `json:"hours_until_retake,omitempty"`
}

type ResultPage struct {
	Results []TestResult `json:"results"`
	Total   int          `json:"total"`
}
