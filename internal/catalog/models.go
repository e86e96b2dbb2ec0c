// Package catalog holds the browsable taxonomy: lessons, exam types,
// subjects and test books.
package catalog

import "time"

type Lesson struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ExamType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Subject struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LessonID   string    `json:"lesson_id"`
	ExamTypeID string    `json:"exam_type_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type TestBook struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	LessonID      string    `json:"lesson_id"`
	ExamTypeID    string    `json:"exam_type_id"`
	SubjectID     string    `json:"subject_id"`
	PublishedYear int       `json:"published_year"`
	CreatedAt     time.Time `json:"created_at"`
}
