package catalog

import "context"

// Store is the persistence surface for the catalog.
type Store interface {
	CreateLesson(ctx context.Context, l Lesson) error
	GetLesson(ctx context.Context, id string) (Lesson, error)
	ListLessons(ctx context.Context) ([]Lesson, error)
	UpdateLesson(ctx context.Context, l Lesson) error
	DeleteLesson(ctx context.Context, id string) error

	CreateExamType(ctx context.Context, e ExamType) error
	GetExamType(ctx context.Context, id string) (ExamType, error)
	ListExamTypes(ctx context.Context) ([]ExamType, error)
	UpdateExamType(ctx context.Context, e ExamType) error
	DeleteExamType(ctx context.Context, id string) error

	CreateSubject(ctx context.Context, s Subject) error
	GetSubject(ctx context.Context, id string) (Subject, error)
	ListSubjects(ctx context.Context) ([]Subject, error)
	UpdateSubject(ctx context.Context, s Subject) error
	DeleteSubject(ctx context.Context, id string) error

	CreateTestBook(ctx context.Context, b TestBook) error
	GetTestBook(ctx context.Context, id string) (TestBook, error)
	// ListTestBooks lists all books, or only those for a subject when
	// subjectID is set.
	ListTestBooks(ctx context.Context, subjectID string) ([]TestBook, error)
	UpdateTestBook(ctx context.Context, b TestBook) error
	DeleteTestBook(ctx context.Context, id string) error

	ListBookSubjects(ctx context.Context, bookID string) ([]Subject, error)
	SetBookSubjects(ctx context.Context, bookID string, subjectIDs []string) error
}
