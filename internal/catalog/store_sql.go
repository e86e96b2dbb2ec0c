package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// mapWriteErr folds driver-specific constraint messages into the package
// sentinels.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique"), strings.Contains(msg, "duplicate"):
		return ErrDuplicate
	case strings.Contains(msg, "foreign key"), strings.Contains(msg, "violates"):
		return ErrInUse
	}
	return err
}

// ---- lessons ----

func (s *SQLStore) CreateLesson(ctx context.Context, l Lesson) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lessons (id,name,created_at) VALUES ($1,$2,$3)`,
		l.ID, l.Name, l.CreatedAt.Unix())
	return mapWriteErr(err)
}

func (s *SQLStore) GetLesson(ctx context.Context, id string) (Lesson, error) {
	var l Lesson
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id,name,created_at FROM lessons WHERE id=$1`, id).
		Scan(&l.ID, &l.Name, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lesson{}, ErrNotFound
		}
		return Lesson{}, err
	}
	l.CreatedAt = time.Unix(created, 0).UTC()
	return l, nil
}

func (s *SQLStore) ListLessons(ctx context.Context) ([]Lesson, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,name,created_at FROM lessons ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Lesson{}
	for rows.Next() {
		var l Lesson
		var created int64
		if err := rows.Scan(&l.ID, &l.Name, &created); err != nil {
			return nil, err
		}
		l.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateLesson(ctx context.Context, l Lesson) error {
	res, err := s.db.ExecContext(ctx, `UPDATE lessons SET name=$1 WHERE id=$2`, l.Name, l.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	return requireRow(res)
}

func (s *SQLStore) DeleteLesson(ctx context.Context, id string) error {
	if used, err := s.referenced(ctx,
		`SELECT 1 FROM subjects WHERE lesson_id=$1
		 UNION SELECT 1 FROM test_books WHERE lesson_id=$1`, id); err != nil {
		return err
	} else if used {
		return ErrInUse
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM lessons WHERE id=$1`, id)
	if err != nil {
		return mapWriteErr(err)
	}
	return requireRow(res)
}

// ---- exam types ----

func (s *SQLStore) CreateExamType(ctx context.Context, e ExamType) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_types (id,name,description,created_at) VALUES ($1,$2,$3,$4)`,
		e.ID, e.Name, e.Description, e.CreatedAt.Unix())
	return mapWriteErr(err)
}

func (s *SQLStore) GetExamType(ctx context.Context, id string) (ExamType, error) {
	var e ExamType
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id,name,COALESCE(description,''),created_at FROM exam_types WHERE id=$1`, id).
		Scan(&e.ID, &e.Name, &e.Description, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ExamType{}, ErrNotFound
		}
		return ExamType{}, err
	}
	e.CreatedAt = time.Unix(created, 0).UTC()
	return e, nil
}

func (s *SQLStore) ListExamTypes(ctx context.Context) ([]ExamType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,COALESCE(description,''),created_at FROM exam_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ExamType{}
	for rows.Next() {
		var e ExamType
		var created int64
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateExamType(ctx context.Context, e ExamType) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE exam_types SET name=$1, description=$2 WHERE id=$3`, e.Name, e.Description, e.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	return requireRow(res)
}

func (s *SQLStore) DeleteExamType(ctx context.Context, id string) error {
	if used, err := s.referenced(ctx,
		`SELECT 1 FROM subjects WHERE exam_type_id=$1
		 UNION SELECT 1 FROM test_books WHERE exam_type_id=$1`, id); err != nil {
		return err
	} else if used {
		return ErrInUse
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM exam_types WHERE id=$1`, id)
	if err != nil {
		return mapWriteErr(err)
	}
	return requireRow(res)
}

// ---- subjects ----

func (s *SQLStore) CreateSubject(ctx context.Context, sub Subject) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subjects (id,name,lesson_id,exam_type_id,created_at) VALUES ($1,$2,$3,$4,$5)`,
		sub.ID, sub.Name, sub.LessonID, sub.ExamTypeID, sub.CreatedAt.Unix())
	return mapWriteErr(err)
}

func (s *SQLStore) GetSubject(ctx context.Context, id string) (Subject, error) {
	var sub Subject
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id,name,lesson_id,exam_type_id,created_at FROM subjects WHERE id=$1`, id).
		Scan(&sub.ID, &sub.Name, &sub.LessonID, &sub.ExamTypeID, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subject{}, ErrNotFound
		}
		return Subject{}, err
	}
	sub.CreatedAt = time.Unix(created, 0).UTC()
	return sub, nil
}

func (s *SQLStore) ListSubjects(ctx context.Context) ([]Subject, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,lesson_id,exam_type_id,created_at FROM subjects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubjects(rows)
}

func (s *SQLStore) UpdateSubject(ctx context.Context, sub Subject) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE subjects SET name=$1, lesson_id=$2, exam_type_id=$3 WHERE id=$4`,
		sub.Name, sub.LessonID, sub.ExamTypeID, sub.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	return requireRow(res)
}

func (s *SQLStore) DeleteSubject(ctx context.Context, id string) error {
	if used, err := s.referenced(ctx,
		`SELECT 1 FROM test_books WHERE subject_id=$1
		 UNION SELECT 1 FROM test_book_subjects WHERE subject_id=$1`, id); err != nil {
		return err
	} else if used {
		return ErrInUse
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM subjects WHERE id=$1`, id)
	if err != nil {
		return mapWriteErr(err)
	}
	return requireRow(res)
}

// ---- test books ----

func (s *SQLStore) CreateTestBook(ctx context.Context, b TestBook) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO test_books (id,name,lesson_id,exam_type_id,subject_id,published_year,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.Name, b.LessonID, b.ExamTypeID, b.SubjectID, b.PublishedYear, b.CreatedAt.Unix())
	return mapWriteErr(err)
}

func (s *SQLStore) GetTestBook(ctx context.Context, id string) (TestBook, error) {
	var b TestBook
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id,name,lesson_id,exam_type_id,subject_id,published_year,created_at
		 FROM test_books WHERE id=$1`, id).
		Scan(&b.ID, &b.Name, &b.LessonID, &b.ExamTypeID, &b.SubjectID, &b.PublishedYear, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TestBook{}, ErrNotFound
		}
		return TestBook{}, err
	}
	b.CreatedAt = time.Unix(created, 0).UTC()
	return b, nil
}

func (s *SQLStore) ListTestBooks(ctx context.Context, subjectID string) ([]TestBook, error) {
	var rows *sql.Rows
	var err error
	if subjectID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,name,lesson_id,exam_type_id,subject_id,published_year,created_at
			 FROM test_books ORDER BY name`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,name,lesson_id,exam_type_id,subject_id,published_year,created_at
			 FROM test_books WHERE subject_id=$1 ORDER BY name`, subjectID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []TestBook{}
	for rows.Next() {
		var b TestBook
		var created int64
		if err := rows.Scan(&b.ID, &b.Name, &b.LessonID, &b.ExamTypeID, &b.SubjectID, &b.PublishedYear, &created); err != nil {
			return nil, err
		}
		b.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateTestBook(ctx context.Context, b TestBook) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE test_books SET name=$1, lesson_id=$2, exam_type_id=$3, subject_id=$4, published_year=$5
		 WHERE id=$6`,
		b.Name, b.LessonID, b.ExamTypeID, b.SubjectID, b.PublishedYear, b.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	return requireRow(res)
}

func (s *SQLStore) DeleteTestBook(ctx context.Context, id string) error {
	// practice_tests and test_book_subjects cascade
	res, err := s.db.ExecContext(ctx, `DELETE FROM test_books WHERE id=$1`, id)
	if err != nil {
		return mapWriteErr(err)
	}
	return requireRow(res)
}

func (s *SQLStore) ListBookSubjects(ctx context.Context, bookID string) ([]Subject, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id,s.name,s.lesson_id,s.exam_type_id,s.created_at
		 FROM subjects s JOIN test_book_subjects tbs ON tbs.subject_id=s.id
		 WHERE tbs.test_book_id=$1 ORDER BY s.name`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubjects(rows)
}

func (s *SQLStore) SetBookSubjects(ctx context.Context, bookID string, subjectIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM test_book_subjects WHERE test_book_id=$1`, bookID); err != nil {
		return mapWriteErr(err)
	}
	for _, sid := range subjectIDs {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO test_book_subjects (test_book_id,subject_id) VALUES ($1,$2)`,
			bookID, sid); err != nil {
			return mapWriteErr(err)
		}
	}
	return tx.Commit()
}

// ---- helpers ----

func scanSubjects(rows *sql.Rows) ([]Subject, error) {
	out := []Subject{}
	for rows.Next() {
		var sub Subject
		var created int64
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.LessonID, &sub.ExamTypeID, &created); err != nil {
			return nil, err
		}
		sub.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) referenced(ctx context.Context, q, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, q, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
