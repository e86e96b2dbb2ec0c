package practice

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateTest(ctx context.Context, t PracticeTest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO practice_tests (id,name,test_number,question_count,answer_key,test_book_id,subject_id,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.Name, t.TestNumber, t.QuestionCount, t.AnswerKey, t.TestBookID, t.SubjectID, t.CreatedAt.Unix())
	return err
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (PracticeTest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,test_number,question_count,answer_key,test_book_id,subject_id,created_at
		 FROM practice_tests WHERE id=$1`, id)
	return scanTest(row)
}

func (s *SQLStore) ListTests(ctx context.Context, testBookID string) ([]PracticeTest, error) {
	var rows *sql.Rows
	var err error
	if testBookID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,name,test_number,question_count,answer_key,test_book_id,subject_id,created_at
			 FROM practice_tests ORDER BY test_book_id, test_number`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,name,test_number,question_count,answer_key,test_book_id,subject_id,created_at
			 FROM practice_tests WHERE test_book_id=$1 ORDER BY test_number`, testBookID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []PracticeTest{}
	for rows.Next() {
		var t PracticeTest
		var created int64
		if err := rows.Scan(&t.ID, &t.Name, &t.TestNumber, &t.QuestionCount, &t.AnswerKey, &t.TestBookID, &t.SubjectID, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateTest(ctx context.Context, t PracticeTest) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE practice_tests SET name=$1, test_number=$2, question_count=$3, answer_key=$4, subject_id=$5 WHERE id=$6`,
		t.Name, t.TestNumber, t.QuestionCount, t.AnswerKey, t.SubjectID, t.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTestNotFound
	}
	return nil
}

func (s *SQLStore) DeleteTest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM practice_tests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTestNotFound
	}
	return nil
}

func (s *SQLStore) CreateResult(ctx context.Context, r TestResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO test_results (id,user_id,practice_test_id,user_answers,correct_count,wrong_count,empty_count,net_score,solved_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.UserID, r.PracticeTestID, r.UserAnswers,
		r.CorrectCount, r.WrongCount, r.EmptyCount, r.NetScore, r.SolvedAt.Unix())
	return err
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (TestResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,practice_test_id,user_answers,correct_count,wrong_count,empty_count,net_score,solved_at
		 FROM test_results WHERE id=$1`, id)
	return scanResult(row.Scan)
}

func (s *SQLStore) LatestResult(ctx context.Context, userID, testID string) (TestResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,practice_test_id,user_answers,correct_count,wrong_count,empty_count,net_score,solved_at
		 FROM test_results WHERE user_id=$1 AND practice_test_id=$2
		 ORDER BY solved_at DESC LIMIT 1`, userID, testID)
	return scanResult(row.Scan)
}

func (s *SQLStore) ListResults(ctx context.Context, userID, testID string, page, perPage int) ([]TestResult, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	var total int
	var err error
	if testID == "" {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM test_results WHERE user_id=$1`, userID).Scan(&total)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM test_results WHERE user_id=$1 AND practice_test_id=$2`,
			userID, testID).Scan(&total)
	}
	if err != nil {
		return nil, 0, err
	}

	var rows *sql.Rows
	if testID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,user_id,practice_test_id,user_answers,correct_count,wrong_count,empty_count,net_score,solved_at
			 FROM test_results WHERE user_id=$1
			 ORDER BY solved_at DESC LIMIT $2 OFFSET $3`, userID, perPage, offset)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,user_id,practice_test_id,user_answers,correct_count,wrong_count,empty_count,net_score,solved_at
			 FROM test_results WHERE user_id=$1 AND practice_test_id=$2
			 ORDER BY solved_at DESC LIMIT $3 OFFSET $4`, userID, testID, perPage, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []TestResult{}
	for rows.Next() {
		r, err := scanResult(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func scanTest(row *sql.Row) (PracticeTest, error) {
	var t PracticeTest
	var created int64
	err := row.Scan(&t.ID, &t.Name, &t.TestNumber, &t.QuestionCount, &t.AnswerKey, &t.TestBookID, &t.SubjectID, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PracticeTest{}, ErrTestNotFound
		}
		return PracticeTest{}, err
	}
	t.CreatedAt = time.Unix(created, 0).UTC()
	return t, nil
}

func scanResult(scan func(dest ...any) error) (TestResult, error) {
	var r TestResult
	var solved int64
	err := scan(&r.ID, &r.UserID, &r.PracticeTestID, &r.UserAnswers,
		&r.CorrectCount, &r.WrongCount, &r.EmptyCount, &r.NetScore, &solved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TestResult{}, ErrResultNotFound
		}
		return TestResult{}, err
	}
	r.SolvedAt = time.Unix(solved, 0).UTC()
	return r, nil
}
