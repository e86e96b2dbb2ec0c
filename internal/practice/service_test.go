package practice

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

type fakeStore struct {
	tests   map[string]PracticeTest
	results map[string]TestResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tests:   map[string]PracticeTest{},
		results: map[string]TestResult{},
	}
}

func (f *fakeStore) CreateTest(_ context.Context, t PracticeTest) error {
	f.tests[t.ID] = t
	return nil
}

func (f *fakeStore) GetTest(_ context.Context, id string) (PracticeTest, error) {
	t, ok := f.tests[id]
	if !ok {
		return PracticeTest{}, ErrTestNotFound
	}
	return t, nil
}

func (f *fakeStore) ListTests(_ context.Context, testBookID string) ([]PracticeTest, error) {
	out := []PracticeTest{}
	for _, t := range f.tests {
		if testBookID == "" || t.TestBookID == testBookID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateTest(_ context.Context, t PracticeTest) error {
	if _, ok := f.tests[t.ID]; !ok {
		return ErrTestNotFound
	}
	f.tests[t.ID] = t
	return nil
}

func (f *fakeStore) DeleteTest(_ context.Context, id string) error {
	if _, ok := f.tests[id]; !ok {
		return ErrTestNotFound
	}
	delete(f.tests, id)
	return nil
}

func (f *fakeStore) CreateResult(_ context.Context, r TestResult) error {
	f.results[r.ID] = r
	return nil
}

func (f *fakeStore) GetResult(_ context.Context, id string) (TestResult, error) {
	r, ok := f.results[id]
	if !ok {
		return TestResult{}, ErrResultNotFound
	}
	return r, nil
}

func (f *fakeStore) LatestResult(_ context.Context, userID, testID string) (TestResult, error) {
	var latest TestResult
	found := false
	for _, r := range f.results {
		if r.UserID != userID || r.PracticeTestID != testID {
			continue
		}
		if !found || r.SolvedAt.After(latest.SolvedAt) {
			latest = r
			found = true
		}
	}
	if !found {
		return TestResult{}, ErrResultNotFound
	}
	return latest, nil
}

func (f *fakeStore) ListResults(_ context.Context, userID, testID string, page, perPage int) ([]TestResult, int, error) {
	out := []TestResult{}
	for _, r := range f.results {
		if r.UserID != userID {
			continue
		}
		if testID != "" && r.PracticeTestID != testID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SolvedAt.After(out[j].SolvedAt) })
	return out, len(out), nil
}

func seedTest(t *testing.T, store *fakeStore, key string) PracticeTest {
	t.Helper()
	pt, err := NewTest("Deneme 1", 1, len(key), key, "book-1", "subject-1")
	if err != nil {
		t.Fatalf("NewTest: %v", err)
	}
	store.tests[pt.ID] = pt
	return pt
}

func TestNewTestRejectsKeyLengthMismatch(t *testing.T) {
	if _, err := NewTest("Deneme", 1, 10, "ABCDE", "book-1", "subject-1"); !errors.Is(err, ErrBadAnswerKey) {
		t.Fatalf("err = %v, want ErrBadAnswerKey", err)
	}
}

func TestNewTestUppercasesKey(t *testing.T) {
	pt, err := NewTest("Deneme", 1, 5, "abcde", "book-1", "subject-1")
	if err != nil {
		t.Fatalf("NewTest: %v", err)
	}
	if pt.AnswerKey != "ABCDE" {
		t.Fatalf("key = %q", pt.AnswerKey)
	}
	if pt.SubjectID != "subject-1" {
		t.Fatalf("subject = %q", pt.SubjectID)
	}
}

func TestSolveScoresAndPersists(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	pt := seedTest(t, store, "ABCDE")

	out, err := svc.Solve(context.Background(), "user-1", pt.ID, "abxd_")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	r := out.Result
	if r.CorrectCount != 3 || r.WrongCount != 1 || r.EmptyCount != 1 {
		t.Fatalf("counts = %d/%d/%d, want 3/1/1", r.CorrectCount, r.WrongCount, r.EmptyCount)
	}
	if want := 3.0 - 1.0/4.0; r.NetScore != want {
		t.Fatalf("net = %v, want %v", r.NetScore, want)
	}
	if r.UserAnswers != "ABXD_" {
		t.Fatalf("answers stored as %q, want uppercase", r.UserAnswers)
	}
	if _, err := store.GetResult(context.Background(), r.ID); err != nil {
		t.Fatalf("result not persisted: %v", err)
	}
}

func TestSolveLengthMismatch(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	pt := seedTest(t, store, "ABCDE")

	if _, err := svc.Solve(context.Background(), "user-1", pt.ID, "AB"); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestSolveUnknownTest(t *testing.T) {
	svc := NewService(newFakeStore())
	if _, err := svc.Solve(context.Background(), "user-1", "missing", "ABCDE"); !errors.Is(err, ErrTestNotFound) {
		t.Fatalf("err = %v, want ErrTestNotFound", err)
	}
}

func TestSolveBlocksRetakeWithinWindow(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	pt := seedTest(t, store, "ABCDE")

	if _, err := svc.Solve(context.Background(), "user-1", pt.ID, "ABCDE"); err != nil {
		t.Fatalf("first solve: %v", err)
	}
	_, err := svc.Solve(context.Background(), "user-1", pt.ID, "ABCDE")
	var retake *RetakeError
	if !errors.As(err, &retake) {
		t.Fatalf("err = %v, want *RetakeError", err)
	}
	if retake.HoursRemaining <= 0 || retake.HoursRemaining > 24 {
		t.Fatalf("hours remaining = %v", retake.HoursRemaining)
	}
}

func TestSolveAllowsRetakeAfterWindow(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	pt := seedTest(t, store, "ABCDE")

	base := time.Now()
	svc.now = func() time.Time { return base }
	if _, err := svc.Solve(context.Background(), "user-1", pt.ID, "ABCDE"); err != nil {
		t.Fatalf("first solve: %v", err)
	}

	svc.now = func() time.Time { return base.Add(retakeWindow + time.Minute) }
	if _, err := svc.Solve(context.Background(), "user-1", pt.ID, "ABCDE"); err != nil {
		t.Fatalf("second solve after window: %v", err)
	}
}

func TestSolveWindowIsPerUser(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	pt := seedTest(t, store, "ABCDE")

	if _, err := svc.Solve(context.Background(), "user-1", pt.ID, "ABCDE"); err != nil {
		t.Fatalf("user-1 solve: %v", err)
	}
	if _, err := svc.Solve(context.Background(), "user-2", pt.ID, "ABCDE"); err != nil {
		t.Fatalf("user-2 solve blocked by user-1's window: %v", err)
	}
}

func TestResultOwnerCheck(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	pt := seedTest(t, store, "ABCDE")
	out, err := svc.Solve(context.Background(), "user-1", pt.ID, "ABCDE")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	if _, err := svc.Result(context.Background(), out.Result.ID, "user-1", false); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.Result(context.Background(), out.Result.ID, "user-2", false); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("foreign read err = %v, want ErrResultNotFound", err)
	}
	if _, err := svc.Result(context.Background(), out.Result.ID, "user-2", true); err != nil {
		t.Fatalf("admin read: %v", err)
	}
}
