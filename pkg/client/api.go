package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

type authPayload struct {
	User User `json:"user"`
	TokenPair
}

// Login exchanges credentials for a token pair and stores it.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var out authPayload
	in := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/api/v1/auth/login", in, &out); err != nil {
		return User{}, err
	}
	if err := c.store.Save(out.TokenPair); err != nil {
		return User{}, fmt.Errorf("client: save tokens: %w", err)
	}
	c.session.set(Authenticated)
	return out.User, nil
}

// Register creates an account. The platform logs the account in as part of
// registration, so on success the client holds a live session.
func (c *Client) Register(ctx context.Context, username, email, password string) (User, error) {
	var out authPayload
	in := map[string]string{"username": username, "email": email, "password": password}
	if err := c.post(ctx, "/api/v1/auth/register", in, &out); err != nil {
		return User{}, err
	}
	if err := c.store.Save(out.TokenPair); err != nil {
		return User{}, fmt.Errorf("client: save tokens: %w", err)
	}
	c.session.set(Authenticated)
	return out.User, nil
}

// Logout ends the session. The local pair is always cleared; the server
// call is best effort and skipped entirely when no token is held.
func (c *Client) Logout(ctx context.Context) error {
	pair, err := c.store.Load()
	if err == nil && pair.RefreshToken != "" {
		in := map[string]string{"refresh_token": pair.RefreshToken}
		_ = c.do(ctx, http.MethodPost, "/api/v1/auth/logout", in, nil)
	}
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("client: clear tokens: %w", err)
	}
	c.session.set(LoggedOut)
	return nil
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	err := c.get(ctx, "/api/v1/auth/me", &out)
	return out, err
}

func (c *Client) Lessons(ctx context.Context) ([]Lesson, error) {
	var out []Lesson
	err := c.get(ctx, "/api/v1/lessons", &out)
	return out, err
}

func (c *Client) ExamTypes(ctx context.Context) ([]ExamType, error) {
	var out []ExamType
	err := c.get(ctx, "/api/v1/exam-types", &out)
	return out, err
}

func (c *Client) Subjects(ctx context.Context) ([]Subject, error) {
	var out []Subject
	err := c.get(ctx, "/api/v1/subjects", &out)
	return out, err
}

// TestBooks lists books, optionally restricted to one subject.
func (c *Client) TestBooks(ctx context.Context, subjectID string) ([]TestBook, error) {
	path := "/api/v1/test-books"
	if subjectID != "" {
		path += "?subject_id=" + url.QueryEscape(subjectID)
	}
	var out []TestBook
	err := c.get(ctx, path, &out)
	return out, err
}

func (c *Client) BookSubjects(ctx context.Context, bookID string) ([]Subject, error) {
	var out []Subject
	err := c.get(ctx, "/api/v1/test-books/"+url.PathEscape(bookID)+"/subjects", &out)
	return out, err
}

// PracticeTests lists tests, optionally restricted to one test book.
func (c *Client) PracticeTests(ctx context.Context, testBookID string) ([]PracticeTest, error) {
	path := "/api/v1/practice-tests"
	if testBookID != "" {
		path += "?test_book_id=" + url.QueryEscape(testBookID)
	}
	var out []PracticeTest
	err := c.get(ctx, path, &out)
	return out, err
}

// Solve submits an answer string for a test and returns the scored result.
func (c *Client) Solve(ctx context.Context, testID, answers string) (SolveOutcome, error) {
	var out SolveOutcome
	in := map[string]string{"answers": answers}
	err := c.post(ctx, "/api/v1/tests/"+url.PathEscape(testID)+"/solve", in, &out)
	return out, err
}

// MyResults pages through the caller's results, newest first. Page is
// 1-based; perPage 0 takes the server default.
func (c *Client) MyResults(ctx context.Context, page, perPage int) (ResultPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	path := "/api/v1/my-results"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	var out ResultPage
	err := c.get(ctx, path, &out)
	return out, err
}

// MyResult fetches a single result by id.
func (c *Client) MyResult(ctx context.Context, id string) (TestResult, error) {
	var out TestResult
	err := c.get(ctx, "/api/v1/my-results/"+url.PathEscape(id), &out)
	return out, err
}
