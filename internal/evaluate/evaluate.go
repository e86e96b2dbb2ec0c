// Package evaluate scores a submitted answer string against an answer key.
//
// Answer strings are position-aligned sequences of option letters (A-E).
// '_' or a space marks a question the user left blank.
package evaluate

import "strings"

// Status classifies a single position of a submission.
type Status string

const (
	StatusCorrect Status = "correct"
	StatusWrong   Status = "wrong"
	StatusEmpty   Status = "empty"
)

// Verdict is the per-question outcome.
type Verdict struct {
	Position      int    `json:"position"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Status        Status `json:"status"`
}

// Result is the scored breakdown of a submission. Net score is owned by the
// caller (the platform persists correct - wrong/4); it is not derived here.
type Result struct {
	CorrectCount int       `json:"correct_count"`
	WrongCount   int       `json:"wrong_count"`
	EmptyCount   int       `json:"empty_count"`
	Verdicts     []Verdict `json:"verdicts"`
}

// Evaluate compares userAnswers with correctAnswers position by position.
// It is total: it never fails, whatever the inputs. Comparison is
// case-insensitive. Iteration runs over userAnswers; key positions past the
// end of correctAnswers compare against "" and therefore count as wrong
// unless the user left them blank.
func Evaluate(correctAnswers, userAnswers string) Result {
	key := strings.ToUpper(correctAnswers)
	sub := strings.ToUpper(userAnswers)

	res := Result{Verdicts: make([]Verdict, 0, len(sub))}
	for i := 0; i < len(sub); i++ {
		user := sub[i]
		correct := ""
		if i < len(key) {
			correct = string(key[i])
		}

		v := Verdict{Position: i, UserAnswer: string(user), CorrectAnswer: correct}
		switch {
		case user == '_' || user == ' ' || user == '\t':
			v.Status = StatusEmpty
			res.EmptyCount++
		case correct != "" && string(user) == correct:
			v.Status = StatusCorrect
			res.CorrectCount++
		default:
			v.Status = StatusWrong
			res.WrongCount++
		}
		res.Verdicts = append(res.Verdicts, v)
	}
	return res
}
