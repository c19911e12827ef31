// Package scoring computes attempt scores from an exam's marking scheme.
//
// The engine is a pure function shared by two call sites: the opportunistic
// per-answer computation at write time and the authoritative pass at submit
// time. Sharing one function is what guarantees the two can never disagree.
package scoring

import "github.com/lshigami/Kestrel/internal/model"

// Result is the aggregate outcome of scoring one attempt.
type Result struct {
	Score            float64
	CorrectAnswers   int
	IncorrectAnswers int
	Unattempted      int
	Accuracy         float64
}

// CorrectnessPolicy decides whether an evaluator-marked descriptive answer
// counts as correct for the accuracy statistics. It is a policy, not a law of
// the domain, so callers inject it.
type CorrectnessPolicy func(awarded, questionMarks float64) bool

// MidpointPolicy counts a descriptive answer as correct when it earned at
// least half the question's marks.
func MidpointPolicy(awarded, questionMarks float64) bool {
	return awarded >= questionMarks/2
}

// ObjectiveMarks returns the signed marks a single objective answer earns
// under the exam's marking scheme, and whether it is correct. A correct
// answer earns the question's marks (1 when unset); an incorrect one earns
// the exam's incorrect mark when negative marking is on, else 0.
func ObjectiveMarks(exam *model.Exam, q *model.Question, selected string) (float64, bool) {
	if selected == q.CorrectOption {
		m := q.Marks
		if m == 0 {
			m = 1
		}
		return m, true
	}
	if exam.NegativeMarking {
		return exam.IncorrectMark, false
	}
	return 0, false
}

// Score aggregates an attempt's answers against the exam's questions.
//
// Descriptive answers contribute only once an evaluator has assigned marks;
// until then they count toward neither correct nor incorrect. Unattempted is
// the gap between the exam's question count and the answers submitted. The
// final score is clamped at zero: negative marking never drives the total
// below it.
func Score(exam *model.Exam, questions []model.Question, answers []model.Answer, policy CorrectnessPolicy) Result {
	if policy == nil {
		policy = MidpointPolicy
	}

	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var res Result
	total := 0.0
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		switch q.Type {
		case model.QuestionMCQ:
			if a.SelectedOption == nil || *a.SelectedOption == "" {
				continue
			}
			marks, correct := ObjectiveMarks(exam, &q, *a.SelectedOption)
			total += marks
			if correct {
				res.CorrectAnswers++
			} else {
				res.IncorrectAnswers++
			}
		case model.QuestionDescriptive:
			if a.Marks == nil {
				continue
			}
			total += *a.Marks
			if policy(*a.Marks, q.Marks) {
				res.CorrectAnswers++
			} else {
				res.IncorrectAnswers++
			}
		}
	}

	res.Unattempted = len(questions) - len(answers)
	if res.Unattempted < 0 {
		res.Unattempted = 0
	}

	if attempted := res.CorrectAnswers + res.IncorrectAnswers; attempted > 0 {
		res.Accuracy = float64(res.CorrectAnswers) / float64(attempted) * 100
	}

	if total < 0 {
		total = 0
	}
	res.Score = total
	return res
}
