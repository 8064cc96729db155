package domain

import "time"

// Questions reported this many times stop being publicly visible.
const reportHideThreshold = 5

// ProductQuestion is the inline-answer Q&A variant: the answer lives on
// the question row, any user may answer, and deletion is a soft
// active=false flip.
type ProductQuestion struct {
	ID             string     `json:"id"`
	ProductID      string     `json:"product_id"`
	UserID         string     `json:"user_id"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer,omitempty"`
	AnsweredBy     *string    `json:"answered_by,omitempty"`
	AskedAt        time.Time  `json:"asked_at"`
	AnsweredAt     *time.Time `json:"answered_at,omitempty"`
	Answered       bool       `json:"answered"`
	PublicQuestion bool       `json:"public_question"`
	HelpfulVotes   int        `json:"helpful_votes"`
	ReportCount    int        `json:"report_count"`
	Active         bool       `json:"active"`
}

func (q *ProductQuestion) VoteHelpful() {
	q.HelpfulVotes++
}

// Report counts one report and hides the question once the threshold is
// reached.
func (q *ProductQuestion) Report() {
	q.ReportCount++
	if q.ReportCount >= reportHideThreshold {
		q.PublicQuestion = false
	}
}

func (q *ProductQuestion) MarkAnswered(answererID, text string, now time.Time) {
	q.Answer = text
	q.AnsweredBy = &answererID
	q.AnsweredAt = &now
	q.Answered = true
}
