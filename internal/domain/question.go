package domain

import "time"

// Question is a general product question answered, at most once, by an
// admin. Both question and answer are hard-deleted.
type Question struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Answer    *Answer   `json:"answer,omitempty"`
}

type Answer struct {
	ID         string    `json:"id"`
	QuestionID string    `json:"question_id"`
	AdminID    string    `json:"admin_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
