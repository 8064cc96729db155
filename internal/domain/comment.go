package domain

import "time"

type Comment struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Text        string    `json:"text"`
	Rating      int       `json:"rating"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email,omitempty"`
	Starred     bool      `json:"starred"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Comment) ToggleStarred() {
	c.Starred = !c.Starred
}
