package domain

import "time"

type Content struct {
	ID             int64     `json:"id"`
	AuthorID       int64     `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Categories     []string  `json:"categories"`
	CreatedAt      time.Time `json:"created_at"`
}

// Text returns the title and body joined, the form fed to the content oracle.
func (c Content) Text() string {
	if c.Body == "" {
		return c.Title
	}
	return c.Title + " " + c.Body
}
