package model

import "time"

// Topic groups knowledge entries of one user.
type Topic struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"-"`
	Name      string    `json:"name"`
	Desc      *string   `json:"desc"`
	CreatedAt time.Time `json:"created_at"`
}

// KnowledgeEntry is a note in the knowledge base. Title and Content are
// never blank after trimming.
type KnowledgeEntry struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"-"`
	TopicID   *uint64    `json:"topic_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Tags      StringList `json:"tags"`
	Links     StringList `json:"links"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// StudyLog is a journal line referencing an entry of the same owner.
type StudyLog struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"-"`
	EntryID   uint64    `json:"entry_id"`
	Note      *string   `json:"note"`
	LoggedAt  Date      `json:"logged_at"`
	CreatedAt time.Time `json:"created_at"`
}
