package models

import "time"

// Hashtag is a tag name shared by any number of articles.
// Names are case-sensitive as extracted.
type Hashtag struct {
	ID          int64  `json:"id" db:"id"`
	HashtagName string `json:"hashtagName" db:"hashtag_name"`
	AuditFields
}

// NewHashtag builds a transient hashtag (ID 0) stamped by actor.
func NewHashtag(name, actor string) *Hashtag {
	h := &Hashtag{HashtagName: name}
	h.Stamp(actor, time.Now())
	return h
}

// IsPersisted reports whether the hashtag has been assigned an ID.
func (h *Hashtag) IsPersisted() bool {
	return h.ID != 0
}

// SameAs compares by ID once both sides are persisted, by reference otherwise.
func (h *Hashtag) SameAs(other *Hashtag) bool {
	if h == other {
		return true
	}
	if h == nil || other == nil {
		return false
	}
	return h.IsPersisted() && other.IsPersisted() && h.ID == other.ID
}
