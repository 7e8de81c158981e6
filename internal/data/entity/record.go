package entity

import "time"

// Record is an opaque note owned by one account.
type Record struct {
	ID          int64     `json:"id,string"`
	UserID      int64     `json:"userId,string"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type NewRecord struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	CreatedAt   time.Time
}

type RecordUpdate struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	UpdatedAt   time.Time
}

// RecordListFilter pages one owner's records newest first.
type RecordListFilter struct {
	UserID int64
	Limit  int32
	Offset int64
}
