package media

import "time"

type Media struct {
	ID               string    `json:"id"`
	URL              string    `json:"url"`
	OriginalFilename string    `json:"originalFilename"`
	Size             int64     `json:"size"`
	ContentType      string    `json:"contentType"`
	UserID           *string   `json:"userId,omitempty"`
	ProductID        *string   `json:"productId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ProgressFunc receives upload progress as a percentage in [0, 100].
type ProgressFunc func(percent int)

type Status string

const (
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Progress is the ephemeral per-file record shown while a batch uploads.
type Progress struct {
	Filename string
	Percent  int
	Status   Status
	URL      string
	Error    string
}

// Outcome is the result of one file in a batch that tolerates partial failure.
type Outcome struct {
	Filename string
	Media    *Media
	Err      error
}
