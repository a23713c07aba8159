//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// Comment is a lawyer's note on a case, visible to everyone who may view it.
type Comment struct {
	ID          string    `json:"id"                 db:"id"`
	ReportID    string    `json:"report_id"          db:"report_id"`
	LawyerEmail string    `json:"lawyer_email"       db:"lawyer_email"`
	Body        string    `json:"body"               db:"body"`
	FileURL     *string   `json:"file_url,omitempty" db:"file_url"`
	CreatedAt   time.Time `json:"created_at"         db:"created_at"`
}

// CreateCommentRequest adds a comment. ReportID and LawyerEmail are set by the caller.
type CreateCommentRequest struct {
	ReportID    string  `json:"-"`
	LawyerEmail string  `json:"-"`
	Body        string  `json:"body"`
	FileURL     *string `json:"file_url,omitempty"`
}

// Validate requires a body or an attachment.
func (r *CreateCommentRequest) Validate() error {
	r.Body = strings.TrimSpace(r.Body)
	if r.FileURL != nil && strings.TrimSpace(*r.FileURL) == "" {
		r.FileURL = nil
	}
	if r.Body == "" && r.FileURL == nil {
		return errors.New("comment body or file is required")
	}
	return nil
}
