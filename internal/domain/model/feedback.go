//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// ErrFeedbackMessageRequired is returned for a blank feedback message.
var ErrFeedbackMessageRequired = errors.New("Please enter your feedback.") //nolint:staticcheck // user-facing text

const maxFeedbackLen = 5000

// Feedback is a message left through the public feedback form.
type Feedback struct {
	ID        string    `json:"id"              db:"id"`
	Name      *string   `json:"name,omitempty"  db:"name"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Message   string    `json:"message"         db:"message"`
	CreatedAt time.Time `json:"created_at"      db:"created_at"`
}

// CreateFeedbackRequest submits feedback.
type CreateFeedbackRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Message string  `json:"message"`
}

// Validate validates CreateFeedbackRequest.
func (r *CreateFeedbackRequest) Validate() error {
	r.Message = strings.TrimSpace(r.Message)
	if r.Message == "" {
		return ErrFeedbackMessageRequired
	}
	if len(r.Message) > maxFeedbackLen {
		return errors.New("feedback cannot exceed 5000 characters")
	}
	r.Name = trimOptional(r.Name)
	r.Email = trimOptional(r.Email)
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
