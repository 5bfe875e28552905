package api

import "github.com/google/uuid"

// SubmitReviewRequest is the request body for POST /study/reviews.
// Quality and Answer are optional at the transport level; the study service
// enforces which one the mode requires.
type SubmitReviewRequest struct {
	CardID  uuid.UUID `json:"card_id" validate:"required"`
	Mode    string    `json:"mode" validate:"required,oneof=spaced fast quiz exam"`
	Quality *int      `json:"quality,omitempty"`
	Answer  *string   `json:"answer,omitempty"`
}
