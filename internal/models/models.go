package models

import (
	"time"

	"github.com/google/uuid"
)

// Exchange is one user input paired with the model's reply. It is created per
// submission and never linked to another Exchange.
type Exchange struct {
	ID        string        `json:"id"`
	Input     string        `json:"input"`
	Output    string        `json:"output,omitempty"`
	Model     string        `json:"model"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latency_ns"`
	CreatedAt time.Time     `json:"created_at"`
}

func NewExchange(input, model string) *Exchange {
	return &Exchange{
		ID:        uuid.NewString(),
		Input:     input,
		Model:     model,
		CreatedAt: time.Now(),
	}
}

// Failed reports whether the remote call for this exchange returned an error.
func (e *Exchange) Failed() bool { return e.Error != "" }
