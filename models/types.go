package models

import "time"

// Option limits
const (
	MinOptions        = 2
	MaxOptions        = 8
	MaxQuestionLength = 500
	MaxOptionLength   = 200
)

// Request types

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// OptionID is a pointer so a missing field can be told apart from option 0
type VoteRequest struct {
	OptionID *int `json:"optionId"`
}

// Domain types

type Option struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Options    []Option  `json:"options"`
	TotalVotes int       `json:"totalVotes"`
	Closed     bool      `json:"closed"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HasOption reports whether optionID belongs to the poll
func (p Poll) HasOption(optionID int) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// PollView is a poll annotated for the requesting session
type PollView struct {
	Poll
	HasVoted      bool `json:"hasVoted"`
	VotedOptionID *int `json:"votedOptionId"`
}

type PollSummary struct {
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	Closed      bool      `json:"closed"`
	TotalVotes  int       `json:"totalVotes"`
	OptionCount int       `json:"optionCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type VoteRecord struct {
	PollID    string    `json:"pollId"`
	SessionID string    `json:"-"` // Never expose in JSON
	OptionID  int       `json:"optionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Result types

type OptionTally struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Results struct {
	PollID     string        `json:"id"`
	Question   string        `json:"question"`
	Closed     bool          `json:"closed"`
	Options    []OptionTally `json:"options"`
	TotalVotes int           `json:"totalVotes"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Health

type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// Error response

type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code,omitempty"`
	VotedOptionID *int   `json:"votedOptionId,omitempty"`
}
