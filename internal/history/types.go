package history

import "time"

// Exchange is one question/answer round trip with the provider.
type Exchange struct {
	Seq         int64     `json:"seq"`
	ID          string    `json:"id"`
	ChatPath    string    `json:"chat_path,omitempty"`
	Model       string    `json:"model"`
	ResponseID  string    `json:"response_id,omitempty"`
	TotalTokens int64     `json:"total_tokens"`
	Question    string    `json:"question,omitempty"`
	Answer      string    `json:"answer"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filter narrows List results.
type Filter struct {
	ChatPath string // exact match; empty matches every exchange
	Limit    int    // most recent N; zero means no limit
}
