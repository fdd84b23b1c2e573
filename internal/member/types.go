package member

import "time"

// Member is a chat platform user known to the service.
type Member struct {
	ID          string `json:"id"`
	TeamID      string `json:"team_id"`
	DisplayName string `json:"display_name"`

	// PolicyAgreed is nil until the member answers the policy prompt.
	PolicyAgreed     *bool      `json:"policy_agreed,omitempty"`
	PolicyAnsweredAt *time.Time `json:"policy_answered_at,omitempty"`

	KudosCount int `json:"kudos_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAgreed reports whether the member accepted the policy.
func (m *Member) HasAgreed() bool {
	return m.PolicyAgreed != nil && *m.PolicyAgreed
}

// Kudos is a single recorded kudos.
type Kudos struct {
	ID         string    `json:"id"`
	GiverID    string    `json:"giver_id"`
	ReceiverID string    `json:"receiver_id"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
