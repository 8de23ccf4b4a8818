package domain

// MemberStatus represents whether a membership is current.
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// Member is a registered portal member as shown in scoped lists and exports.
type Member struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Sambhag        string
	District       string
	Block          string
	MembershipType string
	Status         MemberStatus
	Remark         string
}

// Active reports whether the member counts towards active totals.
func (m Member) Active() bool {
	return m.Status == MemberStatusActive
}
