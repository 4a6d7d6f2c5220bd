package models

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Actor identifies who performs an operation. It is passed explicitly into
// every core call; nothing reads ambient session state.
type Actor struct {
	OrgID     uint `json:"org_id"`
	Role      Role `json:"role"`
	SubjectID uint `json:"sub"`
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
func (a Actor) IsUser() bool  { return a.Role == RoleUser }
