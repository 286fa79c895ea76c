package domain

// Identity is the authenticated caller of an operation.
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

func (i Identity) IsZero() bool { return i.UserID == 0 }
