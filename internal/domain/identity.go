package domain

// Identity is the signed-in user as supplied by the auth collaborator.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Token  string
}
