package domain

// User is the signed-in identity used to address the remote record.
// FullName and Email are display data and may be empty.
type User struct {
	ID       string
	FullName string
	Email    string
	Password string
}

// IsSignedIn reports whether the identity can address the remote record.
func (u User) IsSignedIn() bool {
	return u.ID != "" && u.Password != ""
}
