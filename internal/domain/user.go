package domain

// AnonymousUserID keys data that belongs to no signed-in user.
const AnonymousUserID = "anonymous"

// User is a registered customer. Email is the lookup key.
type User struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// UserKey returns the storage namespace for u, or the anonymous sentinel.
func UserKey(u *User) string {
	if u == nil || u.Email == "" {
		return AnonymousUserID
	}
	return u.Email
}
