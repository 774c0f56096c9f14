package model

// User is a directory entry for a potential notification recipient.
// Language may be empty, meaning the user has no stored preference.
type User struct {
	ID        int64  `db:"id"`
	Email     string `db:"email"`
	Language  string `db:"language"`
	Blocked   bool   `db:"blocked"`
	SendEmail bool   `db:"send_email"`
}

// Recipient is a resolved notification target.
type Recipient struct {
	Email    string
	Language string
}
