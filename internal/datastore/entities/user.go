package entities

// User is a row of the legacy credentials table. PasswordHash holds either a
// SHA-256 hex digest or, for accounts that predate hashing, the plaintext.
type User struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"id"`
	Username     string `gorm:"column:username;size:100;uniqueIndex;not null" json:"username"`
	Email        string `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
}

// TableName returns the table name for GORM.
func (User) TableName() string {
	return TableUsers
}
