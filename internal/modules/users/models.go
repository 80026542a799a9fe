package users

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account that owns business listings. Registration and login
// run on a separate service; this app only reads users for session
// resolution, ownership checks and notifications.
type User struct {
	ID           string `gorm:"type:char(36);primaryKey"`
	Name         string `gorm:"type:varchar(120);not null"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash []byte `gorm:"type:varbinary(255);not null"`
	Role         string `gorm:"type:varchar(16);not null;default:'user'"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (User) TableName() string { return "users" }
