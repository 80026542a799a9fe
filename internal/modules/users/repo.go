package users

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, id string) (User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return u, err
}

// ContactFor returns the name and email address for notification delivery.
func (r *Repo) ContactFor(ctx context.Context, id string) (name, email string, err error) {
	var u User
	if err := r.db.WithContext(ctx).
		Select("name", "email").
		First(&u, "id = ?", id).Error; err != nil {
		return "", "", err
	}
	return u.Name, u.Email, nil
}
