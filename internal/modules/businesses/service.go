package businesses

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"westcoastdigital.co.za/app/internal/shared/apperr"
	"westcoastdigital.co.za/app/internal/storage"
)

type Service struct {
	repo  *Repo
	store storage.Storage
}

func NewService(repo *Repo, store storage.Storage) *Service {
	return &Service{repo: repo, store: store}
}

type CreateInput struct {
	OwnerID     string
	Name        string
	Email       string
	Phone       string
	Industry    string
	Town        string
	Address     string
	Description string
	Website     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Business, error) {
	now := time.Now()
	b := Business{
		ID:                 uuid.NewString(),
		OwnerID:            in.OwnerID,
		Name:               in.Name,
		Email:              in.Email,
		Phone:              in.Phone,
		Industry:           in.Industry,
		Town:               in.Town,
		Address:            in.Address,
		Description:        in.Description,
		SubscriptionTier:   TierFree,
		SubscriptionStatus: SubStatusNone,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.Website != "" {
		w := in.Website
		b.Website = &w
	}
	if err := s.repo.Create(ctx, &b); err != nil {
		return Business{}, apperr.Wrap(err)
	}
	return b, nil
}

// GetForView loads a listing and bumps its view counter.
func (s *Service) GetForView(ctx context.Context, id string) (Business, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Business{}, apperr.NotFoundErr("Business not found.")
		}
		return Business{}, apperr.Wrap(err)
	}
	// best-effort counter; a lost view is not an error
	_ = s.repo.IncrementViews(ctx, id)
	b.Views++
	return b, nil
}

// Authorize returns the business if the actor owns it or is an admin.
func (s *Service) Authorize(ctx context.Context, id, actorID, actorRole string) (Business, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Business{}, apperr.NotFoundErr("Business not found.")
		}
		return Business{}, apperr.Wrap(err)
	}
	if b.OwnerID != actorID && actorRole != "admin" {
		return Business{}, apperr.ForbiddenErr("Not authorized for this business.")
	}
	return b, nil
}

type UpdateInput struct {
	Name        *string
	Email       *string
	Phone       *string
	Industry    *string
	Town        *string
	Address     *string
	Description *string
	Website     *string
}

func (s *Service) Update(ctx context.Context, id, actorID, actorRole string, in UpdateInput) (Business, error) {
	if _, err := s.Authorize(ctx, id, actorID, actorRole); err != nil {
		return Business{}, err
	}

	updates := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	set("name", in.Name)
	set("email", in.Email)
	set("phone", in.Phone)
	set("industry", in.Industry)
	set("town", in.Town)
	set("address", in.Address)
	set("description", in.Description)
	set("website", in.Website)

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return Business{}, apperr.Wrap(err)
		}
	}

	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return Business{}, apperr.Wrap(err)
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id, actorID, actorRole string) error {
	if _, err := s.Authorize(ctx, id, actorID, actorRole); err != nil {
		return err
	}
	imgs, err := s.repo.ListImages(ctx, id)
	if err == nil {
		for _, img := range imgs {
			_ = s.store.Delete(ctx, img.StorageKey)
		}
	}
	if err := s.repo.DeleteImages(ctx, id); err != nil {
		return apperr.Wrap(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Wrap(err)
	}
	return nil
}

type AttachImageInput struct {
	Filename    string
	ContentType string
	Size        int64
	Caption     string
}

func (s *Service) AttachImage(ctx context.Context, id, actorID, actorRole string, r io.Reader, in AttachImageInput) (BusinessImage, error) {
	if _, err := s.Authorize(ctx, id, actorID, actorRole); err != nil {
		return BusinessImage{}, err
	}

	put, err := s.store.Put(ctx, r, storage.PutInput{
		BusinessID:  id,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Size:        in.Size,
	})
	if err != nil {
		return BusinessImage{}, apperr.Wrap(err)
	}

	img := BusinessImage{
		ID:         uuid.NewString(),
		BusinessID: id,
		StorageKey: put.Key,
		URL:        put.URL,
		CreatedAt:  time.Now(),
	}
	if in.Caption != "" {
		c := in.Caption
		img.Caption = &c
	}
	if err := s.repo.AddImage(ctx, &img); err != nil {
		_ = s.store.Delete(ctx, put.Key)
		return BusinessImage{}, apperr.Wrap(err)
	}
	return img, nil
}
