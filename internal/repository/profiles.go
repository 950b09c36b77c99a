package repository

import (
	"context"
	"time"

	"perfumeria_back_end/internal/models"
)

func (s *Scylla) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p := models.Profile{ID: userID}
	var isAdmin *bool
	err := s.session.Query(`SELECT email, display_name, avatar_url, avatar_path, is_admin, updated_at
		FROM profiles WHERE user_id = ?`, userID).WithContext(ctx).
		Scan(&p.Email, &p.DisplayName, &p.AvatarURL, &p.AvatarPath, &isAdmin, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	p.IsAdmin = isAdmin != nil && *isAdmin
	return &p, nil
}

// UpsertProfile écrit les champs modifiables par l'utilisateur. is_admin
// n'est jamais écrit ici.
func (s *Scylla) UpsertProfile(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	return s.session.Query(`UPDATE profiles SET email = ?, display_name = ?, avatar_url = ?, avatar_path = ?, updated_at = ?
		WHERE user_id = ?`, p.Email, p.DisplayName, p.AvatarURL, p.AvatarPath, p.UpdatedAt, p.ID).
		WithContext(ctx).Exec()
}

func (s *Scylla) DeleteProfile(ctx context.Context, userID string) error {
	return s.session.Query(`DELETE FROM profiles WHERE user_id = ?`, userID).WithContext(ctx).Exec()
}

// IsAdmin lit le drapeau is_admin; un profil absent n'est pas admin.
func (s *Scylla) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var isAdmin *bool
	err := s.session.Query(`SELECT is_admin FROM profiles WHERE user_id = ?`, userID).WithContext(ctx).Scan(&isAdmin)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return isAdmin != nil && *isAdmin, nil
}
