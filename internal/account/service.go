// Package account gère le profil de l'utilisateur connecté.
package account

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"perfumeria_back_end/internal/cart"
	"perfumeria_back_end/internal/media"
	"perfumeria_back_end/internal/models"
	"perfumeria_back_end/internal/repository"
	"perfumeria_back_end/internal/utils"
)

const MaxDisplayNameLen = 60

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile) error
	DeleteProfile(ctx context.Context, userID string) error
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "profil invalide"
}

type ProfileInput struct {
	DisplayName  string
	RemoveAvatar bool
}

type Service struct {
	store   ProfileStore
	avatars *media.Manager
	carts   *cart.Sessions
	audit   *utils.Auditor
}

func NewService(store ProfileStore, avatars *media.Manager, carts *cart.Sessions, audit *utils.Auditor) *Service {
	return &Service{store: store, avatars: avatars, carts: carts, audit: audit}
}

// DefaultDisplayName est la partie locale de l'e-mail.
func DefaultDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// GetProfile renvoie le profil, ou un profil par défaut s'il n'existe pas
// encore.
func (s *Service) GetProfile(ctx context.Context, userID, email string) (*models.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.Profile{ID: userID, Email: email, DisplayName: DefaultDisplayName(email)}, nil
	}
	if err != nil {
		return nil, err
	}
	if p.Email == "" {
		p.Email = email
	}
	if p.DisplayName == "" {
		p.DisplayName = DefaultDisplayName(p.Email)
	}
	return p, nil
}

// SaveProfile met à jour le nom affiché et l'avatar. Les avatars sont
// rangés sous le préfixe de l'utilisateur.
func (s *Service) SaveProfile(ctx context.Context, userID, email string, in ProfileInput, file *media.Upload) (*models.Profile, error) {
	name := strings.TrimSpace(in.DisplayName)
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return nil, &ValidationError{Fields: map[string]string{"display_name": "El nombre no puede superar los 60 caracteres."}}
	}

	current, err := s.GetProfile(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	next := *current
	if name != "" {
		next.DisplayName = name
	}

	link := func(ctx context.Context, ref media.ImageRef) error {
		next.AvatarURL, next.AvatarPath = ref.Columns()
		return s.store.UpsertProfile(ctx, &next)
	}
	_, err = s.avatars.Replace(ctx, media.ReplaceRequest{
		File:     file,
		Remove:   in.RemoveAvatar,
		Current:  media.RefFrom(current.AvatarURL, current.AvatarPath),
		Prefix:   userID,
		NameHint: "avatar",
	}, link)
	if err != nil {
		s.audit.LogFailedAction(ctx, utils.ActionProfileUpdate, utils.ResourceProfile, userID, err.Error())
		return nil, err
	}

	s.audit.LogAction(ctx, utils.ActionProfileUpdate, utils.ResourceProfile, userID, current.DisplayName, next.DisplayName)
	return &next, nil
}

// DeleteAccount supprime le profil, l'avatar et le panier persisté.
// L'identité elle-même est gérée par le fournisseur d'authentification.
func (s *Service) DeleteAccount(ctx context.Context, id cart.Identity) error {
	if !id.Authenticated() {
		return errors.New("identité non authentifiée")
	}
	p, err := s.store.GetProfile(ctx, id.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err := s.store.DeleteProfile(ctx, id.ID); err != nil {
		s.audit.LogFailedAction(ctx, utils.ActionAccountDelete, utils.ResourceProfile, id.ID, err.Error())
		return err
	}
	if p != nil && p.AvatarPath != nil {
		s.avatars.Discard(ctx, *p.AvatarPath)
	}
	if s.carts != nil {
		if err := s.carts.Forget(ctx, id); err != nil {
			log.Printf("⚠️ 🛒 Panier de %s non supprimé: %v", id, err)
		}
	}
	s.audit.LogAction(ctx, utils.ActionAccountDelete, utils.ResourceProfile, id.ID, nil, nil)
	log.Printf("🧹 Compte supprimé: %s", id.ID)
	return nil
}

func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.store.IsAdmin(ctx, userID)
}
