// Package inventory gère le catalogue en back-office : fiches produits,
// images, cache et index de recherche.
package inventory

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"perfumeria_back_end/internal/cache"
	"perfumeria_back_end/internal/media"
	"perfumeria_back_end/internal/models"
	"perfumeria_back_end/internal/money"
	"perfumeria_back_end/internal/search"
	"perfumeria_back_end/internal/utils"
)

const (
	ImagePrefix  = "products"
	DefaultLimit = 48
	MaxLimit     = 200
)

type ProductStore interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// ValidationError liste les champs refusés, avec un message par champ.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "produit invalide: " + strings.Join(keys, ", ")
}

// ProductInput est le formulaire d'édition. ID nil signifie création.
type ProductInput struct {
	ID          *int64
	Name        string
	Description string
	Price       any
	Category    string
	RemoveImage bool
}

type Service struct {
	store  ProductStore
	images *media.Manager
	cache  *cache.Cache
	index  *search.Index
	audit  *utils.Auditor
}

// NewService construit le service. cache, index et audit peuvent être nil.
func NewService(store ProductStore, images *media.Manager, c *cache.Cache, index *search.Index, audit *utils.Auditor) *Service {
	return &Service{store: store, images: images, cache: c, index: index, audit: audit}
}

func (in ProductInput) validate() (models.Product, error) {
	p := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		PriceCents:  money.ToCents(in.Price),
	}
	fields := map[string]string{}
	if p.Name == "" {
		fields["name"] = "El nombre es obligatorio."
	}
	if p.PriceCents <= 0 {
		fields["price"] = "El precio debe ser mayor a cero."
	}
	if len(fields) > 0 {
		return p, &ValidationError{Fields: fields}
	}
	return p, nil
}

// SaveProduct crée ou modifie un produit et son image. L'enregistrement
// n'est écrit qu'une fois le nouveau fichier envoyé; l'ancien fichier n'est
// supprimé qu'après l'écriture.
func (s *Service) SaveProduct(ctx context.Context, in ProductInput, file *media.Upload) (*models.Product, error) {
	fields, err := in.validate()
	if err != nil {
		return nil, err
	}

	creating := in.ID == nil
	var current models.Product
	if !creating {
		existing, err := s.store.GetProduct(ctx, *in.ID)
		if err != nil {
			return nil, err
		}
		current = *existing
	}

	next := current
	next.Name = fields.Name
	next.Description = fields.Description
	next.Category = fields.Category
	next.PriceCents = fields.PriceCents

	link := func(ctx context.Context, ref media.ImageRef) error {
		next.ImageURL, next.ImagePath = ref.Columns()
		if creating {
			return s.store.InsertProduct(ctx, &next)
		}
		return s.store.UpdateProduct(ctx, &next)
	}

	action := utils.ActionProductUpdate
	if creating {
		action = utils.ActionProductCreate
	}

	_, err = s.images.Replace(ctx, media.ReplaceRequest{
		File:     file,
		Remove:   in.RemoveImage,
		Current:  media.RefFrom(current.ImageURL, current.ImagePath),
		Prefix:   ImagePrefix,
		NameHint: next.Name,
	}, link)
	if err != nil {
		s.audit.LogFailedAction(ctx, action, utils.ResourceProduct, idString(in.ID), err.Error())
		return nil, err
	}

	s.afterWrite(ctx, next)
	if creating {
		s.audit.LogAction(ctx, action, utils.ResourceProduct, idString(&next.ID), nil, next)
		log.Printf("✅ Produit créé: %d %s", next.ID, next.Name)
	} else {
		s.audit.LogAction(ctx, action, utils.ResourceProduct, idString(&next.ID), current, next)
		log.Printf("✅ Produit modifié: %d %s", next.ID, next.Name)
	}
	return &next, nil
}

// DeleteProduct supprime la fiche puis son image. Une image qui ne peut
// pas être supprimée reste orpheline sans faire échouer l'opération.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		s.audit.LogFailedAction(ctx, utils.ActionProductDelete, utils.ResourceProduct, idString(&id), err.Error())
		return err
	}
	if p.ImagePath != nil {
		s.images.Discard(ctx, *p.ImagePath)
	}

	s.cache.InvalidateProduct(ctx, id)
	if err := s.index.DeleteProduct(ctx, id); err != nil && !errors.Is(err, search.ErrDisabled) {
		log.Printf("⚠️ Désindexation produit %d: %v", id, err)
	}
	s.audit.LogAction(ctx, utils.ActionProductDelete, utils.ResourceProduct, idString(&id), p, nil)
	log.Printf("🧹 Produit supprimé: %d", id)
	return nil
}

func (s *Service) afterWrite(ctx context.Context, p models.Product) {
	s.cache.InvalidateProduct(ctx, p.ID)
	if err := s.index.IndexProduct(ctx, p); err != nil && !errors.Is(err, search.ErrDisabled) {
		log.Printf("⚠️ Indexation produit %d: %v", p.ID, err)
	}
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.cache.Product(ctx, id, func(ctx context.Context) (*models.Product, error) {
		return s.store.GetProduct(ctx, id)
	})
}

func (s *Service) catalog(ctx context.Context) ([]models.Product, error) {
	return s.cache.Catalog(ctx, s.store.ListProducts)
}
