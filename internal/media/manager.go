package media

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ImageRef pointe vers un objet du bucket. La valeur zéro signifie « pas
// d'image ».
type ImageRef struct {
	URL  string `json:"url,omitempty"`
	Path string `json:"path,omitempty"`
}

func (r ImageRef) IsZero() bool {
	return r.Path == "" && r.URL == ""
}

// RefFrom construit une référence depuis les colonnes nullables d'un
// enregistrement.
func RefFrom(url, path *string) ImageRef {
	var r ImageRef
	if url != nil {
		r.URL = *url
	}
	if path != nil {
		r.Path = *path
	}
	return r
}

// Columns renvoie les valeurs nullables à écrire dans l'enregistrement.
func (r ImageRef) Columns() (url, path *string) {
	if r.URL != "" {
		u := r.URL
		url = &u
	}
	if r.Path != "" {
		p := r.Path
		path = &p
	}
	return url, path
}

// OrphanBlobWarning : un ancien fichier n'a pas pu être supprimé. Il reste
// dans le bucket sans être référencé. Jamais renvoyé comme erreur.
type OrphanBlobWarning struct {
	Path string
	Err  error
}

func (w *OrphanBlobWarning) Error() string {
	return fmt.Sprintf("objet orphelin %s: %v", w.Path, w.Err)
}

func (w *OrphanBlobWarning) Unwrap() error { return w.Err }

// LinkFunc écrit la référence d'image dans l'enregistrement propriétaire.
type LinkFunc func(ctx context.Context, ref ImageRef) error

type ReplaceRequest struct {
	File     *Upload // nouveau fichier, ou nil
	Remove   bool    // retirer l'image actuelle (ignoré si File est fourni)
	Current  ImageRef
	Prefix   string // "products" ou l'id utilisateur
	NameHint string
}

type ReplaceResult struct {
	Ref      ImageRef
	Changed  bool
	Warnings []*OrphanBlobWarning
}

type Manager struct {
	store BlobStore
	newID func() string
}

func NewManager(store BlobStore) *Manager {
	return &Manager{store: store, newID: uuid.NewString}
}

func (m *Manager) Store() BlobStore {
	return m.store
}

// Replace applique le changement d'image d'un enregistrement. link est
// appelé exactement une fois avec la référence finale, après l'envoi du
// nouveau fichier et avant toute suppression. L'ancien fichier n'est
// supprimé qu'une fois link réussi; si link échoue, le nouveau fichier est
// retiré et l'ancien reste intact.
func (m *Manager) Replace(ctx context.Context, req ReplaceRequest, link LinkFunc) (ReplaceResult, error) {
	switch {
	case req.File != nil:
		return m.replaceWithUpload(ctx, req, link)
	case req.Remove && !req.Current.IsZero():
		return m.clear(ctx, req, link)
	default:
		if err := link(ctx, req.Current); err != nil {
			return ReplaceResult{Ref: req.Current}, err
		}
		return ReplaceResult{Ref: req.Current}, nil
	}
}

func (m *Manager) replaceWithUpload(ctx context.Context, req ReplaceRequest, link LinkFunc) (ReplaceResult, error) {
	ext, err := ValidateUpload(req.File)
	if err != nil {
		return ReplaceResult{Ref: req.Current}, err
	}

	path, err := m.upload(ctx, req, ext)
	if err != nil {
		return ReplaceResult{Ref: req.Current}, err
	}
	next := ImageRef{URL: m.store.PublicURL(path), Path: path}

	if err := link(ctx, next); err != nil {
		res := ReplaceResult{Ref: req.Current}
		if w := m.discard(ctx, path); w != nil {
			res.Warnings = append(res.Warnings, w)
		}
		return res, err
	}

	res := ReplaceResult{Ref: next, Changed: true}
	if req.Current.Path != "" && req.Current.Path != path {
		if w := m.discard(ctx, req.Current.Path); w != nil {
			res.Warnings = append(res.Warnings, w)
		}
	}
	return res, nil
}

func (m *Manager) clear(ctx context.Context, req ReplaceRequest, link LinkFunc) (ReplaceResult, error) {
	if err := link(ctx, ImageRef{}); err != nil {
		return ReplaceResult{Ref: req.Current}, err
	}
	res := ReplaceResult{Changed: true}
	if req.Current.Path != "" {
		if w := m.discard(ctx, req.Current.Path); w != nil {
			res.Warnings = append(res.Warnings, w)
		}
	}
	return res, nil
}

func (m *Manager) upload(ctx context.Context, req ReplaceRequest, ext string) (string, error) {
	path := ObjectPath(req.Prefix, m.newID(), req.NameHint, ext)
	if err := m.store.Upload(ctx, path, req.File.Body, req.File.Size, req.File.ContentType); err != nil {
		return "", err
	}
	log.Printf("📤 Image envoyée: %s", path)
	return path, nil
}

// Discard supprime un fichier qui n'est plus référencé. Un échec est
// journalisé et renvoyé comme avertissement.
func (m *Manager) Discard(ctx context.Context, path string) *OrphanBlobWarning {
	if path == "" {
		return nil
	}
	return m.discard(ctx, path)
}

func (m *Manager) discard(ctx context.Context, path string) *OrphanBlobWarning {
	if err := m.store.Delete(context.WithoutCancel(ctx), path); err != nil {
		w := &OrphanBlobWarning{Path: path, Err: err}
		log.Printf("⚠️ %v", w)
		return w
	}
	log.Printf("🧹 Image supprimée: %s", path)
	return nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

const maxSafeNameLen = 40

// SafeName réduit un nom libre à [a-z0-9-], 40 caractères au plus.
func SafeName(hint string) string {
	s := unsafeChars.ReplaceAllString(strings.ToLower(hint), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSafeNameLen {
		s = strings.TrimRight(s[:maxSafeNameLen], "-")
	}
	if s == "" {
		return "product"
	}
	return s
}

// ObjectPath construit "<prefix>/<id>_<nom>.<ext>".
func ObjectPath(prefix, id, hint, ext string) string {
	name := id + "_" + SafeName(hint) + "." + ext
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
