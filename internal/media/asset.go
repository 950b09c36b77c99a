package media

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const MaxUploadBytes = 3 << 20 // 3 Mo

const sniffLen = 3072

// Upload est un fichier reçu du client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AssetError : fichier refusé (type ou taille). Rien n'a été envoyé.
type AssetError struct {
	Reason string
}

func (e *AssetError) Error() string {
	return e.Reason
}

var (
	errNotImage = &AssetError{Reason: "El archivo debe ser una imagen."}
	errTooLarge = &AssetError{Reason: "La imagen no puede superar los 3MB."}
	errEmpty    = &AssetError{Reason: "El archivo está vacío."}
)

// ValidateUpload vérifie taille, type déclaré et type réel du fichier, et
// renvoie l'extension à utiliser. Le début du fichier lu pour la détection
// est remis dans u.Body.
func ValidateUpload(u *Upload) (string, error) {
	if u == nil || u.Body == nil || u.Size == 0 {
		return "", errEmpty
	}
	if u.Size > MaxUploadBytes {
		return "", errTooLarge
	}
	if declared := baseType(u.ContentType); declared != "" && !strings.HasPrefix(declared, "image/") {
		return "", errNotImage
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(u.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]
	if n == 0 {
		return "", errEmpty
	}
	u.Body = io.MultiReader(bytes.NewReader(head), u.Body)

	detected := mimetype.Detect(head)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", errNotImage
	}
	u.ContentType = baseType(detected.String())

	ext := strings.TrimPrefix(detected.Extension(), ".")
	if ext == "" {
		ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(u.Filename)), ".")
	}
	if ext == "" {
		ext = "img"
	}
	return ext, nil
}

func baseType(ct string) string {
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}
