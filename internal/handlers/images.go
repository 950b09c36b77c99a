package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/media"
)

// FormUpload lit le fichier field d'un formulaire multipart. Sans fichier,
// l'upload renvoyé est nil. Le fichier doit être fermé avec close.
func FormUpload(c *gin.Context, field string) (*media.Upload, func(), error) {
	noop := func() {}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, &media.AssetError{Reason: "Formulario inválido."}
	}
	if fh.Size > media.MaxUploadBytes {
		return nil, noop, &media.AssetError{Reason: "La imagen no puede superar los 3MB."}
	}
	file, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	up := &media.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
	}
	return up, func() { _ = file.Close() }, nil
}
