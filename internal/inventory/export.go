package inventory

import (
	"context"
	"io"

	"github.com/tealeg/xlsx"

	"perfumeria_back_end/internal/models"
)

// ExportXLSX écrit le catalogue dans un classeur Excel.
func ExportXLSX(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Productos")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, h := range []string{"ID", "Nombre", "Categoría", "Precio", "Descripción", "Imagen", "Creado", "Actualizado"} {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt64(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Category)
		row.AddCell().SetFloat(p.Price())
		row.AddCell().SetString(p.Description)
		image := ""
		if p.ImageURL != nil {
			image = *p.ImageURL
		}
		row.AddCell().SetString(image)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}

// Export lit le catalogue complet et l'écrit en XLSX.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	all, err := s.store.ListProducts(ctx)
	if err != nil {
		return err
	}
	sortProducts(all, SortNew)
	return ExportXLSX(w, all)
}
