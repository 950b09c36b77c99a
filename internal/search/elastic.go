// Package search indexe le catalogue dans Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"perfumeria_back_end/internal/models"
)

const IndexName = "products"

// ErrDisabled : aucun cluster configuré, l'appelant filtre en mémoire.
var ErrDisabled = errors.New("elasticsearch non configuré")

type Index struct {
	es   *elasticsearch.Client
	name string
}

// New accepte un client nil (recherche désactivée).
func New(es *elasticsearch.Client) *Index {
	return &Index{es: es, name: IndexName}
}

func (ix *Index) Enabled() bool {
	return ix != nil && ix.es != nil
}

type productDoc struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"price_cents"`
}

//
// --- INDEXATION ---
//

func (ix *Index) IndexProduct(ctx context.Context, p models.Product) error {
	if !ix.Enabled() {
		return ErrDisabled
	}
	data, err := json.Marshal(productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
	})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      ix.name,
		DocumentID: strconv.FormatInt(p.ID, 10),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, ix.es)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("Elastic a refusé %s: %s", p.Name, res.Status())
	}
	log.Printf("✅ Produit indexé dans Elasticsearch: %s", p.Name)
	return nil
}

// DeleteProduct retire le document. Un document absent n'est pas une erreur.
func (ix *Index) DeleteProduct(ctx context.Context, id int64) error {
	if !ix.Enabled() {
		return ErrDisabled
	}
	req := esapi.DeleteRequest{
		Index:      ix.name,
		DocumentID: strconv.FormatInt(id, 10),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, ix.es)
	if err != nil {
		return fmt.Errorf("envoi Elastic: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("suppression Elastic %d: %s", id, res.Status())
	}
	return nil
}

//
// --- RECHERCHE ---
//

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source productDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search renvoie les ids des produits trouvés, par pertinence.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]int64, error) {
	if !ix.Enabled() {
		return nil, ErrDisabled
	}

	var buf bytes.Buffer
	q := map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^3", "category^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.name),
		ix.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("recherche Elastic: %s", res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}
	ids := make([]int64, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, nil
}

// Match est le filtre utilisé sans Elasticsearch : chaque mot de la requête
// doit apparaître dans le nom, la catégorie ou la description.
func Match(p models.Product, query string) bool {
	haystack := strings.ToLower(p.Name + " " + p.Category + " " + p.Description)
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if !strings.Contains(haystack, word) {
			return false
		}
	}
	return true
}
