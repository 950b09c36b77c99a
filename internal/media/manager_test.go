package media

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func pngUpload(name string) *Upload {
	return &Upload{Filename: name, ContentType: "image/png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)}
}

type record struct {
	ref   ImageRef
	links int
	fail  error
}

func (r *record) link(ctx context.Context, ref ImageRef) error {
	r.links++
	if r.fail != nil {
		return r.fail
	}
	r.ref = ref
	return nil
}

func setup(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore("https://cdn.example.com/product-images")
	m := NewManager(store)
	m.newID = func() string { return "11111111-2222" }
	return m, store
}

func TestReplaceSwapsAfterLink(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	store.Put("old/path.jpg", []byte("old"))
	rec := &record{ref: ImageRef{URL: store.PublicURL("old/path.jpg"), Path: "old/path.jpg"}}

	var sawOldDuringLink, sawNewDuringLink bool
	link := func(ctx context.Context, ref ImageRef) error {
		sawOldDuringLink = store.Has("old/path.jpg")
		sawNewDuringLink = store.Has(ref.Path)
		return rec.link(ctx, ref)
	}

	res, err := m.Replace(ctx, ReplaceRequest{
		File:     pngUpload("Bleu Nuit.PNG"),
		Current:  rec.ref,
		Prefix:   "products",
		NameHint: "Bleu Nuit",
	}, link)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !sawNewDuringLink || !sawOldDuringLink {
		t.Errorf("during link: new present=%v old present=%v, want both", sawNewDuringLink, sawOldDuringLink)
	}

	wantPath := "products/11111111-2222_bleu-nuit.png"
	if res.Ref.Path != wantPath || rec.ref.Path != wantPath {
		t.Fatalf("path = %q / %q, want %q", res.Ref.Path, rec.ref.Path, wantPath)
	}
	if rec.ref.URL != "https://cdn.example.com/product-images/"+wantPath {
		t.Errorf("url = %q", rec.ref.URL)
	}
	if store.Has("old/path.jpg") {
		t.Error("old blob still present")
	}
	if _, ct, _ := store.Get(wantPath); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if data, _, _ := store.Get(wantPath); !bytes.Equal(data, pngHeader) {
		t.Error("uploaded bytes differ from the original file")
	}
	if !res.Changed || len(res.Warnings) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestReplaceLinkFailureKeepsOldBlob(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	store.Put("old/path.jpg", []byte("old"))
	current := ImageRef{URL: "u", Path: "old/path.jpg"}
	linkErr := errors.New("update rejected")
	rec := &record{ref: current, fail: linkErr}

	res, err := m.Replace(ctx, ReplaceRequest{File: pngUpload("a.png"), Current: current, Prefix: "products"}, rec.link)
	if !errors.Is(err, linkErr) {
		t.Fatalf("err = %v, want link error", err)
	}
	if !store.Has("old/path.jpg") {
		t.Fatal("old blob must still be present")
	}
	if data, _, _ := store.Get("old/path.jpg"); string(data) != "old" {
		t.Error("old blob changed")
	}
	if store.Len() != 1 {
		t.Errorf("blobs = %d, the new upload must be removed", store.Len())
	}
	if res.Ref != current {
		t.Errorf("ref = %+v, want current", res.Ref)
	}
}

func TestReplaceOrphanIsWarningOnly(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	store.Put("old/path.jpg", []byte("old"))
	store.FailDelete = errors.New("storage unavailable")
	rec := &record{ref: ImageRef{Path: "old/path.jpg"}}

	res, err := m.Replace(ctx, ReplaceRequest{File: pngUpload("a.png"), Current: rec.ref, Prefix: "products"}, rec.link)
	if err != nil {
		t.Fatalf("cleanup failure must not fail the replace: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Path != "old/path.jpg" {
		t.Fatalf("warnings = %+v", res.Warnings)
	}
	if rec.ref.Path == "old/path.jpg" {
		t.Error("record must point to the new image")
	}
}

func TestReplaceNoopStillLinks(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	store.Put("p/x.jpg", nil)
	current := ImageRef{URL: "u", Path: "p/x.jpg"}
	rec := &record{}

	res, err := m.Replace(ctx, ReplaceRequest{Current: current}, rec.link)
	if err != nil {
		t.Fatal(err)
	}
	if rec.links != 1 || rec.ref != current || res.Ref != current || res.Changed {
		t.Errorf("links=%d ref=%+v res=%+v", rec.links, rec.ref, res)
	}
	if !store.Has("p/x.jpg") || store.Len() != 1 {
		t.Error("store must be untouched")
	}
}

func TestReplaceRemove(t *testing.T) {
	ctx := context.Background()
	m, store := setup(t)
	store.Put("p/x.jpg", nil)
	current := ImageRef{URL: "u", Path: "p/x.jpg"}

	failing := &record{ref: current, fail: errors.New("down")}
	if _, err := m.Replace(ctx, ReplaceRequest{Remove: true, Current: current}, failing.link); err == nil {
		t.Fatal("expected link error")
	}
	if !store.Has("p/x.jpg") {
		t.Fatal("blob deleted although the record still references it")
	}

	rec := &record{ref: current}
	res, err := m.Replace(ctx, ReplaceRequest{Remove: true, Current: current}, rec.link)
	if err != nil {
		t.Fatal(err)
	}
	if !rec.ref.IsZero() || !res.Ref.IsZero() {
		t.Errorf("ref = %+v, want empty", rec.ref)
	}
	if store.Has("p/x.jpg") {
		t.Error("blob still present after removal")
	}
}

func TestReplaceRejectsBadAsset(t *testing.T) {
	tests := []struct {
		name string
		file *Upload
	}{
		{"text file", &Upload{Filename: "a.png", ContentType: "image/png", Size: 5, Body: strings.NewReader("hello")}},
		{"declared non image", &Upload{Filename: "a.pdf", ContentType: "application/pdf", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)}},
		{"too large", &Upload{Filename: "a.png", ContentType: "image/png", Size: MaxUploadBytes + 1, Body: bytes.NewReader(pngHeader)}},
		{"empty", &Upload{Filename: "a.png", ContentType: "image/png", Size: 0, Body: bytes.NewReader(nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := setup(t)
			rec := &record{}
			_, err := m.Replace(context.Background(), ReplaceRequest{File: tt.file, Prefix: "products"}, rec.link)
			var aerr *AssetError
			if !errors.As(err, &aerr) {
				t.Fatalf("err = %v, want AssetError", err)
			}
			if rec.links != 0 || store.Len() != 0 {
				t.Errorf("links=%d blobs=%d, want nothing", rec.links, store.Len())
			}
		})
	}
}

func TestReplaceUploadFailure(t *testing.T) {
	m, store := setup(t)
	store.FailUpload = errors.New("bucket missing")
	rec := &record{}
	_, err := m.Replace(context.Background(), ReplaceRequest{File: pngUpload("a.png")}, rec.link)
	if err == nil || rec.links != 0 {
		t.Fatalf("err=%v links=%d", err, rec.links)
	}
}

func TestUploadNeverOverwrites(t *testing.T) {
	m, store := setup(t)
	store.Put("products/11111111-2222_a.png", []byte("keep"))
	rec := &record{}
	_, err := m.Replace(context.Background(), ReplaceRequest{File: pngUpload("a.png"), Prefix: "products", NameHint: "a"}, rec.link)
	if !errors.Is(err, ErrBlobExists) {
		t.Fatalf("err = %v", err)
	}
	if data, _, _ := store.Get("products/11111111-2222_a.png"); string(data) != "keep" {
		t.Error("existing blob overwritten")
	}
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"Bleu Nuit":              "bleu-nuit",
		"  ¡Oferta! 50% OFF  ":   "oferta-50-off",
		"":                       "product",
		"***":                    "product",
		strings.Repeat("ab", 30): strings.Repeat("ab", 20),
		"Eau de Parfum Intense pour Homme Édition": "eau-de-parfum-intense-pour-homme-dition",
	}
	for in, want := range tests {
		if got := SafeName(in); got != want {
			t.Errorf("SafeName(%q) = %q, want %q", in, got, want)
		}
		if got := SafeName(in); len(got) > 40 {
			t.Errorf("SafeName(%q) too long", in)
		}
	}
}

func TestObjectPath(t *testing.T) {
	if got := ObjectPath("user-1", "id", "Mi Foto", "jpg"); got != "user-1/id_mi-foto.jpg" {
		t.Errorf("got %q", got)
	}
	if got := ObjectPath("", "id", "", "png"); got != "id_product.png" {
		t.Errorf("got %q", got)
	}
}

func TestRefColumns(t *testing.T) {
	url, path := ImageRef{}.Columns()
	if url != nil || path != nil {
		t.Fatal("zero ref must map to NULL columns")
	}
	u, p := "u", "p"
	ref := RefFrom(&u, &p)
	gu, gp := ref.Columns()
	if *gu != "u" || *gp != "p" {
		t.Errorf("columns = %s %s", *gu, *gp)
	}
}
