package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/altafr/present99/internal/apperr"
	"github.com/altafr/present99/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "present99-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func samplePresentation(id string) *models.Presentation {
	return &models.Presentation{
		ID:      id,
		Topic:   "Climate Change",
		ThemeID: "blue-ocean",
		Slides: []models.Slide{
			{ID: "1", Layout: models.LayoutTitle, Title: "Climate Change", Subtitle: "An overview"},
			{ID: "2", Layout: models.LayoutImageText, Title: "Causes", Content: []string{"CO2", "Methane"}, ImagePrompt: "smokestacks at dusk"},
			{ID: "3", Layout: models.LayoutContent, Title: "Effects", Content: []string{"Heat", "Sea level"}},
		},
	}
}

func TestCreateGetDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Create(ctx, samplePresentation("p1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := db.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Topic != "Climate Change" || len(got.Slides) != 3 {
		t.Errorf("got %+v", got)
	}
	if got.Slides[1].ImagePrompt != "smokestacks at dusk" {
		t.Errorf("slide prompt = %q", got.Slides[1].ImagePrompt)
	}

	if err := db.Delete(ctx, "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get(ctx, "p1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete: %v, want ErrNotFound", err)
	}
	if err := db.Delete(ctx, "p1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double delete: %v, want ErrNotFound", err)
	}
}

func TestListOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Create(ctx, samplePresentation("older")); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(ctx, samplePresentation("newer")); err != nil {
		t.Fatal(err)
	}
	// Touch the older one so it is most recently modified.
	older, _ := db.Get(ctx, "older")
	older.Topic = "Updated"
	if err := db.Save(ctx, older); err != nil {
		t.Fatal(err)
	}

	list, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].ID != "older" {
		t.Errorf("first = %s, want most recently modified", list[0].ID)
	}
}

func TestSaveUnknownID(t *testing.T) {
	db := testDB(t)
	err := db.Save(context.Background(), samplePresentation("ghost"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Save: %v, want ErrNotFound", err)
	}
}

func TestUpdateSlideImage(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.Create(ctx, samplePresentation("p1")); err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateSlideImage(ctx, "p1", "2", "img://x"); err != nil {
		t.Fatalf("UpdateSlideImage: %v", err)
	}

	got, err := db.Get(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Slides[1].ImageURL != "img://x" {
		t.Errorf("image = %q, want img://x", got.Slides[1].ImageURL)
	}
	// Only the image reference changed.
	if got.Slides[1].Title != "Causes" || len(got.Slides[1].Content) != 2 || got.Slides[1].ImagePrompt != "smokestacks at dusk" {
		t.Errorf("non-image fields disturbed: %+v", got.Slides[1])
	}
	if got.Slides[0].ImageURL != "" || got.Slides[2].ImageURL != "" {
		t.Error("sibling slides mutated")
	}
	if got.Slides[0].ID != "1" || got.Slides[2].ID != "3" {
		t.Error("slide ordering disturbed")
	}
}

func TestUpdateSlideImage_LastWriteWins(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.Create(ctx, samplePresentation("p1")); err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateSlideImage(ctx, "p1", "2", "img://first"); err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateSlideImage(ctx, "p1", "2", "img://second"); err != nil {
		t.Fatal(err)
	}

	got, _ := db.Get(ctx, "p1")
	if got.Slides[1].ImageURL != "img://second" {
		t.Errorf("image = %q, want img://second", got.Slides[1].ImageURL)
	}
}

func TestUpdateSlideImage_Missing(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.Create(ctx, samplePresentation("p1")); err != nil {
		t.Fatal(err)
	}

	if err := db.UpdateSlideImage(ctx, "ghost", "1", "img://x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown presentation: %v, want ErrNotFound", err)
	}
	if err := db.UpdateSlideImage(ctx, "p1", "99", "img://x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown slide: %v, want ErrNotFound", err)
	}

	// The failed updates must not have touched anything.
	got, _ := db.Get(ctx, "p1")
	for _, s := range got.Slides {
		if s.ImageURL != "" {
			t.Errorf("slide %s mutated by failed update", s.ID)
		}
	}
}
