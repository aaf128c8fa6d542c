package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/toodoo/core/internal/domain/entities"
	"github.com/toodoo/core/internal/infrastructure/logger"
	"github.com/toodoo/core/internal/ports"
)

type categoryFixture struct {
	svc     *CategoryService
	repo    *fakeCategoryRepo
	emitter *fakeEmitter
}

func newCategoryFixture() *categoryFixture {
	f := &categoryFixture{
		repo:    newFakeCategoryRepo(),
		emitter: &fakeEmitter{},
	}
	f.svc = NewCategoryService(f.repo, f.emitter, logger.NewNop())
	return f
}

func TestCreateCategory(t *testing.T) {
	f := newCategoryFixture()
	actor := uuid.New()

	category, err := f.svc.CreateCategory(context.Background(), actor, ports.CreateCategoryRequest{
		Name:  "Errands",
		Color: "#ff8800",
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if category.UserID != actor || category.Name != "Errands" || category.IsGlobal {
		t.Errorf("category = %+v", category)
	}
	if len(f.emitter.categoryCreated) != 1 {
		t.Errorf("emitter created calls = %d, want 1", len(f.emitter.categoryCreated))
	}
}

func TestUpdateCategoryOwnerOnly(t *testing.T) {
	f := newCategoryFixture()
	owner := uuid.New()
	stranger := uuid.New()

	category := &entities.Category{UserID: owner, Name: "Old"}
	if err := f.repo.Create(context.Background(), category); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	name := "New"
	if _, err := f.svc.UpdateCategory(context.Background(), stranger, category.ID, ports.UpdateCategoryRequest{Name: &name}); !errors.Is(err, entities.ErrForbidden) {
		t.Errorf("stranger err = %v, want %v", err, entities.ErrForbidden)
	}

	updated, err := f.svc.UpdateCategory(context.Background(), owner, category.ID, ports.UpdateCategoryRequest{Name: &name})
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Name != "New" {
		t.Errorf("name = %q", updated.Name)
	}
	if len(f.emitter.categoryUpdated) != 1 {
		t.Errorf("emitter updated calls = %d, want 1", len(f.emitter.categoryUpdated))
	}
}

func TestDeleteCategoryEmitsSnapshot(t *testing.T) {
	f := newCategoryFixture()
	owner := uuid.New()

	category := &entities.Category{UserID: owner, Name: "Short-lived"}
	if err := f.repo.Create(context.Background(), category); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	if err := f.svc.DeleteCategory(context.Background(), owner, category.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := f.repo.GetByID(context.Background(), category.ID); !errors.Is(err, entities.ErrCategoryNotFound) {
		t.Error("category still present after delete")
	}
	if len(f.emitter.categoryDeleted) != 1 || f.emitter.categoryDeleted[0].Name != "Short-lived" {
		t.Errorf("emitter deleted calls = %+v", f.emitter.categoryDeleted)
	}
}

func TestListCategoriesIncludesGlobal(t *testing.T) {
	f := newCategoryFixture()
	actor := uuid.New()
	other := uuid.New()

	ctx := context.Background()
	seed := []*entities.Category{
		{UserID: actor, Name: "mine"},
		{UserID: other, Name: "shared", IsGlobal: true},
		{UserID: other, Name: "theirs"},
	}
	for _, category := range seed {
		if err := f.repo.Create(ctx, category); err != nil {
			t.Fatalf("seed category %q: %v", category.Name, err)
		}
	}

	categories, err := f.svc.ListCategories(ctx, actor)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("got %d categories, want own plus global", len(categories))
	}
	for _, category := range categories {
		if category.Name == "theirs" {
			t.Error("another user's private category leaked")
		}
	}
}

func TestPinCategory(t *testing.T) {
	f := newCategoryFixture()
	actor := uuid.New()
	other := uuid.New()

	ctx := context.Background()
	own := &entities.Category{UserID: actor, Name: "own"}
	global := &entities.Category{UserID: other, Name: "global", IsGlobal: true}
	private := &entities.Category{UserID: other, Name: "private"}
	for _, category := range []*entities.Category{own, global, private} {
		if err := f.repo.Create(ctx, category); err != nil {
			t.Fatalf("seed category %q: %v", category.Name, err)
		}
	}

	if err := f.svc.PinCategory(ctx, actor, own.ID); err != nil {
		t.Errorf("pin own: %v", err)
	}
	if err := f.svc.PinCategory(ctx, actor, global.ID); err != nil {
		t.Errorf("pin global: %v", err)
	}
	if err := f.svc.PinCategory(ctx, actor, private.ID); !errors.Is(err, entities.ErrForbidden) {
		t.Errorf("pin private err = %v, want %v", err, entities.ErrForbidden)
	}

	// Pinning twice is a conflict, not a silent no-op.
	if err := f.svc.PinCategory(ctx, actor, own.ID); !errors.Is(err, entities.ErrAlreadyPinned) {
		t.Errorf("double pin err = %v, want %v", err, entities.ErrAlreadyPinned)
	}

	if err := f.svc.UnpinCategory(ctx, actor, own.ID); err != nil {
		t.Errorf("unpin: %v", err)
	}
	if err := f.svc.PinCategory(ctx, actor, own.ID); err != nil {
		t.Errorf("re-pin after unpin: %v", err)
	}
}

func TestSetGlobal(t *testing.T) {
	f := newCategoryFixture()
	owner := uuid.New()
	stranger := uuid.New()

	ctx := context.Background()
	category := &entities.Category{UserID: owner, Name: "team"}
	if err := f.repo.Create(ctx, category); err != nil {
		t.Fatalf("seed category: %v", err)
	}

	if err := f.svc.SetGlobal(ctx, stranger, category.ID, true); !errors.Is(err, entities.ErrForbidden) {
		t.Errorf("stranger err = %v, want %v", err, entities.ErrForbidden)
	}

	if err := f.svc.SetGlobal(ctx, owner, category.ID, true); err != nil {
		t.Fatalf("SetGlobal: %v", err)
	}
	after, err := f.repo.GetByID(ctx, category.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !after.IsGlobal {
		t.Error("category not marked global")
	}
	if len(f.emitter.categoryUpdated) != 1 {
		t.Errorf("emitter updated calls = %d, want 1", len(f.emitter.categoryUpdated))
	}

	// Setting the same value again changes nothing and stays silent.
	if err := f.svc.SetGlobal(ctx, owner, category.ID, true); err != nil {
		t.Fatalf("idempotent SetGlobal: %v", err)
	}
	if len(f.emitter.categoryUpdated) != 1 {
		t.Error("no-op toggle still emitted an update")
	}
}
