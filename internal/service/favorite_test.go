package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/model"
)

type favoriteFixture struct {
	svc     *FavoriteService
	users   *fakeUserRepo
	modules *fakeModuleRepo
	userID  string
}

func newFavoriteFixture(t *testing.T, moduleNames ...string) (*favoriteFixture, []string) {
	t.Helper()
	users := newFakeUserRepo()
	modules := newFakeModuleRepo()

	u := &model.User{Name: "Jan", Email: "jan@example.com", PasswordHash: "x"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	var ids []string
	for _, name := range moduleNames {
		m := validModule()
		m.Name = name
		if err := modules.Create(context.Background(), &m); err != nil {
			t.Fatalf("seeding module: %v", err)
		}
		ids = append(ids, m.ID)
	}

	return &favoriteFixture{
		svc:     NewFavoriteService(users, modules, testLogger()),
		users:   users,
		modules: modules,
		userID:  u.ID,
	}, ids
}

func TestFavoriteToggle(t *testing.T) {
	f, ids := newFavoriteFixture(t, "A", "B")
	ctx := context.Background()

	res, err := f.svc.Toggle(ctx, f.userID, ids[0])
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !res.IsFavorite || !slices.Equal(res.Favorites, []string{ids[0]}) {
		t.Errorf("after first toggle: %+v", res)
	}

	res, _ = f.svc.Toggle(ctx, f.userID, ids[1])
	if !slices.Equal(res.Favorites, []string{ids[0], ids[1]}) {
		t.Errorf("favorites = %v, want insertion order", res.Favorites)
	}

	res, err = f.svc.Toggle(ctx, f.userID, ids[0])
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if res.IsFavorite || !slices.Equal(res.Favorites, []string{ids[1]}) {
		t.Errorf("after untoggle: %+v", res)
	}

	list, err := f.svc.List(ctx, f.userID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !slices.Equal(list, []string{ids[1]}) {
		t.Errorf("List() = %v", list)
	}
}

func TestFavoriteToggle_UnknownModule(t *testing.T) {
	f, _ := newFavoriteFixture(t)

	_, err := f.svc.Toggle(context.Background(), f.userID, "mod-404")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Toggle() error = %v, want ErrNotFound", err)
	}
}

func TestFavoriteToggle_DeletedModuleCanBeRemoved(t *testing.T) {
	f, ids := newFavoriteFixture(t, "A")
	ctx := context.Background()

	if _, err := f.svc.Toggle(ctx, f.userID, ids[0]); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	delete(f.modules.modules, ids[0])

	res, err := f.svc.Toggle(ctx, f.userID, ids[0])
	if err != nil {
		t.Fatalf("Toggle() on deleted module error = %v", err)
	}
	if res.IsFavorite || len(res.Favorites) != 0 {
		t.Errorf("result = %+v, want removed", res)
	}
}

func TestFavorite_IdentityGone(t *testing.T) {
	f, ids := newFavoriteFixture(t, "A")

	if _, err := f.svc.List(context.Background(), "user-deleted"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("List() error = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.Toggle(context.Background(), "user-deleted", ids[0]); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Toggle() error = %v, want ErrNotFound", err)
	}
}

func TestFavoriteList_EmptyIsNotNil(t *testing.T) {
	f, _ := newFavoriteFixture(t)

	list, err := f.svc.List(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list == nil {
		t.Error("List() = nil, want empty slice so it encodes as []")
	}
}

func TestFavoriteToggle_StoreFailure(t *testing.T) {
	f, ids := newFavoriteFixture(t, "A")
	f.users.err = errStoreDown

	_, err := f.svc.Toggle(context.Background(), f.userID, ids[0])
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("Toggle() error = %v, want errStoreDown", err)
	}
}
