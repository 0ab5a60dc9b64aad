package mysql_test

import (
	"context"
	"errors"
	"testing"

	"PedagoPass/internal/model"
	"PedagoPass/internal/repository/mysql"
	"PedagoPass/internal/repository/mysql/mysqltest"
)

func TestUserRepositoryCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := &mysql.UserRepository{DB: mysqltest.Open(t)}

	u := &model.User{Email: "a@b.com", Password: "hash", Name: "Ana", Role: model.RoleTeacher}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected id to be assigned")
	}

	got, err := repo.FindByEmail(ctx, "a@b.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("find by email: %v %+v", err, got)
	}
	if _, err := repo.FindByID(ctx, u.ID+100); !errors.Is(err, mysql.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := &mysql.UserRepository{DB: mysqltest.Open(t)}

	if err := repo.Create(ctx, &model.User{Email: "dup@b.com", Password: "h", Name: "A", Role: model.RoleTeacher}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(ctx, &model.User{Email: "dup@b.com", Password: "h", Name: "B", Role: model.RoleTeacher})
	if !errors.Is(err, mysql.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestUserRepositoryUpdates(t *testing.T) {
	ctx := context.Background()
	repo := &mysql.UserRepository{DB: mysqltest.Open(t)}
	u := &model.User{Email: "c@b.com", Password: "old", Name: "C", Role: model.RoleTeacher}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatal(err)
	}

	if err := repo.UpdateProfile(ctx, u.ID, map[string]any{"bio": "geography teacher", "city": "Recife"}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if err := repo.UpdatePassword(ctx, u.ID, "new"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	got, _ := repo.FindByID(ctx, u.ID)
	if got.Bio != "geography teacher" || got.City != "Recife" || got.Password != "new" {
		t.Fatalf("unexpected user %+v", got)
	}
}
