package mysql_test

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"PedagoPass/internal/model"
)

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Password: "hash", Name: email, Role: model.RoleTeacher}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedPost(t *testing.T, db *gorm.DB, authorID uint64) *model.Post {
	t.Helper()
	p := &model.Post{AuthorID: authorID, Content: "hello"}
	if err := db.WithContext(context.Background()).Create(p).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}
