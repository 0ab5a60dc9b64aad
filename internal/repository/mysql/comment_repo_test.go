package mysql_test

import (
	"context"
	"errors"
	"testing"

	"PedagoPass/internal/model"
	"PedagoPass/internal/repository/mysql"
	"PedagoPass/internal/repository/mysql/mysqltest"
)

func TestCommentCreateAndDeleteTree(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.Open(t)
	repo := &mysql.CommentRepository{DB: db}
	posts := &mysql.PostRepository{DB: db}
	u := seedUser(t, db, "u@x.com")
	post := seedPost(t, db, u.ID)

	root := &model.Comment{PostID: post.ID, AuthorID: u.ID, Content: "root"}
	if err := repo.Create(ctx, root); err != nil {
		t.Fatal(err)
	}
	reply := &model.Comment{PostID: post.ID, AuthorID: u.ID, Content: "reply", ParentID: &root.ID}
	if err := repo.Create(ctx, reply); err != nil {
		t.Fatal(err)
	}
	nested := &model.Comment{PostID: post.ID, AuthorID: u.ID, Content: "nested", ParentID: &reply.ID}
	if err := repo.Create(ctx, nested); err != nil {
		t.Fatal(err)
	}
	other := &model.Comment{PostID: post.ID, AuthorID: u.ID, Content: "other"}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatal(err)
	}

	got, _ := posts.FindByID(ctx, post.ID)
	if got.CommentsCount != 4 {
		t.Fatalf("comments_count = %d, want 4", got.CommentsCount)
	}

	removed, err := repo.DeleteTree(ctx, root.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	got, _ = posts.FindByID(ctx, post.ID)
	n, _ := repo.CountByPost(ctx, post.ID)
	if got.CommentsCount != 1 || n != 1 {
		t.Fatalf("comments_count = %d rows = %d, want 1", got.CommentsCount, n)
	}
}

func TestCommentParentMustBeOnSamePost(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.Open(t)
	repo := &mysql.CommentRepository{DB: db}
	u := seedUser(t, db, "u@x.com")
	p1 := seedPost(t, db, u.ID)
	p2 := seedPost(t, db, u.ID)

	parent := &model.Comment{PostID: p1.ID, AuthorID: u.ID, Content: "a"}
	if err := repo.Create(ctx, parent); err != nil {
		t.Fatal(err)
	}
	err := repo.Create(ctx, &model.Comment{PostID: p2.ID, AuthorID: u.ID, Content: "b", ParentID: &parent.ID})
	if !errors.Is(err, mysql.ErrParentNotOnPost) {
		t.Fatalf("err = %v, want ErrParentNotOnPost", err)
	}
	if err := repo.Create(ctx, &model.Comment{PostID: 999, AuthorID: u.ID, Content: "c"}); !errors.Is(err, mysql.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
