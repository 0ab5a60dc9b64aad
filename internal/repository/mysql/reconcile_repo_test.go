package mysql_test

import (
	"context"
	"testing"

	"PedagoPass/internal/repository/mysql"
	"PedagoPass/internal/repository/mysql/mysqltest"
)

func TestFixPostCounters(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.Open(t)
	repo := &mysql.CounterReconcilerRepo{DB: db}
	likes := &mysql.PostLikeRepository{DB: db}
	u := seedUser(t, db, "u@x.com")
	p := seedPost(t, db, u.ID)
	if _, err := likes.Toggle(ctx, p.ID, u.ID); err != nil {
		t.Fatal(err)
	}
	if err := db.Exec("UPDATE posts SET likes_count = 9, comments_count = 4 WHERE id = ?", p.ID).Error; err != nil {
		t.Fatal(err)
	}

	batch, next, err := repo.PostBatch(ctx, 0, 10)
	if err != nil || len(batch) != 1 || next != p.ID {
		t.Fatalf("batch = %+v next = %d err = %v", batch, next, err)
	}
	if batch[0].LikesCount != 9 {
		t.Fatalf("stored likes = %d", batch[0].LikesCount)
	}
	if err := repo.FixPostCounters(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	l, c, _ := repo.RealPostCounters(ctx, p.ID)
	batch, _, _ = repo.PostBatch(ctx, 0, 10)
	if batch[0].LikesCount != l || batch[0].CommentsCount != c || l != 1 || c != 0 {
		t.Fatalf("after fix = %+v (real %d/%d)", batch[0], l, c)
	}
}
