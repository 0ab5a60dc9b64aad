package mysql_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"PedagoPass/internal/model"
	"PedagoPass/internal/repository/mysql"
	"PedagoPass/internal/repository/mysql/mysqltest"
)

func TestPointsGetLazilyInitializes(t *testing.T) {
	repo := &mysql.PointsRepository{DB: mysqltest.Open(t)}
	up, err := repo.Get(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if up.UserID != 42 || up.TotalPoints != 0 || up.Level != model.LevelBronze {
		t.Fatalf("zero state = %+v", up)
	}
}

func TestPointsAwardTrimsHistory(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.Open(t)
	repo := &mysql.PointsRepository{DB: db}

	var last *model.UserPoints
	for i := 0; i < model.MaxActivities+5; i++ {
		up, err := repo.Award(ctx, &model.Activity{
			ActivityID:  uuid.NewString(),
			UserID:      7,
			Type:        model.ActivityPostCreated,
			Description: fmt.Sprintf("post %d", i),
			Points:      10,
		}, nil)
		if err != nil {
			t.Fatalf("award %d: %v", i, err)
		}
		last = up
	}
	if last.TotalPoints != int64(10*(model.MaxActivities+5)) || last.Level != model.LevelSilver {
		t.Fatalf("ledger = %+v", last)
	}

	acts, err := repo.RecentActivities(ctx, 7, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != model.MaxActivities {
		t.Fatalf("history = %d, want %d", len(acts), model.MaxActivities)
	}
	if acts[0].Description != fmt.Sprintf("post %d", model.MaxActivities+4) {
		t.Fatalf("newest = %q", acts[0].Description)
	}
	if acts[len(acts)-1].Description != "post 5" {
		t.Fatalf("oldest kept = %q", acts[len(acts)-1].Description)
	}
}

func TestPointsAwardWritesOutbox(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.Open(t)
	repo := &mysql.PointsRepository{DB: db}
	outbox := &mysql.OutboxRepository{DB: db}

	_, err := repo.Award(ctx,
		&model.Activity{ActivityID: uuid.NewString(), UserID: 1, Type: model.ActivityLikeReceived, Points: 2},
		&model.ActivityOutbox{EventID: uuid.NewString(), EventType: model.ActivityLikeReceived, UserID: 1, Payload: "{}"},
	)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := outbox.List(ctx, 10, 3)
	if err != nil || len(rows) != 1 {
		t.Fatalf("outbox rows = %v, %v", rows, err)
	}
	if err := outbox.RetryUpdate(ctx, rows[0].ID); err != nil {
		t.Fatal(err)
	}
	rows, _ = outbox.List(ctx, 10, 1)
	if len(rows) != 0 {
		t.Fatalf("exhausted retries should not be listed, got %d", len(rows))
	}
	rows, _ = outbox.List(ctx, 10, 3)
	if len(rows) != 1 {
		t.Fatalf("retryable row not listed")
	}
	if err := outbox.SuccessUpdate(ctx, rows[0].ID); err != nil {
		t.Fatal(err)
	}
	rows, _ = outbox.List(ctx, 10, 3)
	if len(rows) != 0 {
		t.Fatalf("sent row still listed")
	}
}
