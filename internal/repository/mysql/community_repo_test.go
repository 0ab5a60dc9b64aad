package mysql_test

import (
	"context"
	"errors"
	"testing"

	"PedagoPass/internal/model"
	"PedagoPass/internal/repository/mysql"
	"PedagoPass/internal/repository/mysql/mysqltest"
)

func TestCommunityMembershipInvariants(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.Open(t)
	communities := &mysql.CommunityRepository{DB: db}
	members := &mysql.CommunityMemberRepository{DB: db}
	creator := seedUser(t, db, "creator@x.com")
	joiner := seedUser(t, db, "joiner@x.com")

	c := &model.Community{Slug: "geografia", Name: "Geografia", Topic: model.TopicGeneral, CreatorID: creator.ID}
	if err := communities.Create(ctx, c); err != nil {
		t.Fatal(err)
	}
	if c.MembersCount != 1 {
		t.Fatalf("members_count = %d, want 1", c.MembersCount)
	}
	m, err := members.FindMember(ctx, c.ID, creator.ID)
	if err != nil || m.Role != model.MemberRoleCreator {
		t.Fatalf("creator membership = %+v, %v", m, err)
	}

	if _, err := members.Join(ctx, c.ID, joiner.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := members.Join(ctx, c.ID, joiner.ID); !errors.Is(err, mysql.ErrAlreadyMember) {
		t.Fatalf("err = %v, want ErrAlreadyMember", err)
	}
	got, _ := communities.FindByID(ctx, c.ID)
	if got.MembersCount != 2 {
		t.Fatalf("members_count = %d, want 2", got.MembersCount)
	}

	if err := members.Leave(ctx, c.ID, creator.ID); !errors.Is(err, mysql.ErrCreatorLocked) {
		t.Fatalf("err = %v, want ErrCreatorLocked", err)
	}
	if err := members.UpdateRole(ctx, c.ID, creator.ID, model.MemberRoleMember); !errors.Is(err, mysql.ErrCreatorLocked) {
		t.Fatalf("err = %v, want ErrCreatorLocked", err)
	}
	if err := members.UpdateRole(ctx, c.ID, joiner.ID, model.MemberRoleCreator); !errors.Is(err, mysql.ErrCreatorLocked) {
		t.Fatalf("err = %v, want ErrCreatorLocked", err)
	}
	if err := members.UpdateRole(ctx, c.ID, joiner.ID, model.MemberRoleModerator); err != nil {
		t.Fatal(err)
	}

	if err := members.Leave(ctx, c.ID, joiner.ID); err != nil {
		t.Fatal(err)
	}
	if err := members.Leave(ctx, c.ID, joiner.ID); !errors.Is(err, mysql.ErrNotMember) {
		t.Fatalf("err = %v, want ErrNotMember", err)
	}
	got, _ = communities.FindByID(ctx, c.ID)
	if got.MembersCount != 1 {
		t.Fatalf("members_count = %d, want 1", got.MembersCount)
	}
}

func TestCommunityDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.Open(t)
	communities := &mysql.CommunityRepository{DB: db}
	u := seedUser(t, db, "u@x.com")

	if err := communities.Create(ctx, &model.Community{Slug: "arte", Name: "Arte", Topic: model.TopicGeneral, CreatorID: u.ID}); err != nil {
		t.Fatal(err)
	}
	err := communities.Create(ctx, &model.Community{Slug: "arte", Name: "Arte 2", Topic: model.TopicGeneral, CreatorID: u.ID})
	if !errors.Is(err, mysql.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestPostInCommunityCountsAndDeleteCascade(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.Open(t)
	communities := &mysql.CommunityRepository{DB: db}
	posts := &mysql.PostRepository{DB: db}
	likes := &mysql.PostLikeRepository{DB: db}
	comments := &mysql.CommentRepository{DB: db}
	u := seedUser(t, db, "u@x.com")

	c := &model.Community{Slug: "ciencias", Name: "Ciências", Topic: model.TopicGeneral, CreatorID: u.ID}
	if err := communities.Create(ctx, c); err != nil {
		t.Fatal(err)
	}
	p := &model.Post{AuthorID: u.ID, CommunityID: &c.ID, Content: "aula de campo", Media: []model.Media{{URL: "/uploads/a.jpg", Key: "a.jpg"}}}
	if err := posts.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	if _, err := likes.Toggle(ctx, p.ID, u.ID); err != nil {
		t.Fatal(err)
	}
	if err := comments.Create(ctx, &model.Comment{PostID: p.ID, AuthorID: u.ID, Content: "x"}); err != nil {
		t.Fatal(err)
	}
	got, _ := communities.FindByID(ctx, c.ID)
	if got.PostsCount != 1 {
		t.Fatalf("posts_count = %d, want 1", got.PostsCount)
	}

	deleted, err := posts.Delete(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(deleted.Media) != 1 || deleted.Media[0].Key != "a.jpg" {
		t.Fatalf("deleted media = %+v", deleted.Media)
	}
	if n, _ := comments.CountByPost(ctx, p.ID); n != 0 {
		t.Fatalf("comments left = %d", n)
	}
	if n, _ := likes.CountLikes(ctx, p.ID); n != 0 {
		t.Fatalf("likes left = %d", n)
	}
	got, _ = communities.FindByID(ctx, c.ID)
	if got.PostsCount != 0 {
		t.Fatalf("posts_count = %d, want 0", got.PostsCount)
	}
	if _, err := posts.Delete(ctx, p.ID); !errors.Is(err, mysql.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
