package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"PedagoPass/internal/logging"
	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/service/mocks"
)

func newPostService(env *testEnv, store MediaStore) *PostService {
	likes := NewPostLikeService(env.likes, nil, nil, env.points, logging.Discard())
	return NewPostService(PostServiceDeps{
		Posts:        env.posts,
		Communities:  env.communities,
		Members:      env.members,
		Destinations: env.destinations,
		Likes:        likes,
		Store:        store,
		Points:       env.points,
		Log:          logging.Discard(),
	})
}

func TestCreatePostWithMedia(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMediaStore(ctrl)
	svc := newPostService(env, store)
	u := env.seedUser(t, "u@x.com")

	store.EXPECT().Save(gomock.Any(), "a.jpg", "image/jpeg", gomock.Any()).Return("/uploads/k1.jpg", "k1.jpg", nil)
	store.EXPECT().Save(gomock.Any(), "b.mp4", "video/mp4", gomock.Any()).Return("/uploads/k2.mp4", "k2.mp4", nil)

	post, err := svc.CreatePost(ctx, u.ID, CreatePostInput{
		Content: "  Visita ao museu  ",
		Tags:    []string{"#Historia", "historia", "museu"},
		Media: []MediaUpload{
			{Name: "a.jpg", ContentType: "image/jpeg", Size: 3, Body: strings.NewReader("abc")},
			{Name: "b.mp4", ContentType: "video/mp4", Size: 3, Body: strings.NewReader("def")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if post.Content != "Visita ao museu" || len(post.Tags) != 2 || post.Tags[0] != "historia" {
		t.Fatalf("post = %+v", post)
	}
	if len(post.Media) != 2 || post.Media[1].Type != "video" || post.Media[1].Position != 1 {
		t.Fatalf("media = %+v", post.Media)
	}
	if got := env.totalPoints(t, u.ID); got != 10 {
		t.Fatalf("points = %d, want 10", got)
	}
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newPostService(env, nil)
	u := env.seedUser(t, "u@x.com")

	_, err := svc.CreatePost(ctx, u.ID, CreatePostInput{Content: "<script></script>"})
	assertKind(t, err, pkg.KindValidation)

	six := make([]MediaUpload, 6)
	for i := range six {
		six[i] = MediaUpload{Name: "x.png", ContentType: "image/png", Body: strings.NewReader("")}
	}
	_, err = svc.CreatePost(ctx, u.ID, CreatePostInput{Content: "x", Media: six})
	assertKind(t, err, pkg.KindValidation)

	_, err = svc.CreatePost(ctx, u.ID, CreatePostInput{Content: "x", Media: []MediaUpload{{Name: "x.exe", ContentType: "application/octet-stream"}}})
	assertKind(t, err, pkg.KindValidation)
}

func TestCreatePostInCommunityRequiresMembership(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newPostService(env, nil)
	owner := env.seedUser(t, "owner@x.com")
	outsider := env.seedUser(t, "out@x.com")
	c := &model.Community{Slug: "artes", Name: "Artes", Topic: model.TopicGeneral, CreatorID: owner.ID}
	if err := env.communities.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	_, err := svc.CreatePost(ctx, outsider.ID, CreatePostInput{Content: "oi", CommunityID: c.ID})
	assertKind(t, err, pkg.KindForbidden)
	_, err = svc.CreatePost(ctx, owner.ID, CreatePostInput{Content: "oi", CommunityID: 999})
	assertKind(t, err, pkg.KindNotFound)

	if _, err := svc.CreatePost(ctx, owner.ID, CreatePostInput{Content: "oi", CommunityID: c.ID}); err != nil {
		t.Fatal(err)
	}
	got, _ := env.communities.FindByID(ctx, c.ID)
	if got.PostsCount != 1 {
		t.Fatalf("posts_count = %d, want 1", got.PostsCount)
	}
}

func TestListPostsPersonalisesLiked(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newPostService(env, nil)
	u := env.seedUser(t, "u@x.com")
	p1, _ := svc.CreatePost(ctx, u.ID, CreatePostInput{Content: "one"})
	if _, err := svc.CreatePost(ctx, u.ID, CreatePostInput{Content: "two"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.likes.Toggle(ctx, p1.ID, u.ID); err != nil {
		t.Fatal(err)
	}

	page, err := svc.ListPosts(ctx, ListPostsInput{Page: 1, Size: 10}, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || len(page.Posts) != 2 {
		t.Fatalf("page = %+v", page)
	}
	for _, p := range page.Posts {
		if p.Liked != (p.ID == p1.ID) {
			t.Fatalf("post %d liked = %v", p.ID, p.Liked)
		}
	}

	anon, _ := svc.ListPosts(ctx, ListPostsInput{AuthorID: u.ID}, 0)
	for _, p := range anon.Posts {
		if p.Liked {
			t.Fatal("anonymous listing marked liked")
		}
	}
}

func TestUpdateAndDeletePostAuthorOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMediaStore(ctrl)
	svc := newPostService(env, store)
	author := env.seedUser(t, "a@x.com")
	other := env.seedUser(t, "o@x.com")

	store.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/uploads/k.png", "k.png", nil)
	post, err := svc.CreatePost(ctx, author.ID, CreatePostInput{
		Content: "original",
		Media:   []MediaUpload{{Name: "p.png", ContentType: "image/png", Body: strings.NewReader("x")}},
	})
	if err != nil {
		t.Fatal(err)
	}

	edited := "edited"
	_, err = svc.UpdatePost(ctx, other.ID, post.ID, UpdatePostInput{Content: &edited})
	assertKind(t, err, pkg.KindForbidden)
	updated, err := svc.UpdatePost(ctx, author.ID, post.ID, UpdatePostInput{Content: &edited, Tags: []string{"Novo"}})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Content != "edited" || len(updated.Tags) != 1 || updated.Tags[0] != "novo" {
		t.Fatalf("updated = %+v", updated)
	}

	assertKind(t, svc.DeletePost(ctx, other.ID, post.ID), pkg.KindForbidden)
	store.EXPECT().Delete(gomock.Any(), "k.png").Return(nil)
	if err := svc.DeletePost(ctx, author.ID, post.ID); err != nil {
		t.Fatal(err)
	}
	_, err = svc.GetPost(ctx, post.ID, 0)
	assertKind(t, err, pkg.KindNotFound)
}
