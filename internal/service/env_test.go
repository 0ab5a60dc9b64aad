package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"PedagoPass/internal/logging"
	"PedagoPass/internal/model"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/repository/mysql"
	"PedagoPass/internal/repository/mysql/mysqltest"

	"gorm.io/gorm"
)

type testEnv struct {
	db           *gorm.DB
	users        *mysql.UserRepository
	posts        *mysql.PostRepository
	likes        *mysql.PostLikeRepository
	comments     *mysql.CommentRepository
	communities  *mysql.CommunityRepository
	members      *mysql.CommunityMemberRepository
	pointsRepo   *mysql.PointsRepository
	destinations *mysql.DestinationRepository
	points       *PointsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := mysqltest.Open(t)
	e := &testEnv{
		db:           db,
		users:        &mysql.UserRepository{DB: db},
		posts:        &mysql.PostRepository{DB: db},
		likes:        &mysql.PostLikeRepository{DB: db},
		comments:     &mysql.CommentRepository{DB: db},
		communities:  &mysql.CommunityRepository{DB: db},
		members:      &mysql.CommunityMemberRepository{DB: db},
		pointsRepo:   &mysql.PointsRepository{DB: db},
		destinations: &mysql.DestinationRepository{DB: db},
	}
	e.points = NewPointsService(e.pointsRepo, logging.Discard())
	return e
}

func (e *testEnv) userService(notifier Notifier) *UserService {
	tokens := pkg.NewTokenIssuer(pkg.TokenConfig{Secret: []byte("test-secret")})
	return NewUserService(e.users, tokens, notifier, bcrypt.MinCost, logging.Discard())
}

func (e *testEnv) seedUser(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Password: "x", Name: email, Role: model.RoleTeacher}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (e *testEnv) totalPoints(t *testing.T, userID uint64) int64 {
	t.Helper()
	sum, err := e.points.GetUserPoints(context.Background(), userID)
	if err != nil {
		t.Fatalf("get points: %v", err)
	}
	return sum.TotalPoints
}

func assertKind(t *testing.T, err error, want pkg.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", want)
	}
	if got := pkg.KindOf(err); got != want {
		t.Fatalf("error kind = %d (%v), want %d", got, err, want)
	}
}
