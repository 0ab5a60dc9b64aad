package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"PedagoPass/internal/config"
	"PedagoPass/internal/handler"
	"PedagoPass/internal/logging"
	"PedagoPass/internal/pkg"
	"PedagoPass/internal/repository/mysql"
	"PedagoPass/internal/repository/redis"
	"PedagoPass/internal/router"
	"PedagoPass/internal/service"
	"PedagoPass/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.Env)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLevel := logger.Warn
	if cfg.IsProduction() {
		gormLevel = logger.Error
	}
	db, err := mysql.Open(cfg.DBDriver, cfg.DBDSN, gormLevel)
	if err != nil {
		return err
	}
	// 自动建表
	if err := mysql.AutoMigrate(db); err != nil {
		return err
	}

	users := &mysql.UserRepository{DB: db}
	posts := &mysql.PostRepository{DB: db}
	likes := &mysql.PostLikeRepository{DB: db}
	comments := &mysql.CommentRepository{DB: db}
	communities := &mysql.CommunityRepository{DB: db}
	members := &mysql.CommunityMemberRepository{DB: db}
	pointsRepo := &mysql.PointsRepository{DB: db}
	outbox := &mysql.OutboxRepository{DB: db}
	reconcile := &mysql.CounterReconcilerRepo{DB: db}
	destinations := &mysql.DestinationRepository{DB: db}
	suggestions := &mysql.SuggestionRepository{DB: db}

	// redis 可选，未配置时点赞直接读库
	var likeCache service.LikeCache
	var likeLock service.Locker
	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		likeCache = redis.NewLikeCacheRepository(rdb)
		likeLock = &redis.DistLock{RDB: rdb, TTL: redis.LockTTL}
		log.Info("like cache enabled", "addr", cfg.RedisAddr)
	}

	var publisher service.EventPublisher = service.LogPublisher{Log: log}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := pkg.NewActivityProducer(pkg.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			return err
		}
		defer producer.Close()
		publisher = service.NewKafkaPublisher(producer)
		log.Info("activity events go to kafka", "topic", cfg.KafkaTopic)
	}

	var notifier service.Notifier
	smtp := pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
	if smtp.Enabled() {
		notifier = service.NewEmailNotifier(smtp)
	}

	var store service.MediaStore
	uploadDir := ""
	switch cfg.StorageDriver {
	case "gcs":
		gcs, err := storage.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			return err
		}
		defer gcs.Close()
		store = gcs
	case "none":
	default:
		local, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicMediaURL)
		if err != nil {
			return err
		}
		store = local
		uploadDir = local.Dir()
	}

	tokens := pkg.NewTokenIssuer(pkg.TokenConfig{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL})
	pointsSvc := service.NewPointsService(pointsRepo, log)
	userSvc := service.NewUserService(users, tokens, notifier, cfg.BcryptCost, log)
	likeSvc := service.NewPostLikeService(likes, likeCache, likeLock, pointsSvc, log)
	postSvc := service.NewPostService(service.PostServiceDeps{
		Posts:        posts,
		Communities:  communities,
		Members:      members,
		Destinations: destinations,
		Likes:        likeSvc,
		Store:        store,
		Points:       pointsSvc,
		Log:          log,
	})
	commentSvc := service.NewCommentService(comments, posts, pointsSvc, log)
	communitySvc := service.NewCommunityService(communities, members, pointsSvc, log)
	destinationSvc := service.NewDestinationService(destinations)
	suggestionSvc := service.NewSuggestionService(suggestions)

	prod := cfg.IsProduction()
	r, err := router.InitRouter(router.Handlers{
		Auth:        handler.NewAuthHandler(userSvc, log, prod),
		User:        handler.NewUserHandler(userSvc, pointsSvc, log, prod),
		Post:        handler.NewPostHandler(postSvc, log, prod),
		Like:        handler.NewPostLikeHandler(likeSvc, log, prod),
		Comment:     handler.NewCommentHandler(commentSvc, log, prod),
		Community:   handler.NewCommunityHandler(communitySvc, log, prod),
		Destination: handler.NewDestinationHandler(destinationSvc, suggestionSvc, log, prod),
	}, router.Options{
		Log:                log,
		Validator:          userSvc,
		CORSOrigins:        cfg.CORSOrigins,
		TrustedProxies:     cfg.TrustedProxies,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
		UploadDir:          uploadDir,
	})
	if err != nil {
		return err
	}

	// 后台任务：积分事件投递与计数对账
	go service.NewOutboxRelayer(outbox, publisher, log).Run(ctx)
	go service.NewCounterReconciler(reconcile, likeCache, log).Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
