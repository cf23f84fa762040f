// seed 用假数据填充本地库：用户、好友、帖子、评论与点赞
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialhub/config"
	"github.com/d60-Lab/socialhub/internal/cache"
	"github.com/d60-Lab/socialhub/internal/model"
	"github.com/d60-Lab/socialhub/internal/repository"
	"github.com/d60-Lab/socialhub/internal/service"
	"github.com/d60-Lab/socialhub/pkg/database"
	"github.com/d60-Lab/socialhub/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer logger.Sync()
	db := must(database.InitDB(cfg))
	defer database.Close(db)

	users := envInt("USERS", 20)
	postsPerUser := envInt("POSTS", 3)
	friendsPerUser := envInt("FRIENDS", 4)
	faker := gofakeit.New(int64(envInt("SEED", 42)))

	store := repository.NewStore(db)
	authors := cache.NewAuthorCache(store.Users, nil, 0)
	userSvc := service.NewUserService(store, authors, nil)
	friendSvc := service.NewFriendshipService(store)
	postSvc := service.NewPostService(store, authors, cfg.Feed.DefaultPageSize)
	likeSvc := service.NewLikeService(store, postSvc)
	ctx := context.Background()

	t0 := time.Now()
	seeded := make([]*model.User, 0, users)
	for i := 0; i < users; i++ {
		u, err := userSvc.Signup(ctx, faker.Name(), fmt.Sprintf("user%d.%s", i, faker.Email()), "password")
		if err != nil {
			logger.Warn("seed user", zap.Error(err))
			continue
		}
		seeded = append(seeded, u)
	}
	if len(seeded) < 2 {
		logger.Error("not enough users seeded")
		return
	}

	friendships := 0
	for _, u := range seeded {
		for j := 0; j < friendsPerUser; j++ {
			other := seeded[faker.Number(0, len(seeded)-1)]
			if _, err := friendSvc.Add(ctx, u.ID, other.ID); err == nil {
				friendships++
			}
		}
	}

	var postIDs []string
	comments, likes := 0, 0
	for _, u := range seeded {
		for j := 0; j < postsPerUser; j++ {
			p, err := postSvc.CreatePost(ctx, u.ID, faker.Sentence(faker.Number(5, 20)))
			if err != nil {
				logger.Warn("seed post", zap.Error(err))
				continue
			}
			postIDs = append(postIDs, p.ID)
		}
	}
	for _, id := range postIDs {
		for k := faker.Number(0, 3); k > 0; k-- {
			u := seeded[faker.Number(0, len(seeded)-1)]
			c, err := postSvc.AddComment(ctx, id, cache.Author{ID: u.ID, Name: u.Name}, faker.HackerPhrase())
			if err != nil {
				continue
			}
			comments++
			if faker.Bool() {
				if _, err := likeSvc.Toggle(ctx, service.LikeComment, c.ID, seeded[faker.Number(0, len(seeded)-1)].ID); err == nil {
					likes++
				}
			}
		}
		for k := faker.Number(0, 5); k > 0; k-- {
			if _, err := likeSvc.Toggle(ctx, service.LikePost, id, seeded[faker.Number(0, len(seeded)-1)].ID); err == nil {
				likes++
			}
		}
	}

	logger.Info("seed done",
		zap.Int("users", len(seeded)),
		zap.Int("friendships", friendships),
		zap.Int("posts", len(postIDs)),
		zap.Int("comments", comments),
		zap.Int("like_toggles", likes),
		zap.Duration("took", time.Since(t0)),
	)
}
