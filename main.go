package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mongoutil "MChat/data/database/mgo/mongoutil"
	"MChat/global"
	"MChat/logger"
	mid "MChat/middleware"
	chatmod "MChat/module/chat"
	chatsvc "MChat/module/chat/service"
	usermod "MChat/module/user"
	usersvc "MChat/module/user/service"
	chatws "MChat/service/chat"
	"MChat/service/mgo"
	"MChat/service/notify"
	"MChat/service/oss"
	"MChat/service/storage"
	redisc "MChat/service/storage/redis"
)

func main() {
	cfg := global.Init()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := mgo.Init(ctx, &mongoutil.Config{
		Uri:         cfg.MongoURI,
		Database:    cfg.MongoDatabase,
		MaxPoolSize: cfg.MongoPoolSize,
	}); err != nil {
		logger.Log.Fatal("mongo init failed", zap.Error(err))
	}

	if err := redisc.InitRedis(redisc.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); err != nil {
		logger.Log.Fatal("redis init failed", zap.Error(err))
	}

	tokens := storage.NewTokenStore()
	users := usersvc.NewUserService(cfg.JWTSecret, cfg.TokenTTL, tokens)
	chats := chatsvc.NewChatService()
	if err := chats.EnsureIndexes(ctx); err != nil {
		logger.Warnf("chat index create failed: %v", err)
	}

	rt := chatws.NewServer(cfg, chats, users, notify.NewLogSender())
	uploader := oss.NewHTTPUploader(cfg.CDNEndpoint, cfg.CDNAPIKey)

	mid.Setup(users)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/chat", rt.HandleWS) // e.g. ws://host/chat?token=...

	userH := usermod.NewHandler(users)
	mid.POST(r, "/register", userH.Register, mid.RouteOpt{IsAuth: false})
	mid.POST(r, "/login", userH.Login, mid.RouteOpt{IsAuth: false})
	mid.POST(r, "/logout", userH.Logout, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/me", userH.Me, mid.RouteOpt{IsAuth: true})

	chatH := chatmod.NewHandler(chats, uploader, rt)
	mid.GET(r, "/chats", chatH.ListChats, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/chats/direct", chatH.CreateDirect, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/chats/group", chatH.CreateGroup, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/chats/:chatId/messages", chatH.GetMessages, mid.RouteOpt{IsAuth: true})
	mid.POST(r, "/chats/:chatId/messages", chatH.SendMessage, mid.RouteOpt{IsAuth: true})

	logger.Infof("[HTTP] listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Log.Fatal("http server failed", zap.Error(err))
	}
}
