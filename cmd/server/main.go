// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quantum-assistant-go/internal/config"
	"quantum-assistant-go/internal/handler"
	"quantum-assistant-go/internal/middleware"
	"quantum-assistant-go/internal/model"
	"quantum-assistant-go/internal/repository"
	"quantum-assistant-go/internal/service"
	"quantum-assistant-go/pkg/arxiv"
	"quantum-assistant-go/pkg/database"
	"quantum-assistant-go/pkg/kafka"
	"quantum-assistant-go/pkg/llm"
	"quantum-assistant-go/pkg/log"
	"quantum-assistant-go/pkg/serp"
	"quantum-assistant-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与 Kafka 生产者
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	kafka.InitProducer(cfg.Kafka)

	// 建表迁移
	if err := database.DB.AutoMigrate(&model.User{}, &model.SavedPaper{}, &model.QueryRecord{}); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	// 4. 初始化 Repository
	userRepository := repository.NewUserRepository(database.DB)
	paperRepository := repository.NewPaperRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.RDB, cfg.Chat.MaxSessionTurns)

	// 5. 初始化外部客户端
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	arxivClient := arxiv.NewClient(cfg.Arxiv)
	serpClient := serp.NewClient(cfg.Serp)
	llmClient := llm.NewClient(cfg.LLM)

	// 6. 初始化 Service (依赖注入)
	userService := service.NewUserService(userRepository, jwtManager)
	validator := service.NewQueryValidator()
	synthesizer := service.NewResponseSynthesizer(cfg.Chat, llmClient, serpClient.Available())
	chatService := service.NewChatService(validator, arxivClient, serpClient, synthesizer, conversationRepo, cfg.Chat)
	conversationService := service.NewConversationService(conversationRepo)
	paperService := service.NewPaperService(arxivClient, paperRepository, cfg.Chat)
	summaryService := service.NewSummaryService(llmClient)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", handler.NewUserHandler(userService).Register)
			users.POST("/login", handler.NewUserHandler(userService).Login)

			// 需要认证的路由 (仅限登录用户访问)
			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authed.GET("/me", handler.NewUserHandler(userService).GetProfile)
				authed.POST("/logout", handler.NewUserHandler(userService).Logout)
			}
		}

		// Paper 路由组，需要认证
		papers := apiV1.Group("/papers")
		papers.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			paperHandler := handler.NewPaperHandler(paperService, summaryService)
			papers.POST("/search", paperHandler.Search)
			papers.GET("/history", paperHandler.QueryHistory)
			papers.POST("/save", paperHandler.SavePaper)
			papers.GET("", paperHandler.ListSaved)
			papers.DELETE("/:paperId", paperHandler.DeleteSaved)
			papers.POST("/summarize", paperHandler.Summarize)
			papers.POST("/analyze", paperHandler.Analyze)
		}

		// Chat 路由组，需要认证
		chat := apiV1.Group("/chat")
		chat.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			chatHandler := handler.NewChatHandler(chatService, validator)
			conversationHandler := handler.NewConversationHandler(conversationService)
			chat.POST("", chatHandler.Chat)
			chat.GET("/topics", chatHandler.Topics)
			chat.GET("/sessions", conversationHandler.ListSessions)
			chat.GET("/sessions/:sessionId", conversationHandler.GetSession)
			chat.DELETE("/sessions/:sessionId", conversationHandler.DeleteSession)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
