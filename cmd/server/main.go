// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"campus-info-go/internal/agent"
	"campus-info-go/internal/config"
	"campus-info-go/internal/handler"
	"campus-info-go/internal/middleware"
	"campus-info-go/internal/pipeline"
	"campus-info-go/internal/repository"
	"campus-info-go/internal/scheduler"
	"campus-info-go/internal/service"
	"campus-info-go/internal/store"
	"campus-info-go/pkg/database"
	"campus-info-go/pkg/es"
	"campus-info-go/pkg/kafka"
	"campus-info-go/pkg/log"
	"campus-info-go/pkg/storage"
	"campus-info-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	// 0. .env 中的 CAMPUS_* 变量会覆盖配置文件
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "加载 .env 失败: %v\n", err)
	}

	// 1. 初始化配置
	configPath := "./configs/config.yaml"
	if p := os.Getenv("CAMPUS_CONFIG"); p != "" {
		configPath = p
	}
	config.Init(configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	if cfg.JWT.Secret == "" {
		log.Fatalf("jwt.secret 未配置，请设置 CAMPUS_JWT_SECRET")
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// 3. 初始化存储与 Redis
	recordStore, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatal("存储初始化失败", err)
	}
	defer recordStore.Close()

	var (
		sessions  repository.ChatSessionRepository
		blacklist repository.TokenBlacklist
		memoryBL  *repository.MemoryTokenBlacklist
		rdb       *redis.Client
	)
	if cfg.Chat.SessionBackend == config.SessionBackendRedis {
		rdb, err = database.OpenRedis(rootCtx, cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		if err != nil {
			log.Fatal("Redis 初始化失败", err)
		}
		defer rdb.Close()
		sessions = repository.NewRedisChatSessionRepository(rdb, cfg.Chat.SessionTTL())
		blacklist = repository.NewRedisTokenBlacklist(rdb)
	} else {
		sessions = repository.NewMemoryChatSessionRepository(cfg.Chat.SessionTTL())
		memoryBL = repository.NewMemoryTokenBlacklist()
		blacklist = memoryBL
	}

	// 4. 可选组件：Elasticsearch 检索索引与 MinIO 附件存储
	var (
		indexer  pipeline.FAQIndexer
		searcher service.FAQSearcher
	)
	if cfg.Elasticsearch.Enabled {
		faqIndex, err := es.NewFAQIndex(cfg.Elasticsearch)
		if err != nil {
			log.Fatal("es 初始化失败", err)
		}
		indexer, searcher = faqIndex, faqIndex
	}

	var attachments service.AttachmentService
	if cfg.MinIO.Enabled {
		objects, err := storage.NewMinIO(rootCtx, cfg.MinIO)
		if err != nil {
			log.Fatal("MinIO 初始化失败", err)
		}
		attachments = service.NewAttachmentService(objects, time.Duration(cfg.MinIO.URLExpireMin)*time.Minute)
	}

	// 5. 记录变更管道：启用 Kafka 时异步处理，否则进程内同步处理
	processor := pipeline.NewProcessor(recordStore, indexer)
	var (
		publisher service.ChangePublisher
		consumers sync.WaitGroup
	)
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			kafka.StartConsumer(rootCtx, cfg.Kafka, processor)
		}()
	} else {
		publisher = pipeline.NewDirectPublisher(processor)
	}
	if indexer != nil {
		go func() {
			n, err := processor.Reindex(rootCtx)
			if err != nil {
				log.Errorf("FAQ 索引重建失败: %v", err)
				return
			}
			log.Infof("FAQ 索引重建完成，共 %d 条", n)
		}()
	}

	// 6. 初始化 Service (依赖注入)
	userRepository := repository.NewUserRepository(recordStore)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	resources := service.NewResourceServices(recordStore, publisher)

	var endpoint agent.DataEndpoint = service.NewDataEndpoint(resources)
	if cfg.Chat.Endpoint == config.EndpointHTTP {
		endpoint = agent.NewHTTPEndpoint(cfg.Chat.EndpointBaseURL, cfg.Chat.FetchTimeout())
	}
	chatAgent := agent.New(endpoint, agent.NewExtractor(), cfg.Chat.FetchTimeout())

	services := handler.Services{
		Users:       service.NewUserService(userRepository, blacklist, jwtManager),
		Admin:       service.NewAdminService(userRepository, recordStore, sessions),
		Chat:        service.NewChatService(sessions, chatAgent),
		Search:      service.NewSearchService(searcher, recordStore),
		Attachments: attachments,
		Resources:   resources,
	}

	// 7. 后台定时任务
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	jobs := scheduler.New()
	mustAdd := func(name, spec string, job scheduler.JobFunc) {
		if err := jobs.Add(name, spec, job); err != nil {
			log.Fatalf("注册定时任务 %s 失败: %v", name, err)
		}
	}
	mustAdd("session-sweep", cfg.Chat.SweepSchedule, scheduler.SessionSweep(sessions))
	mustAdd("rate-limiter-sweep", "@every 10m", scheduler.SweepJob("rate-limiter", limiter))
	if memoryBL != nil {
		mustAdd("token-blacklist-sweep", "@every 30m", scheduler.SweepJob("token-blacklist", memoryBL))
	}
	jobs.Start()

	// 8. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(services, handler.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimiter:    limiter,
	})

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s (存储后端: %s, 会话存储: %s)", srv.Addr, cfg.Database.Backend, cfg.Chat.SessionBackend)
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
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}

	jobs.Stop()
	// 取消根 context 后 Kafka 消费者退出循环
	cancelRoot()
	consumers.Wait()
	log.Info("服务已优雅关闭")
}
