package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"schedule-visualizer/backend/config"
	"schedule-visualizer/backend/internal/api/handler"
	"schedule-visualizer/backend/internal/api/middleware"
	"schedule-visualizer/backend/internal/api/router"
	"schedule-visualizer/backend/internal/repository"
	"schedule-visualizer/backend/internal/service"
	"schedule-visualizer/backend/pkg/database"
	"schedule-visualizer/backend/pkg/jwt"
	"schedule-visualizer/backend/pkg/kvstore"
	applogger "schedule-visualizer/backend/pkg/logger"
	"schedule-visualizer/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("SCHEDVIZ_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. Redis（存储驱动为 redis 时必需；否则仅用于限流，连接失败时降级）
	var rdb *redis.Client
	if cfg.Storage.Driver == config.StorageRedis || cfg.RateLimit.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			if cfg.Storage.Driver == config.StorageRedis {
				logger.Fatal("Redis 连接失败", zap.Error(err))
			}
			logger.Warn("Redis 连接失败，限流功能将不可用", zap.Error(err))
			rdb = nil
		}
	}

	// 4. 键值存储
	store, db, ping, err := openStore(cfg, rdb, logger)
	if err != nil {
		logger.Fatal("存储初始化失败", zap.Error(err))
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(store, cfg.Storage.KeyPrefix)
	svc := service.NewService(cfg, repo, jwtMgr, logger)
	h := handler.NewHandler(svc, handler.NewHealthHandler(cfg.Storage.Driver, ping))

	// 7. 初始化路由；rdb 为 nil 时传 nil 接口
	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}
	engine := router.Setup(cfg, h, jwtMgr, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if db != nil {
		if err := database.Close(db); err != nil {
			logger.Error("关闭数据库失败", zap.Error(err))
		}
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// openStore 按存储驱动创建键值存储；返回的 db 仅关系库驱动非 nil
func openStore(cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (kvstore.Store, *gorm.DB, handler.PingFunc, error) {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		return kvstore.NewRedis(rdb), nil, rdb.Ping, nil

	case config.StoragePostgres:
		db, err := database.NewPostgres(&cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return nil, nil, nil, err
		}
		return kvstore.NewGorm(db), db, sqlDB.PingContext, nil

	case config.StorageSQLite:
		db, err := database.NewSQLite(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		return kvstore.NewGorm(db), db, sqlDB.PingContext, nil

	default:
		logger.Warn("使用内存存储，重启后数据丢失")
		return kvstore.NewMemory(), nil, nil, nil
	}
}
