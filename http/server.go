// Package http 提供风险评分页面的HTTP服务器
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"riskengine/config"
	"riskengine/monitoring"
	"riskengine/risk"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
	live   *LiveHandler
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int
	Timeout     time.Duration
	MaxBodySize int64
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:        8501,
		Timeout:     30 * time.Second,
		MaxBodySize: 64 << 10,
	}
}

// ServerConfigFrom 由应用配置生成服务器配置
func ServerConfigFrom(cfg config.HTTPConfig) ServerConfig {
	sc := DefaultServerConfig()
	if cfg.Port > 0 {
		sc.Port = cfg.Port
	}
	if cfg.Timeout > 0 {
		sc.Timeout = cfg.Timeout
	}
	if cfg.MaxBodySize > 0 {
		sc.MaxBodySize = cfg.MaxBodySize
	}
	return sc
}

// Deps 处理器依赖
type Deps struct {
	Assessor  *risk.Assessor
	Formatter *risk.Formatter
	Defaults  risk.Settings
	Metrics   *monitoring.MetricsCollector
	Logger    *zap.Logger
}

// NewServer 创建HTTP服务器
func NewServer(config ServerConfig, deps Deps) (*Server, error) {
	if deps.Assessor == nil {
		return nil, errors.New("assessor is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Formatter == nil {
		deps.Formatter = risk.NewFormatter("en")
	}
	if deps.Metrics == nil {
		deps.Metrics = monitoring.NewMetricsCollector()
	}

	pages, err := newPageRenderer()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerPageHandlers(mux, deps, pages)
	RegisterAPIHandlers(mux, deps)
	live := NewLiveHandler(deps, pages)
	mux.Handle("GET /ws", live)

	// 创建中间件链
	chain := Chain(
		RecoveryMiddleware(deps.Logger),             // 1. 恢复中间件（最先执行，捕获panic）
		LoggerMiddleware(deps.Logger, deps.Metrics), // 2. 日志中间件
		SecurityHeadersMiddleware,                   // 3. 安全头中间件
		RequestSizeMiddleware(config.MaxBodySize),   // 4. 请求大小限制
	)

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           chain(mux),
			ReadHeaderTimeout: config.Timeout,
			ReadTimeout:       config.Timeout,
			WriteTimeout:      config.Timeout,
			IdleTimeout:       120 * time.Second,
		},
		config: config,
		logger: deps.Logger,
		live:   live,
	}, nil
}

// Handler 返回完整的处理器链，供测试使用
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.String("page", fmt.Sprintf("http://localhost%s/", s.server.Addr)))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	s.live.CloseAll()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
