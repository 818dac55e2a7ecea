package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Youngger9765/duotopia-sub006/docs"
	"github.com/Youngger9765/duotopia-sub006/internal/app/api/handlers"
	mw "github.com/Youngger9765/duotopia-sub006/internal/app/api/middleware"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/billing"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/orgpoints"
	subsvc "github.com/Youngger9765/duotopia-sub006/internal/app/service/subscription"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/usage"
	cfgpkg "github.com/Youngger9765/duotopia-sub006/pkg/config"
	metrics "github.com/Youngger9765/duotopia-sub006/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(r *gin.Engine, log *zap.SugaredLogger, cfg *cfgpkg.Config, bill *billing.Service, subs *subsvc.Service, op *orgpoints.Service, usg *usage.Service) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}
	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metering and read APIs, called service-to-service by the feature backends
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterBillingRoutes(apiV1, bill)
	handlers.RegisterQuotaRoutes(apiV1, usg)

	// Admin APIs: subscription lifecycle and organization point grants
	admin := apiV1.Group("/admin")
	admin.Use(mw.AdminAuth(cfg.Admin.JWTSecret))
	handlers.RegisterAdminRoutes(admin, subs, op, usg)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
