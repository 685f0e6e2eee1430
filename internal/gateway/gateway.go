package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	hzServer "github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	hertzprom "github.com/hertz-contrib/monitor-prometheus"

	"github.com/heraldbot/herald/internal/channel"
	"github.com/heraldbot/herald/internal/channel/lark"
	"github.com/heraldbot/herald/internal/channel/telegram"
	"github.com/heraldbot/herald/internal/config"
	"github.com/heraldbot/herald/internal/pkg/logs"
	"github.com/heraldbot/herald/internal/pkg/prometheus"
)

// Gateway owns the HTTP surface and the lifecycle of the configured
// channel adapters. It builds one adapter per enabled channel at start
// and routes action requests to them by channel id.
type Gateway struct {
	httpServer *hzServer.Hertz

	runCtx    context.Context
	runCancel context.CancelFunc

	stopOnce sync.Once
	stopErr  error
}

func NewGateway(cfg config.GatewayConfig) *Gateway {
	bind := cfg.Bind
	if bind == "" {
		bind = "0.0.0.0:8080"
	}

	metricsBind := cfg.MetricsBind
	if metricsBind == "" {
		metricsBind = "0.0.0.0:9091"
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	hlog.SetLogger(logs.NewHlogLogger(logs.DefaultLogger()))

	hzSvr := hzServer.Default(
		hzServer.WithHostPorts(bind),
		hzServer.WithReadTimeout(timeout),
		hzServer.WithWriteTimeout(timeout),
		hzServer.WithExitWaitTime(5*time.Second),
		hzServer.WithTracer(hertzprom.NewServerTracer(
			metricsBind, "/metrics",
			hertzprom.WithRegistry(prometheus.GetRegistry()),
			hertzprom.WithEnableGoCollector(true),
		)),
	)

	return &Gateway{httpServer: hzSvr}
}

func (gw *Gateway) Start(ctx context.Context) error {
	gw.runCtx, gw.runCancel = context.WithCancel(ctx)

	cfg, err := config.Get()
	if err != nil {
		return err
	}

	if err := gw.initHTTPServer(gw.runCtx, cfg.Gateway); err != nil {
		return fmt.Errorf("init http server: %w", err)
	}
	if err := gw.initChannels(gw.runCtx, cfg.Channels); err != nil {
		return fmt.Errorf("init channels: %w", err)
	}

	go gw.httpServer.Spin()

	return nil
}

func (gw *Gateway) Stop(ctx context.Context) error {
	gw.stopOnce.Do(func() {
		if gw.runCancel != nil {
			gw.runCancel()
		}

		for _, ch := range channel.List() {
			if err := ch.Close(ctx); err != nil {
				logs.CtxWarn(ctx, "[gateway] close channel %s error: %v", ch.ID(), err)
			}
			channel.Unregister(ch.ID())
		}

		if err := gw.httpServer.Shutdown(ctx); err != nil {
			logs.CtxWarn(ctx, "[gateway] shutdown http server error: %v", err)
		}

		logs.CtxInfo(ctx, "[gateway] all resources stopped")
	})
	return gw.stopErr
}

func (gw *Gateway) initHTTPServer(_ context.Context, cfg config.GatewayConfig) error {
	gw.httpServer.GET("/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := gw.httpServer.Group("/api/v1", bearerAuth(cfg.APIKey))
	api.GET("/channels", gw.handleListChannels)
	api.GET("/channels/:channelId/actions", gw.handleListActions)
	api.GET("/channels/:channelId/buttons", gw.handleButtons)
	api.POST("/channels/:channelId/actions/:action", gw.handleDispatch)

	return nil
}

func (gw *Gateway) initChannels(ctx context.Context, channels map[string]config.ChannelConfig) error {
	for id, cfg := range channels {
		cfg.ID = id
		if !cfg.Enabled {
			logs.CtxInfo(ctx, "[gateway] channel #%s is disabled, skipping", id)
			continue
		}

		ch, err := newChannel(id, cfg)
		if err != nil {
			logs.CtxError(ctx, "[gateway] create channel #%s error: %v", id, err)
			return fmt.Errorf("create channel %s: %w", id, err)
		}

		if err = channel.Register(ch); err != nil {
			return fmt.Errorf("register channel %s: %w", id, err)
		}

		logs.CtxInfo(ctx, "[gateway] channel #%s (%s) ready, actions: %v", id, ch.Type(), ch.ListActions())
	}
	return nil
}

func newChannel(id string, cfg config.ChannelConfig) (channel.Actions, error) {
	switch channel.Type(strings.ToLower(strings.TrimSpace(cfg.Type))) {
	case channel.Telegram:
		return telegram.NewChannel(id, &cfg)
	case channel.Lark:
		return lark.NewChannel(id, &cfg)
	default:
		return nil, fmt.Errorf("unsupported channel type: %s", cfg.Type)
	}
}
