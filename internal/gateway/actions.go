package gateway

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/heraldbot/herald/internal/channel"
	"github.com/heraldbot/herald/internal/params"
	"github.com/heraldbot/herald/internal/pkg/logs"
)

// channelInfo is the listing shape for one registered channel.
type channelInfo struct {
	ID              string               `json:"id"`
	Type            channel.Type         `json:"type"`
	Actions         []channel.ActionKind `json:"actions"`
	SupportsButtons bool                 `json:"supportsButtons"`
}

// bearerAuth guards the API group with a static bearer token. An empty
// key disables the check.
func bearerAuth(apiKey string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if apiKey != "" {
			auth := string(c.GetHeader("Authorization"))
			if auth != "Bearer "+apiKey {
				c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "unauthorized"})
				return
			}
		}
		c.Next(ctx)
	}
}

func (gw *Gateway) handleListChannels(_ context.Context, c *app.RequestContext) {
	chans := channel.List()

	infos := make([]channelInfo, 0, len(chans))
	for _, ch := range chans {
		infos = append(infos, channelInfo{
			ID:              ch.ID(),
			Type:            ch.Type(),
			Actions:         ch.ListActions(),
			SupportsButtons: ch.SupportsButtons(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	c.JSON(consts.StatusOK, utils.H{"channels": infos})
}

// handleListActions reports the usable action kinds for one channel. An
// unknown channel id lists as empty rather than failing, the same shape a
// configured channel with zero accounts produces.
func (gw *Gateway) handleListActions(_ context.Context, c *app.RequestContext) {
	id := c.Param("channelId")

	kinds := make([]channel.ActionKind, 0, 8)
	if ch, err := channel.Get(id); err == nil {
		kinds = append(kinds, ch.ListActions()...)
	}

	c.JSON(consts.StatusOK, utils.H{"channelId": id, "actions": kinds})
}

func (gw *Gateway) handleButtons(_ context.Context, c *app.RequestContext) {
	id := c.Param("channelId")

	supported := false
	if ch, err := channel.Get(id); err == nil {
		supported = ch.SupportsButtons()
	}

	c.JSON(consts.StatusOK, utils.H{"channelId": id, "supportsButtons": supported})
}

// handleDispatch runs one channel action. The request body is the raw
// parameter bag, the action kind and channel come from the path, and the
// optional accountId query pins the executing account.
func (gw *Gateway) handleDispatch(ctx context.Context, c *app.RequestContext) {
	chanID := c.Param("channelId")
	kind := channel.ActionKind(c.Param("action"))

	ch, err := channel.Get(chanID)
	if err != nil {
		c.JSON(consts.StatusNotFound, utils.H{"error": err.Error()})
		return
	}

	bag := params.Bag{}
	if body := c.Request.Body(); len(body) > 0 {
		if err := sonic.Unmarshal(body, &bag); err != nil {
			c.JSON(consts.StatusBadRequest, utils.H{"error": "request body must be a JSON object"})
			return
		}
	}

	opts := &channel.DispatchOpts{AccountID: c.Query("accountId")}

	start := time.Now()
	res, err := ch.HandleAction(ctx, kind, bag, opts)
	observeDispatch(chanID, kind, time.Since(start), err)
	if err != nil {
		logs.CtxWarn(ctx, "[gateway] %s on channel %s failed: %v", kind, chanID, err)
		c.JSON(statusForDispatchError(err), utils.H{"error": err.Error()})
		return
	}

	if res == nil {
		res = &channel.ActionResult{}
	}
	c.JSON(consts.StatusOK, utils.H{"channelId": chanID, "action": kind, "result": res})
}

// statusForDispatchError maps a dispatch failure onto an HTTP status.
// Parameter violations, unsupported kinds and account problems are the
// caller's fault; anything else failed on the provider side.
func statusForDispatchError(err error) int {
	switch {
	case errors.Is(err, params.ErrInvalid),
		errors.Is(err, channel.ErrUnsupportedAction),
		errors.Is(err, channel.ErrNoAccounts):
		return consts.StatusBadRequest
	default:
		return consts.StatusBadGateway
	}
}
