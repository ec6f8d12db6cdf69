package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"KnocksterSafety/internal/model"
	"KnocksterSafety/internal/service"
	"KnocksterSafety/pkg/errors"
	"KnocksterSafety/pkg/response"
	"KnocksterSafety/utils"
)

// CheckinView 对外暴露的打卡实例视图，只携带 public_id
type CheckinView struct {
	CheckinID     string     `json:"checkin_id"`
	CheckinDate   string     `json:"checkin_date"`
	ScheduledTime string     `json:"scheduled_time"`
	Status        string     `json:"status"`
	SnoozeCount   int        `json:"snooze_count"`
	LastSnoozeAt  *time.Time `json:"last_snooze_at,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
}

func toCheckinView(checkin *model.SafetyCheckin) CheckinView {
	return CheckinView{
		CheckinID:     strconv.FormatInt(checkin.PublicID, 10),
		CheckinDate:   utils.DateString(checkin.CheckinDate),
		ScheduledTime: checkin.ScheduledTime,
		Status:        string(checkin.Status),
		SnoozeCount:   checkin.SnoozeCount,
		LastSnoozeAt:  checkin.LastSnoozeAt,
		RespondedAt:   checkin.RespondedAt,
	}
}

func parseCheckinID(c *app.RequestContext) (int64, error) {
	raw := c.Param("checkin_id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.InvalidCheckinID
	}
	return id, nil
}

// GetCheckin 查询打卡实例状态
// GET /v1/check-ins/:checkin_id
func GetCheckin(ctx context.Context, c *app.RequestContext) {
	id, err := parseCheckinID(c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	checkin, err := service.Checkins().Get(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toCheckinView(checkin))
}

// SnoozeCheckin 用户延后打卡
// POST /v1/check-ins/:checkin_id/snooze
func SnoozeCheckin(ctx context.Context, c *app.RequestContext) {
	id, err := parseCheckinID(c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	if err := service.Checkins().Snooze(ctx, id, time.Now()); err != nil {
		response.Error(ctx, c, err)
		return
	}

	checkin, err := service.Checkins().Get(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toCheckinView(checkin))
}

// RespondCheckin 用户完成打卡
// POST /v1/check-ins/:checkin_id/respond
func RespondCheckin(ctx context.Context, c *app.RequestContext) {
	id, err := parseCheckinID(c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	if err := service.Checkins().Respond(ctx, id, time.Now()); err != nil {
		response.Error(ctx, c, err)
		return
	}

	checkin, err := service.Checkins().Get(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, toCheckinView(checkin))
}
