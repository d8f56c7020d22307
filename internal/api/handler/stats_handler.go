package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/service"
	"github.com/mzaraf/vms/pkg/response"
)

// StatsHandler 访客统计 HTTP 处理器
type StatsHandler struct {
	statsSvc service.StatsService
}

// NewStatsHandler 创建 StatsHandler
func NewStatsHandler(statsSvc service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

// Stats 按周期的访客时间序列
// GET /api/visitors/stats/?period=week|month|year
func (h *StatsHandler) Stats(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}
	var req dto.StatsRequest
	if !bindQuery(c, &req) {
		return
	}

	points, err := h.statsSvc.TimeSeries(c.Request.Context(), req.Period, requester)
	if err != nil {
		h.handleStatsError(c, err)
		return
	}
	response.OK(c, points)
}

// DepartmentStats 按部门的访客数
// GET /api/visitors/department_stats/
func (h *StatsHandler) DepartmentStats(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}

	stats, err := h.statsSvc.DepartmentBreakdown(c.Request.Context(), requester)
	if err != nil {
		h.handleStatsError(c, err)
		return
	}
	response.OK(c, stats)
}

// Summary 访客汇总
// GET /api/visitors/summary/
func (h *StatsHandler) Summary(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}

	summary, err := h.statsSvc.Summary(c.Request.Context(), requester)
	if err != nil {
		h.handleStatsError(c, err)
		return
	}
	response.OK(c, summary)
}

func (h *StatsHandler) handleStatsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPeriod):
		response.BadRequest(c, 15001, err.Error())
	case errors.Is(err, service.ErrStatsUnavailable):
		response.Error(c, http.StatusInternalServerError, 15002, err.Error())
	default:
		response.InternalError(c)
	}
}
