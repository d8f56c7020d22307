package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/service"
	"github.com/mzaraf/vms/pkg/response"
)

const (
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	calendarContentType = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc}
}

// ExportVisitors 导出访客列表（过滤条件同列表接口）
// GET /api/visitors/export/?status=&search=
func (h *ExportHandler) ExportVisitors(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}
	var req dto.VisitorListRequest
	if !bindQuery(c, &req) {
		return
	}

	buf, filename, err := h.exportSvc.ExportVisitors(c.Request.Context(), &req, requester)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Calendar 即将到访访客的日历订阅
// GET /api/visitors/calendar.ics?days=30
func (h *ExportHandler) Calendar(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}
	var req dto.CalendarRequest
	if !bindQuery(c, &req) {
		return
	}

	ics, err := h.calendarSvc.UpcomingVisits(c.Request.Context(), req.Days, requester)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="visitors.ics"`)
	c.Data(http.StatusOK, calendarContentType, []byte(ics))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 16001, err.Error())
	default:
		response.InternalError(c)
	}
}
