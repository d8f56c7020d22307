package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/service"
	"github.com/mzaraf/vms/pkg/response"
)

// VisitorHandler 访客登记与生命周期 HTTP 处理器
type VisitorHandler struct {
	visitorSvc service.VisitorService
}

// NewVisitorHandler 创建 VisitorHandler
func NewVisitorHandler(visitorSvc service.VisitorService) *VisitorHandler {
	return &VisitorHandler{visitorSvc: visitorSvc}
}

// List 访客列表，可按状态过滤、按姓名 / 邮箱 / 部门名搜索
// GET /api/visitors/?status=&search=
func (h *VisitorHandler) List(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}
	var req dto.VisitorListRequest
	if !bindQuery(c, &req) {
		return
	}

	visitors, err := h.visitorSvc.List(c.Request.Context(), &req, requester)
	if err != nil {
		h.handleVisitorError(c, err)
		return
	}
	response.OK(c, visitors)
}

// Create 登记访客
// POST /api/visitors/
func (h *VisitorHandler) Create(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}
	var req dto.CreateVisitorRequest
	if !bindJSON(c, &req) {
		return
	}

	visitor, err := h.visitorSvc.Create(c.Request.Context(), &req, requester)
	if err != nil {
		h.handleVisitorError(c, err)
		return
	}
	response.Created(c, visitor)
}

// Get 访客详情
// GET /api/visitors/:id/
func (h *VisitorHandler) Get(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}

	visitor, err := h.visitorSvc.Get(c.Request.Context(), c.Param("id"), requester)
	if err != nil {
		h.handleVisitorError(c, err)
		return
	}
	response.OK(c, visitor)
}

// Update 编辑访客描述性字段
// PUT /api/visitors/:id/
func (h *VisitorHandler) Update(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}
	var req dto.UpdateVisitorRequest
	if !bindJSON(c, &req) {
		return
	}

	visitor, err := h.visitorSvc.Update(c.Request.Context(), c.Param("id"), &req, requester)
	if err != nil {
		h.handleVisitorError(c, err)
		return
	}
	response.OK(c, visitor)
}

// Delete 删除访客
// DELETE /api/visitors/:id/
func (h *VisitorHandler) Delete(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}

	if err := h.visitorSvc.Delete(c.Request.Context(), c.Param("id"), requester); err != nil {
		h.handleVisitorError(c, err)
		return
	}
	response.OK(c, nil)
}

// CheckIn 签到：pre-registered → checked-in
// POST /api/visitors/:id/check_in/
func (h *VisitorHandler) CheckIn(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}

	visitor, err := h.visitorSvc.CheckIn(c.Request.Context(), c.Param("id"), requester)
	if err != nil {
		h.handleVisitorError(c, err)
		return
	}
	response.OK(c, visitor)
}

// CheckOut 签离：checked-in → checked-out
// POST /api/visitors/:id/check_out/
func (h *VisitorHandler) CheckOut(c *gin.Context) {
	requester, ok := MustGetRequester(c)
	if !ok {
		return
	}

	visitor, err := h.visitorSvc.CheckOut(c.Request.Context(), c.Param("id"), requester)
	if err != nil {
		h.handleVisitorError(c, err)
		return
	}
	response.OK(c, visitor)
}

func (h *VisitorHandler) handleVisitorError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrVisitorNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrNotPreRegistered):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, service.ErrNotCheckedIn):
		response.BadRequest(c, 14003, err.Error())
	default:
		response.InternalError(c)
	}
}
