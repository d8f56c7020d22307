package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/service"
	"github.com/mzaraf/vms/pkg/response"
)

// DepartmentHandler 部门管理 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// List 部门列表（含访客数）
// GET /api/departments/
func (h *DepartmentHandler) List(c *gin.Context) {
	depts, err := h.deptSvc.List(c.Request.Context())
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}
	response.OK(c, depts)
}

// Create 创建部门
// POST /api/departments/
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	dept, err := h.deptSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}
	response.Created(c, dept)
}

// Get 部门详情
// GET /api/departments/:id/
func (h *DepartmentHandler) Get(c *gin.Context) {
	dept, err := h.deptSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}
	response.OK(c, dept)
}

// Update 修改部门
// PUT /api/departments/:id/
func (h *DepartmentHandler) Update(c *gin.Context) {
	var req dto.UpdateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	dept, err := h.deptSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}
	response.OK(c, dept)
}

// Delete 删除部门
// DELETE /api/departments/:id/
func (h *DepartmentHandler) Delete(c *gin.Context) {
	if err := h.deptSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleDepartmentError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *DepartmentHandler) handleDepartmentError(c *gin.Context, err error) {
	if respondValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13001, err.Error())
	default:
		response.InternalError(c)
	}
}
