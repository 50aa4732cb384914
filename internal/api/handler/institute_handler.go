package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/service"
	"teachload/backend/pkg/response"
)

// InstituteHandler 研究所模块 HTTP 处理器
type InstituteHandler struct {
	instituteSvc service.InstituteService
}

// NewInstituteHandler 创建 InstituteHandler
func NewInstituteHandler(instituteSvc service.InstituteService) *InstituteHandler {
	return &InstituteHandler{instituteSvc: instituteSvc}
}

// ListInstitutes 获取研究所列表
// GET /api/v1/institutes
func (h *InstituteHandler) ListInstitutes(c *gin.Context) {
	institutes, err := h.instituteSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": institutes})
}

// GetInstitute 获取研究所详情
// GET /api/v1/institutes/:id
func (h *InstituteHandler) GetInstitute(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "研究所ID不能为空")
		return
	}

	institute, err := h.instituteSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleInstituteError(c, err)
		return
	}

	response.OK(c, institute)
}

// CreateInstitute 创建研究所
// POST /api/v1/institutes
func (h *InstituteHandler) CreateInstitute(c *gin.Context) {
	var req dto.CreateInstituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	institute, err := h.instituteSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleInstituteError(c, err)
		return
	}

	response.Created(c, institute)
}

// UpdateInstitute 更新研究所
// PUT /api/v1/institutes/:id
func (h *InstituteHandler) UpdateInstitute(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "研究所ID不能为空")
		return
	}

	var req dto.UpdateInstituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	institute, err := h.instituteSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleInstituteError(c, err)
		return
	}

	response.OK(c, institute)
}

// DeleteInstitute 删除研究所（软删除）
// DELETE /api/v1/institutes/:id
func (h *InstituteHandler) DeleteInstitute(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "研究所ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.instituteSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleInstituteError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *InstituteHandler) handleInstituteError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInstituteNotFound) {
		response.NotFound(c, 12001, "研究所不存在")
		return
	}
	response.InternalError(c)
}

