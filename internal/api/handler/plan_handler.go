package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/service"
	"teachload/backend/pkg/response"
)

// PlanHandler 教学计划模块 HTTP 处理器
type PlanHandler struct {
	planSvc       service.PlanService
	submissionSvc service.SubmissionService
}

// NewPlanHandler 创建 PlanHandler
func NewPlanHandler(planSvc service.PlanService, submissionSvc service.SubmissionService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc, submissionSvc: submissionSvc}
}

// CreatePlan 创建教学计划（草稿）
// POST /api/v1/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	professorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	plan, err := h.planSvc.Create(c.Request.Context(), &req, professorID)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.Created(c, plan)
}

// ListMyPlans 获取本人教学计划列表
// GET /api/v1/plans/my
func (h *PlanHandler) ListMyPlans(c *gin.Context) {
	professorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	plans, err := h.planSvc.ListMine(c.Request.Context(), professorID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": plans})
}

// GetPlan 获取教学计划详情
// GET /api/v1/plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	plan, err := h.planSvc.GetByID(c.Request.Context(), id, callerID, role)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, plan)
}

// UpdatePlan 更新教学计划（仅本人草稿）
// PUT /api/v1/plans/:id
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	var req dto.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	professorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	plan, err := h.planSvc.Update(c.Request.Context(), id, &req, professorID)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, plan)
}

// DeletePlan 删除教学计划（仅本人草稿）
// DELETE /api/v1/plans/:id
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	professorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.planSvc.Delete(c.Request.Context(), id, professorID); err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, nil)
}

// SubmitPlan 向当前活动阶段提交教学计划
// POST /api/v1/plans/:id/submit
func (h *PlanHandler) SubmitPlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	professorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionSvc.RecordSubmission(c.Request.Context(), id, professorID)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, submission)
}

// ApprovePlan 批准教学计划
// POST /api/v1/plans/:id/approve
func (h *PlanHandler) ApprovePlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	plan, err := h.planSvc.Approve(c.Request.Context(), id, callerID)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, plan)
}

// RejectPlan 驳回教学计划
// POST /api/v1/plans/:id/reject
func (h *PlanHandler) RejectPlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "计划ID不能为空")
		return
	}

	var req dto.RejectPlanRequest
	// 驳回原因可省略
	_ = c.ShouldBindJSON(&req)

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	plan, err := h.planSvc.Reject(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handlePlanError(c, err)
		return
	}

	response.OK(c, plan)
}

func (h *PlanHandler) handlePlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		response.NotFound(c, 15001, "教学计划不存在")
	case errors.Is(err, service.ErrPlanNotOwned):
		response.Forbidden(c, 15002, "只能操作本人的教学计划")
	case errors.Is(err, service.ErrPlanNotEditable):
		response.BadRequest(c, 15003, "仅草稿状态的教学计划可以修改")
	case errors.Is(err, service.ErrPlanNotSubmitted):
		response.BadRequest(c, 15004, "仅已提交的教学计划可以审定")
	case errors.Is(err, service.ErrNoActivePhase):
		response.BadRequest(c, 15005, "当前没有活动的规划阶段")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 13001, "学期不存在")
	default:
		response.InternalError(c)
	}
}

