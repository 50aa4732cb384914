package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/service"
	"teachload/backend/pkg/response"
)

// PhaseHandler 规划阶段模块 HTTP 处理器
type PhaseHandler struct {
	phaseSvc      service.PhaseService
	submissionSvc service.SubmissionService
	reminderSvc   service.ReminderService
}

// NewPhaseHandler 创建 PhaseHandler
func NewPhaseHandler(
	phaseSvc service.PhaseService,
	submissionSvc service.SubmissionService,
	reminderSvc service.ReminderService,
) *PhaseHandler {
	return &PhaseHandler{
		phaseSvc:      phaseSvc,
		submissionSvc: submissionSvc,
		reminderSvc:   reminderSvc,
	}
}

// StartPhase 启动规划阶段（同学期已有活动阶段时隐式关闭旧阶段）
// POST /api/v1/phases
func (h *PhaseHandler) StartPhase(c *gin.Context) {
	var req dto.StartPhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	phase, err := h.phaseSvc.StartPhase(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePhaseError(c, err)
		return
	}

	response.Created(c, phase)
}

// ClosePhase 关闭规划阶段（归档所有已处理计划，按标志处置草稿）
// POST /api/v1/phases/:id/close
func (h *PhaseHandler) ClosePhase(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "阶段ID不能为空")
		return
	}

	var req dto.ClosePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14005, "archive_drafts 为必填项")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.phaseSvc.ClosePhase(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handlePhaseError(c, err)
		return
	}

	response.OK(c, result)
}

// ListPhases 获取阶段列表（最新在前）
// GET /api/v1/phases
func (h *PhaseHandler) ListPhases(c *gin.Context) {
	phases, err := h.phaseSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": phases})
}

// GetPhase 获取阶段详情
// GET /api/v1/phases/:id
func (h *PhaseHandler) GetPhase(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "阶段ID不能为空")
		return
	}

	phase, err := h.phaseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handlePhaseError(c, err)
		return
	}

	response.OK(c, phase)
}

// UpdatePhase 修改阶段元数据（名称/截止日期）
// PUT /api/v1/phases/:id
func (h *PhaseHandler) UpdatePhase(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "阶段ID不能为空")
		return
	}

	var req dto.UpdatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	phase, err := h.phaseSvc.UpdateMeta(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handlePhaseError(c, err)
		return
	}

	response.OK(c, phase)
}

// CheckSubmissionStatus 检查当前用户的提交资格
// GET /api/v1/phases/current/submission-status
func (h *PhaseHandler) CheckSubmissionStatus(c *gin.Context) {
	professorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	status, err := h.phaseSvc.CheckSubmissionStatus(c.Request.Context(), professorID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, status)
}

// ListPhaseSubmissions 获取阶段提交记录列表
// GET /api/v1/phases/:id/submissions
func (h *PhaseHandler) ListPhaseSubmissions(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "阶段ID不能为空")
		return
	}

	submissions, err := h.submissionSvc.GetPhaseSubmissions(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": submissions})
}

// SendReminders 向未提交教授发送催交提醒
// POST /api/v1/phases/:id/reminders
func (h *PhaseHandler) SendReminders(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "阶段ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reminderSvc.SendReminders(c.Request.Context(), id, callerID)
	if err != nil {
		h.handlePhaseError(c, err)
		return
	}

	response.OK(c, result)
}

// ListReminders 查看阶段催交记录
// GET /api/v1/phases/:id/reminders
func (h *PhaseHandler) ListReminders(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "阶段ID不能为空")
		return
	}

	logs, err := h.reminderSvc.ListReminders(c.Request.Context(), id)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": logs})
}

func (h *PhaseHandler) handlePhaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPhaseNotFound):
		response.NotFound(c, 14001, "规划阶段不存在")
	case errors.Is(err, service.ErrPhaseAlreadyClosed):
		response.BadRequest(c, 14002, "规划阶段已关闭")
	case errors.Is(err, service.ErrPhaseDateInvalid):
		response.BadRequest(c, 14003, "阶段日期无效")
	case errors.Is(err, service.ErrPhaseNotActive):
		response.BadRequest(c, 14004, "规划阶段已关闭，无法催交")
	case errors.Is(err, service.ErrArchiveDraftsRequired):
		response.BadRequest(c, 14005, "archive_drafts 为必填项")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 13001, "学期不存在")
	default:
		response.InternalError(c)
	}
}

