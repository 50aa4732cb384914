package handler

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/service"
	"teachload/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportArchives 导出归档记录
// GET /api/v1/export/archives?format=xlsx|csv
func (h *ExportHandler) ExportArchives(c *gin.Context) {
	var req dto.ArchiveListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "查询参数无效")
		return
	}

	format := c.DefaultQuery("format", service.ExportFormatXLSX)

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportArchives(c.Request.Context(), &req, format, callerID, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExportBadFormat):
			response.BadRequest(c, 17001, "不支持的导出格式")
		case errors.Is(err, service.ErrExportNoData):
			response.NotFound(c, 17002, "没有符合条件的归档记录")
		case errors.Is(err, service.ErrArchiveDateInvalid):
			response.BadRequest(c, 16003, "归档查询日期无效")
		default:
			response.InternalError(c)
		}
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == service.ExportFormatCSV {
		contentType = "text/csv; charset=utf-8"
	}

	// RFC 5987：文件名含中文需 URL 编码
	encoded := url.PathEscape(filename)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename*=UTF-8''%s`, encoded))
	c.Data(200, contentType, buf.Bytes())
}

