package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
	"teachload/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("没有符合条件的归档记录")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// 归档导出格式
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

var ErrExportBadFormat = errors.New("不支持的导出格式")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response。
// 查询谓词与归档列表接口共用同一套过滤构建逻辑，保证所见即所得。
type ExportService interface {
	ExportArchives(ctx context.Context, req *dto.ArchiveListRequest, format, callerID, callerRole string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var exportHeader = []string{
	"归档编号", "原计划编号", "阶段", "教授", "学期",
	"归档时状态", "归档原因", "总学时", "模块数", "归档时间",
}

// ExportArchives 按查询条件导出归档记录
func (s *exportService) ExportArchives(ctx context.Context, req *dto.ArchiveListRequest, format, callerID, callerRole string) (*bytes.Buffer, string, error) {
	if format != ExportFormatXLSX && format != ExportFormatCSV {
		return nil, "", ErrExportBadFormat
	}

	filter, err := buildArchiveFilter(req, callerID, callerRole)
	if err != nil {
		return nil, "", err
	}
	// 导出不分页，取全量
	filter.Offset = 0
	filter.Limit = 0

	archives, err := s.repo.Archive.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询归档记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(archives) == 0 {
		return nil, "", ErrExportNoData
	}

	rows := make([][]string, 0, len(archives))
	for i := range archives {
		rows = append(rows, exportRow(&archives[i]))
	}

	timestamp := time.Now().Format("20060102_150405")
	switch format {
	case ExportFormatCSV:
		buf, err := s.writeCSV(rows)
		if err != nil {
			return nil, "", err
		}
		return buf, fmt.Sprintf("归档记录_%s.csv", timestamp), nil
	default:
		buf, err := s.writeXLSX(rows)
		if err != nil {
			return nil, "", err
		}
		return buf, fmt.Sprintf("归档记录_%s.xlsx", timestamp), nil
	}
}

// ── 内部辅助方法 ──

// exportRow 展开一条归档记录；快照解析失败时负荷列留空，不中断导出
func exportRow(archive *model.ArchivedPlanning) []string {
	totalSWS := ""
	moduleCount := ""
	var snapshot model.PlanSnapshot
	if err := json.Unmarshal(archive.Snapshot, &snapshot); err == nil {
		totalSWS = fmt.Sprintf("%.1f", snapshot.TotalSWS)
		moduleCount = fmt.Sprintf("%d", len(snapshot.Modules))
	}

	return []string{
		archive.ArchiveID,
		archive.OriginalPlanID,
		archive.PhaseName,
		archive.ProfessorName,
		archive.SemesterName,
		archive.StatusAtArchiving,
		archive.ArchiveReason,
		totalSWS,
		moduleCount,
		archive.ArchivedAt.Format("2006-01-02 15:04:05"),
	}
}

func (s *exportService) writeCSV(rows [][]string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	// UTF-8 BOM，Excel 打开中文不乱码
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(buf)
	if err := w.Write(exportHeader); err != nil {
		s.logger.Error("写入 CSV 表头失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			s.logger.Error("写入 CSV 数据行失败", zap.Error(err))
			return nil, ErrExportGenerateFail
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.logger.Error("刷新 CSV 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

func (s *exportService) writeXLSX(rows [][]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "归档记录"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "B", 38)
	f.SetColWidth(sheetName, "C", "E", 20)
	f.SetColWidth(sheetName, "F", "I", 12)
	f.SetColWidth(sheetName, "J", "J", 20)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, title := range exportHeader {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 1), title)
		f.SetCellStyle(sheetName, cell(col, 1), cell(col, 1), headerStyle)
	}

	for r, row := range rows {
		for c, value := range row {
			col, _ := excelize.ColumnNumberToName(c + 1)
			f.SetCellValue(sheetName, cell(col, r+2), value)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return buf, nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

