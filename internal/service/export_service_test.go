package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, *testRepos) {
	repos := newTestRepos()
	svc := NewExportService(repos.aggregate(), zap.NewNop())
	return svc, repos
}

// ── ExportArchives 测试 ──

func TestExportService_ExportArchives_CSV(t *testing.T) {
	svc, repos := setupTestExportService()
	seedArchive(repos, "arch-1", "prof-1", model.ArchiveReasonManual, time.Now(), sampleSnapshot("plan-1", "prof-1", model.PlanStatusApproved))

	buf, filename, err := svc.ExportArchives(context.Background(), &dto.ArchiveListRequest{}, ExportFormatCSV, "dean-001", model.RoleDean)
	if err != nil {
		t.Fatalf("ExportArchives 应成功: %v", err)
	}
	if !strings.HasPrefix(filename, "归档记录_") || !strings.HasSuffix(filename, ".csv") {
		t.Errorf("文件名格式不符: %s", filename)
	}

	raw := buf.Bytes()
	// UTF-8 BOM 开头，Excel 打开中文不乱码
	if !bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("CSV 应以 UTF-8 BOM 开头")
	}

	r := csv.NewReader(bytes.NewReader(raw[3:]))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("导出内容应为合法 CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("期望表头 + 1 数据行，实际=%d", len(records))
	}
	if records[0][0] != "归档编号" {
		t.Errorf("表头首列应为 归档编号，实际=%s", records[0][0])
	}
	row := records[1]
	if row[0] != "arch-1" {
		t.Errorf("首列应为归档编号，实际=%s", row[0])
	}
	if row[7] != "12.0" {
		t.Errorf("总学时列应为 12.0，实际=%s", row[7])
	}
	if row[8] != "1" {
		t.Errorf("模块数列应为 1，实际=%s", row[8])
	}
}

func TestExportService_ExportArchives_XLSX(t *testing.T) {
	svc, repos := setupTestExportService()
	seedArchive(repos, "arch-1", "prof-1", model.ArchiveReasonManual, time.Now(), sampleSnapshot("plan-1", "prof-1", model.PlanStatusApproved))

	buf, filename, err := svc.ExportArchives(context.Background(), &dto.ArchiveListRequest{}, ExportFormatXLSX, "dean-001", model.RoleDean)
	if err != nil {
		t.Fatalf("ExportArchives 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应为 .xlsx，实际=%s", filename)
	}
	// xlsx 是 zip 容器，以 PK 开头
	if buf.Len() < 4 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Error("导出内容应为合法 xlsx（zip）文件")
	}
}

func TestExportService_ExportArchives_NoData(t *testing.T) {
	svc, _ := setupTestExportService()

	if _, _, err := svc.ExportArchives(context.Background(), &dto.ArchiveListRequest{}, ExportFormatCSV, "dean-001", model.RoleDean); !errors.Is(err, ErrExportNoData) {
		t.Errorf("期望 ErrExportNoData，实际: %v", err)
	}
}

func TestExportService_ExportArchives_BadFormat(t *testing.T) {
	svc, _ := setupTestExportService()

	if _, _, err := svc.ExportArchives(context.Background(), &dto.ArchiveListRequest{}, "pdf", "dean-001", model.RoleDean); !errors.Is(err, ErrExportBadFormat) {
		t.Errorf("期望 ErrExportBadFormat，实际: %v", err)
	}
}

func TestExportService_ExportArchives_ProfessorRestricted(t *testing.T) {
	svc, repos := setupTestExportService()
	seedArchive(repos, "arch-1", "prof-1", model.ArchiveReasonManual, time.Now(), sampleSnapshot("plan-1", "prof-1", model.PlanStatusApproved))
	seedArchive(repos, "arch-2", "prof-2", model.ArchiveReasonManual, time.Now(), sampleSnapshot("plan-2", "prof-2", model.PlanStatusApproved))

	buf, _, err := svc.ExportArchives(context.Background(), &dto.ArchiveListRequest{}, ExportFormatCSV, "prof-1", model.RoleProfessor)
	if err != nil {
		t.Fatalf("ExportArchives 应成功: %v", err)
	}
	r := csv.NewReader(bytes.NewReader(buf.Bytes()[3:]))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("导出内容应为合法 CSV: %v", err)
	}
	// 表头 + 本人 1 行
	if len(records) != 2 {
		t.Errorf("教授导出应只含本人记录，实际行数=%d", len(records))
	}
}

func TestExportService_ExportArchives_CorruptSnapshotTolerated(t *testing.T) {
	svc, repos := setupTestExportService()
	repos.Archive.archives["arch-bad"] = &model.ArchivedPlanning{
		ArchiveID:         "arch-bad",
		OriginalPlanID:    "plan-x",
		PhaseName:         "测试阶段",
		ProfessorID:       "prof-1",
		ProfessorName:     "张教授",
		SemesterName:      "测试学期",
		StatusAtArchiving: model.PlanStatusApproved,
		ArchiveReason:     model.ArchiveReasonManual,
		ArchivedAt:        time.Now(),
		Snapshot:          []byte("corrupt"),
	}

	buf, _, err := svc.ExportArchives(context.Background(), &dto.ArchiveListRequest{}, ExportFormatCSV, "dean-001", model.RoleDean)
	if err != nil {
		t.Fatalf("快照损坏不应中断导出: %v", err)
	}
	r := csv.NewReader(bytes.NewReader(buf.Bytes()[3:]))
	records, _ := r.ReadAll()
	if len(records) != 2 {
		t.Fatalf("期望表头 + 1 行，实际=%d", len(records))
	}
	// 负荷列留空
	if records[1][7] != "" || records[1][8] != "" {
		t.Errorf("损坏快照的负荷列应留空，实际=%q/%q", records[1][7], records[1][8])
	}
}

