package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mzaraf/vms/config"
	"github.com/mzaraf/vms/internal/dto"
	"github.com/mzaraf/vms/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("failed to generate export file")
)

const (
	exportSheetName     = "Visitors"
	defaultExportMaxRow = 10000
)

// exportColumns 导出表头
var exportColumns = []string{
	"Name", "Email", "Phone", "Organization", "Department", "Host",
	"Purpose", "Status", "Visit Date", "Check In", "Check Out",
}

// ExportService 导出业务接口
//
// 导出沿用列表的过滤条件与可见范围，以 bytes.Buffer 返回，
// 由 Handler 层设置下载响应头。
type ExportService interface {
	// ExportVisitors 导出访客列表为 Excel (.xlsx)
	ExportVisitors(ctx context.Context, req *dto.VisitorListRequest, requester Requester) (*bytes.Buffer, string, error)
}

type exportService struct {
	maxRows int
	loc     *time.Location
	repo    *repository.Repository
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.VisitorConfig, repo *repository.Repository, logger *zap.Logger) ExportService {
	maxRows := cfg.ExportMaxRows
	if maxRows <= 0 {
		maxRows = defaultExportMaxRow
	}
	return &exportService{
		maxRows: maxRows,
		loc:     cfg.Location(),
		repo:    repo,
		logger:  logger,
		now:     time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// ExportVisitors: 导出访客列表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "Visitors"，首行为表头（冻结）
//   - 每个访客一行，按来访日期倒序
//   - 时间按业务时区显示
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportVisitors(ctx context.Context, req *dto.VisitorListRequest, requester Requester) (*bytes.Buffer, string, error) {
	filters, err := listFilters(req)
	if err != nil {
		return nil, "", err
	}
	filters.Limit = s.maxRows

	visitors, err := s.repo.Visitor.List(ctx, filters, ScopeFor(requester))
	if err != nil {
		s.logger.Error("查询导出访客失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(exportSheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, title := range exportColumns {
		f.SetCellValue(exportSheetName, cell(colName(i), 1), title)
	}
	f.SetCellStyle(exportSheetName, "A1", cell(colName(len(exportColumns)-1), 1), headerStyle)
	f.SetColWidth(exportSheetName, "A", colName(len(exportColumns)-1), 18)
	f.SetColWidth(exportSheetName, "G", "G", 36)
	f.SetPanes(exportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for i := range visitors {
		v := &visitors[i]
		row := i + 2
		values := []interface{}{
			v.Name,
			stringOrEmpty(v.Email),
			v.Phone,
			v.Organization,
			v.DepartmentName(),
			v.Host,
			v.Purpose,
			v.Status.Display(),
			v.VisitDate.Format(dateLayout),
			s.formatTime(v.CheckInTime),
			s.formatTime(v.CheckOutTime),
		}
		if err := f.SetSheetRow(exportSheetName, cell("A", row), &values); err != nil {
			s.logger.Error("写入 Excel 行失败", zap.Int("row", row), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("visitors_%s.xlsx", s.now().In(s.loc).Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format("2006-01-02 15:04")
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
