package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ration-bot/internal/storage"
	"ration-bot/internal/timerules"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	sheetName   = "Заказы"
	columnWidth = 25
	dateLayout  = "02.01.2006"
	stampLayout = "02.01.2006 15:04"
)

var ErrNoOrders = errors.New("no orders for the day")

var headers = []string{
	"Имя",
	"Фамилия",
	"Телефон",
	"Адрес",
	"Дата доставки",
	"Дата заказа",
	"Последнее изменение",
	"Кол-во дней",
	"Комментарии",
}

type Source interface {
	ListActiveOnDay(ctx context.Context, start, end time.Time) ([]storage.Order, error)
}

type Report struct {
	Day  time.Time
	Rows []storage.Order
	Data []byte
}

// FileName is the human readable name of the export for the day.
func FileName(day time.Time) string {
	return fmt.Sprintf("%s Заказы.xlsx", day.Format(dateLayout))
}

type Generator struct {
	source Source
	rules  *timerules.Rules
	dir    string
	logger *zap.Logger
}

// NewGenerator builds reports from source. A non-empty dir also keeps a copy
// of every produced file there.
func NewGenerator(source Source, rules *timerules.Rules, dir string, logger *zap.Logger) *Generator {
	return &Generator{source: source, rules: rules, dir: dir, logger: logger}
}

// BuildDailyReport collects the orders in effect on today + dayOffset and
// renders them into a spreadsheet. It returns ErrNoOrders instead of an
// empty file.
func (g *Generator) BuildDailyReport(ctx context.Context, dayOffset int) (*Report, error) {
	day := g.rules.DayStart(dayOffset)

	orders, err := g.source.ListActiveOnDay(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", day.Format(dateLayout), err)
	}

	rows := make([]storage.Order, 0, len(orders))
	for _, o := range orders {
		if g.rules.ActiveOn(o.DeliveryDate, o.Duration, day) {
			rows = append(rows, o)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoOrders
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].LastUpdated.Before(rows[j].LastUpdated)
	})

	data, err := g.render(rows)
	if err != nil {
		return nil, err
	}

	rep := &Report{Day: day, Rows: rows, Data: data}
	if g.dir != "" {
		g.keepCopy(rep)
	}
	return rep, nil
}

func (g *Generator) render(rows []storage.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	editedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFE699"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create highlight style: %w", err)
	}

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	loc := g.rules.Location()
	for i, o := range rows {
		row := i + 2
		values := []any{
			o.FirstName,
			o.LastName,
			o.Phone,
			o.Address,
			o.DeliveryDate.In(loc).Format(dateLayout),
			o.OrderDate.In(loc).Format(stampLayout),
			o.LastUpdated.In(loc).Format(stampLayout),
			o.Duration,
			o.Comments,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write order %d: %w", o.ID, err)
			}
		}

		if o.Edited() {
			from, _ := excelize.CoordinatesToCellName(1, row)
			to, _ := excelize.CoordinatesToCellName(len(headers), row)
			if err := f.SetCellStyle(sheetName, from, to, editedStyle); err != nil {
				return nil, fmt.Errorf("failed to highlight order %d: %w", o.ID, err)
			}
		}
	}

	if err := f.SetColWidth(sheetName, "A", lastCol, columnWidth); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) keepCopy(rep *Report) {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		g.logger.Warn("Failed to create reports directory", zap.String("dir", g.dir), zap.Error(err))
		return
	}

	path := filepath.Join(g.dir, FileName(rep.Day))
	if err := os.WriteFile(path, rep.Data, 0644); err != nil {
		g.logger.Warn("Failed to keep report copy", zap.String("path", path), zap.Error(err))
		return
	}
	g.logger.Info("Report saved", zap.String("path", path), zap.Int("rows", len(rep.Rows)))
}
