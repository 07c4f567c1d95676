package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ration-bot/internal/storage"
	"ration-bot/internal/timerules"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fakeSource struct {
	orders []storage.Order
	err    error
}

func (f *fakeSource) ListActiveOnDay(_ context.Context, _, _ time.Time) ([]storage.Order, error) {
	return f.orders, f.err
}

var loc = time.FixedZone("UTC+10", 10*3600)

func testRules() *timerules.Rules {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, loc)
	return timerules.New(10, timerules.WithClock(func() time.Time { return now }))
}

func order(id int64, name string, delivery time.Time, duration int, placed, updated time.Time) storage.Order {
	return storage.Order{
		ID:           id,
		UserID:       "1",
		FirstName:    name,
		LastName:     "Петров",
		Phone:        "+79991234567",
		Address:      "адрес",
		DeliveryDate: delivery.UTC(),
		EatingDate:   delivery.AddDate(0, 0, 1).UTC(),
		Duration:     duration,
		OrderDate:    placed,
		LastUpdated:  updated,
	}
}

func TestBuildDailyReportIncludesMultiDayOrders(t *testing.T) {
	rules := testRules()
	yesterday := rules.DayStart(-1)
	placed := time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC)

	src := &fakeSource{orders: []storage.Order{
		order(1, "Многодневный", yesterday, 3, placed, placed),
	}}
	gen := NewGenerator(src, rules, "", zap.NewNop())

	rep, err := gen.BuildDailyReport(context.Background(), 0)
	if err != nil {
		t.Fatalf("BuildDailyReport(0) failed: %v", err)
	}
	if len(rep.Rows) != 1 || rep.Rows[0].ID != 1 {
		t.Fatalf("unexpected rows: %+v", rep.Rows)
	}
	if !rep.Day.Equal(rules.DayStart(0)) {
		t.Errorf("day = %v, want today", rep.Day)
	}

	// last day of the window: yesterday + 2
	if _, err := gen.BuildDailyReport(context.Background(), 1); err != nil {
		t.Errorf("order should still be active tomorrow: %v", err)
	}

	if _, err := gen.BuildDailyReport(context.Background(), 2); !errors.Is(err, ErrNoOrders) {
		t.Errorf("expected ErrNoOrders beyond the window, got %v", err)
	}
}

func TestBuildDailyReportNoOrders(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(&fakeSource{}, testRules(), dir, zap.NewNop())

	rep, err := gen.BuildDailyReport(context.Background(), 0)
	if !errors.Is(err, ErrNoOrders) {
		t.Fatalf("expected ErrNoOrders, got %v", err)
	}
	if rep != nil {
		t.Error("no report expected")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("no file must be produced, found %d", len(entries))
	}
}

func TestBuildDailyReportSourceError(t *testing.T) {
	boom := errors.New("db down")
	gen := NewGenerator(&fakeSource{err: boom}, testRules(), "", zap.NewNop())

	if _, err := gen.BuildDailyReport(context.Background(), 0); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestBuildDailyReportSpreadsheet(t *testing.T) {
	rules := testRules()
	today := rules.DayStart(0)
	first := time.Date(2026, 10, 15, 1, 0, 0, 0, time.UTC)
	second := time.Date(2026, 10, 16, 1, 0, 0, 0, time.UTC)
	edited := time.Date(2026, 10, 17, 1, 0, 0, 0, time.UTC)

	src := &fakeSource{orders: []storage.Order{
		order(2, "Изменённый", today, 1, first, edited),
		order(1, "Свежий", today, 2, second, second),
	}}
	dir := t.TempDir()
	gen := NewGenerator(src, rules, dir, zap.NewNop())

	rep, err := gen.BuildDailyReport(context.Background(), 0)
	if err != nil {
		t.Fatalf("BuildDailyReport failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rep.Data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	for i, h := range headers {
		if rows[0][i] != h {
			t.Errorf("header %d = %q, want %q", i, rows[0][i], h)
		}
	}

	// ordered by last_updated ascending
	if rows[1][0] != "Свежий" || rows[2][0] != "Изменённый" {
		t.Errorf("unexpected order: %q, %q", rows[1][0], rows[2][0])
	}
	if rows[1][4] != "18.10.2026" {
		t.Errorf("delivery date = %q", rows[1][4])
	}

	plain, _ := f.GetCellStyle(sheetName, "A2")
	highlighted, _ := f.GetCellStyle(sheetName, "A3")
	if plain != 0 {
		t.Errorf("untouched order must not be highlighted, style %d", plain)
	}
	if highlighted == 0 {
		t.Error("edited order must be highlighted")
	}

	width, err := f.GetColWidth(sheetName, "D")
	if err != nil || width != columnWidth {
		t.Errorf("column width = %v (%v), want %d", width, err, columnWidth)
	}

	if _, err := os.Stat(filepath.Join(dir, FileName(rep.Day))); err != nil {
		t.Errorf("report copy not saved: %v", err)
	}
}

func TestFileName(t *testing.T) {
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, loc)
	if got := FileName(day); got != "19.10.2026 Заказы.xlsx" {
		t.Errorf("FileName() = %q", got)
	}
}
