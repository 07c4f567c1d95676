package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ration-bot/internal/report"
	"ration-bot/internal/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// requireAdmin continues the flow right away for known admins and asks
// everyone else for the admin password.
func (e *Engine) requireAdmin(ctx context.Context, t *turn) error {
	isAdmin, err := effect(ctx, e, t, "is_admin", func() (bool, error) {
		return e.repo.IsAdmin(ctx, t.ev.UserID)
	})
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if isAdmin {
		return e.continueAsAdmin(ctx, t)
	}

	e.reply(ctx, t, msgAskPassword)
	t.goTo(session.StepAskPassword)
	return nil
}

func (e *Engine) handlePassword(ctx context.Context, t *turn) error {
	if t.ev.Kind != KindText {
		return nil
	}
	e.deleteMessage(ctx, t, t.ev.MessageID)

	granted, _ := effect(ctx, e, t, "check_password", func() (bool, error) {
		return e.checkPassword(t, t.ev.Text), nil
	})
	if !granted {
		t.log.Warn("Admin password rejected")
		e.reply(ctx, t, msgAccessDenied)
		e.finish(ctx, t)
		return nil
	}

	_, err := effect(ctx, e, t, "add_admin", func() (bool, error) {
		return true, e.repo.AddAdmin(ctx, t.ev.UserID)
	})
	if err != nil {
		return fmt.Errorf("add admin: %w", err)
	}
	t.log.Info("Admin access granted")
	return e.continueAsAdmin(ctx, t)
}

func (e *Engine) checkPassword(t *turn, password string) bool {
	err := bcrypt.CompareHashAndPassword(e.passwordHash, []byte(password))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		t.log.Error("Failed to compare admin password", zap.Error(err))
	}
	return false
}

func (e *Engine) continueAsAdmin(ctx context.Context, t *turn) error {
	switch t.marker.Flow {
	case session.FlowExportOrders:
		t.marker.PromptMessageID = e.reply(ctx, t, msgAskExportDay, exportKeyboard()...)
		t.goTo(session.StepAskExportDay)
		return nil

	case session.FlowDropOrders:
		if _, err := effect(ctx, e, t, "drop_orders", func() (bool, error) {
			return true, e.repo.DropAllOrders(ctx)
		}); err != nil {
			return fmt.Errorf("drop orders: %w", err)
		}
		t.log.Warn("All orders dropped")
		e.reply(ctx, t, msgOrdersDropped)

	case session.FlowDropAdmins:
		if _, err := effect(ctx, e, t, "drop_admins", func() (bool, error) {
			return true, e.repo.DropAllAdmins(ctx)
		}); err != nil {
			return fmt.Errorf("drop admins: %w", err)
		}
		t.log.Warn("All admins dropped")
		e.reply(ctx, t, msgAdminsDropped)

	default:
		return fmt.Errorf("flow %q has no admin action", t.marker.Flow)
	}

	e.finish(ctx, t)
	return nil
}

func exportOffset(ev Event) (int, bool) {
	value, ok := strings.CutPrefix(ev.Data, exportPrefix)
	if ev.Kind != KindCallback || !ok {
		return 0, false
	}
	offset, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	for _, d := range exportDays {
		if d.Offset == offset {
			return offset, true
		}
	}
	return 0, false
}

func (e *Engine) handleExportDay(ctx context.Context, t *turn) error {
	offset, ok := exportOffset(t.ev)
	if !ok {
		return nil
	}

	// the picker goes away so an older day cannot be clicked twice
	e.deleteMessage(ctx, t, t.marker.PromptMessageID)
	t.marker.PromptMessageID = 0

	if err := e.savePayload(ctx, t, session.ExportOrders{DayOffset: offset}); err != nil {
		return err
	}

	day := formatDay(e.rules.DayStart(offset), e.rules.Location())
	e.reply(ctx, t, fmt.Sprintf(msgSearching, day))

	rep, err := e.reports.BuildDailyReport(ctx, offset)
	if errors.Is(err, report.ErrNoOrders) {
		e.reply(ctx, t, fmt.Sprintf(msgNoOrdersForDay, day))
		e.finish(ctx, t)
		return nil
	}
	if err != nil {
		return fmt.Errorf("build report for %s: %w", day, err)
	}

	_, _ = effect(ctx, e, t, "send_report", func() (bool, error) {
		name := report.FileName(rep.Day)
		if err := e.out.SendDocument(ctx, t.chatID(), name, rep.Data, fmt.Sprintf(msgReportCaption, day)); err != nil {
			t.log.Warn("Failed to send report", zap.String("file", name), zap.Error(err))
			return false, nil
		}
		return true, nil
	})

	t.log.Info("Orders exported", zap.Int("day_offset", offset), zap.Int("rows", len(rep.Rows)))
	e.finish(ctx, t)
	return nil
}

func (e *Engine) startDrop(ctx context.Context, t *turn) error {
	prompt := msgConfirmDropOrders
	if t.marker.Flow == session.FlowDropAdmins {
		prompt = msgConfirmDropAdmins
	}
	e.reply(ctx, t, prompt, yesNoKeyboard()...)
	t.goTo(session.StepConfirmDrop)
	return nil
}

func (e *Engine) handleDropAnswer(ctx context.Context, t *turn) error {
	confirmed, ok := yesNo(t.ev)
	if !ok {
		return nil
	}
	if !confirmed {
		e.reply(ctx, t, msgKeepEverything)
		e.finish(ctx, t)
		return nil
	}

	if err := e.savePayload(ctx, t, session.Drop{Confirmed: true}); err != nil {
		return err
	}
	return e.requireAdmin(ctx, t)
}
