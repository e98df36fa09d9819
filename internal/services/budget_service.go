package services

import (
	"context"
	"fmt"
	"time"

	"duitku/internal/core"
)

// DailyBudget compares what was spent today with the configured limit.
type DailyBudget struct {
	Date      time.Time
	Spent     core.Money
	Limit     core.Money
	Remaining core.Money // never negative
	Exceeded  bool
	// Used is Spent/Limit, 0 when no limit is set
	Used float64
}

type BudgetService struct {
	expenses ExpenseSummer
	settings SettingsStore
	loc      *time.Location
}

func NewBudgetService(expenses ExpenseSummer, settings SettingsStore, loc *time.Location) *BudgetService {
	if loc == nil {
		loc = time.Local
	}
	return &BudgetService{expenses: expenses, settings: settings, loc: loc}
}

// Today evaluates the budget for the calendar day containing now.
func (s *BudgetService) Today(ctx context.Context, now time.Time) (DailyBudget, error) {
	now = now.In(s.loc)
	start, end := core.StartOfDay(now), core.EndOfDay(now)

	spent, err := s.expenses.ExpenseTotalBetween(ctx, start, end)
	if err != nil {
		return DailyBudget{}, fmt.Errorf("sum today's expenses: %w", err)
	}
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return DailyBudget{}, fmt.Errorf("load settings: %w", err)
	}

	b := DailyBudget{
		Date:      start,
		Spent:     spent,
		Limit:     settings.DailyLimit,
		Remaining: core.Zero,
		Exceeded:  spent.Cmp(settings.DailyLimit) > 0,
		Used:      spent.Ratio(settings.DailyLimit),
	}
	if !b.Exceeded {
		b.Remaining = settings.DailyLimit.Sub(spent)
	}
	return b, nil
}
