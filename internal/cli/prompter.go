package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/the-payday-must-flow/internal/model"
	"github.com/Veraticus/the-payday-must-flow/internal/money"
	"github.com/Veraticus/the-payday-must-flow/internal/payday"
)

// ErrInvalidChoice is returned for input the current stage does not accept.
var ErrInvalidChoice = errors.New("invalid choice")

// RitualPrompter walks a payday.Ritual through its stages interactively.
// It never writes to storage; the caller persists the returned outcome.
type RitualPrompter struct {
	writer   io.Writer
	reader   *LineReader
	accounts map[string]string
}

// NewRitualPrompter creates a prompter. accounts supplies display names.
func NewRitualPrompter(reader io.Reader, writer io.Writer, accounts []model.Account) *RitualPrompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	return &RitualPrompter{
		reader:   NewLineReader(reader),
		writer:   writer,
		accounts: names,
	}
}

// Run drives r to an outcome. Typing "s" at the paycheck prompt skips the
// paycheck and "q" at any prompt cancels.
func (p *RitualPrompter) Run(ctx context.Context, r payday.Ritual, now time.Time) (payday.Outcome, error) {
	var err error
	for {
		if err = ctx.Err(); err != nil {
			return nil, ErrInputCancelled
		}

		var next payday.Ritual
		var outcome payday.Outcome
		switch r.Stage {
		case payday.StageConfirm:
			next, outcome, err = p.confirm(ctx, r, now)
		case payday.StageAllocate:
			next, outcome, err = p.allocate(ctx, r)
		case payday.StageTransfer:
			next, outcome, err = p.transfer(ctx, r)
		case payday.StageAudit:
			next, outcome, err = p.audit(ctx, r, now)
		default:
			return nil, fmt.Errorf("%w: %s", payday.ErrWrongStage, r.Stage)
		}

		switch {
		case err == nil:
		case errors.Is(err, ErrInputCancelled), errors.Is(err, io.EOF):
			return nil, err
		default:
			// Bad input keeps the ritual where it was.
			p.println(FormatError(err.Error()))
			continue
		}
		if outcome != nil {
			return outcome, nil
		}
		r = next
	}
}

func (p *RitualPrompter) confirm(ctx context.Context, r payday.Ritual, now time.Time) (payday.Ritual, payday.Outcome, error) {
	p.println(FormatTitle(fmt.Sprintf("Payday: %s on %s", r.Income.Name, r.Income.NextDate)))
	p.printf("%s [%s, s=skip, q=cancel]: ", FormatPrompt("Paycheck amount"), r.Income.Amount)

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return r, nil, err
	}
	switch strings.ToLower(line) {
	case "q":
		return r, r.Cancel(), nil
	case "s":
		return r, r.Skip(now), nil
	}

	amount := r.Income.Amount
	if line != "" {
		if amount, err = money.Parse(line); err != nil {
			return r, nil, err
		}
	}
	next, err := r.Confirm(amount)
	return next, nil, err
}

func (p *RitualPrompter) allocate(ctx context.Context, r payday.Ritual) (payday.Ritual, payday.Outcome, error) {
	p.println(RenderBox("Allocations", p.formatSuggestions(r)))
	p.printf("%s ", FormatPrompt("Edit as \"<n> <amount>\", Enter to continue, q to cancel"))

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return r, nil, err
	}
	switch strings.ToLower(line) {
	case "":
		next, err := r.AdvanceToTransfer()
		return next, nil, err
	case "q":
		return r, r.Cancel(), nil
	}

	idx, amount, err := parseIndexedAmount(line, len(r.Suggestions))
	if err != nil {
		return r, nil, err
	}
	next, err := r.SetAllocation(r.Suggestions[idx].BucketID, amount)
	return next, nil, err
}

func (p *RitualPrompter) transfer(ctx context.Context, r payday.Ritual) (payday.Ritual, payday.Outcome, error) {
	p.println(RenderBox("Transfers", p.formatPlan(r)))
	for _, issue := range r.Plan.Issues {
		p.println(FormatWarning(issue.Error()))
	}
	p.printf("%s ", FormatPrompt("<n> cycles a status, o<n> toggles an offset, Enter to continue, q to cancel"))

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return r, nil, err
	}
	line = strings.ToLower(line)
	switch {
	case line == "":
		next, err := r.AdvanceToAudit()
		return next, nil, err
	case line == "q":
		return r, r.Cancel(), nil
	case strings.HasPrefix(line, "o"):
		idx, err := parseIndex(strings.TrimPrefix(line, "o"), len(r.Offsets))
		if err != nil {
			return r, nil, err
		}
		next, err := r.ToggleOffset(r.Offsets[idx].IncomeID)
		return next, nil, err
	}

	idx, err := parseIndex(line, len(r.Plan.Transfers))
	if err != nil {
		return r, nil, err
	}
	next, err := r.CycleTransferStatus(idx)
	return next, nil, err
}

func (p *RitualPrompter) audit(ctx context.Context, r payday.Ritual, now time.Time) (payday.Ritual, payday.Outcome, error) {
	p.println(RenderBox("Audit", p.formatAudit(r)))
	p.printf("%s ", FormatPrompt("Correct as \"<n> <balance>\", c to commit, q to cancel"))

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return r, nil, err
	}
	switch strings.ToLower(line) {
	case "c":
		outcome, err := r.Commit(now)
		return r, outcome, err
	case "q":
		return r, r.Cancel(), nil
	case "":
		return r, nil, nil
	}

	idx, amount, err := parseIndexedAmount(line, len(r.Audit))
	if err != nil {
		return r, nil, err
	}
	next, err := r.AdjustBalance(r.Audit[idx].AccountID, amount)
	return next, nil, err
}

func (p *RitualPrompter) formatSuggestions(r payday.Ritual) string {
	rows := make([][]string, 0, len(r.Suggestions))
	for i, s := range r.Suggestions {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.Name,
			string(s.Method),
			SubtleStyle.Render(s.Formula),
			FormatMoney(r.Allocation(s.BucketID)),
		})
	}
	table := RenderTable([]string{"#", "Bucket", "Method", "Formula", "Amount"}, rows)

	total := r.TotalAllocated()
	left := r.Deposit - total
	summary := fmt.Sprintf("Paycheck %s  Allocated %s  Left %s", r.Deposit, total, FormatMoney(left))
	return table + "\n\n" + summary
}

func (p *RitualPrompter) formatPlan(r payday.Ritual) string {
	if len(r.Plan.Transfers) == 0 && len(r.Offsets) == 0 {
		return SubtleStyle.Render("No transfers needed.")
	}

	var b strings.Builder
	for i, t := range r.Plan.Transfers {
		fmt.Fprintf(&b, "%d. %s -> %s  %s  [%s]", i+1, p.name(t.FromAccountID), p.name(t.ToAccountID),
			BoldStyle.Render(t.Amount.String()), t.Status)
		if t.HasAuto && t.Drift != 0 {
			fmt.Fprintf(&b, "  %s", WarningStyle.Render("auto-transfer drift "+t.Drift.String()))
		}
		b.WriteString("\n")
		for _, l := range t.Breakdown {
			fmt.Fprintf(&b, "     %s %s\n", SubtleStyle.Render(l.Label), FormatMoney(l.Amount))
		}
	}
	if len(r.Offsets) > 0 {
		b.WriteString("\nOffsets:\n")
		for i, o := range r.Offsets {
			mark := "[ ]"
			if o.Active {
				mark = "[x]"
			}
			fmt.Fprintf(&b, "o%d. %s %s into %s on %s\n", i+1, mark, o.Name, p.name(o.AccountID), o.Date)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *RitualPrompter) formatAudit(r payday.Ritual) string {
	rows := make([][]string, 0, len(r.Audit))
	for i, l := range r.Audit {
		final := FormatMoney(l.Final)
		if l.Adjusted {
			final += " " + InfoStyle.Render("(corrected)")
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), l.Name, l.Current.String(), l.Projected.String(), final})
	}
	return RenderTable([]string{"#", "Account", "Current", "Projected", "Final"}, rows)
}

func (p *RitualPrompter) name(accountID string) string {
	if n, ok := p.accounts[accountID]; ok {
		return n
	}
	return accountID
}

func (p *RitualPrompter) println(s string) {
	if _, err := fmt.Fprintln(p.writer, s); err != nil {
		slog.Warn("Failed to write prompt output", "error", err)
	}
}

func (p *RitualPrompter) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(p.writer, format, args...); err != nil {
		slog.Warn("Failed to write prompt output", "error", err)
	}
}

// parseIndex reads a 1-based index below n and returns it 0-based.
func parseIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
	}
	return i - 1, nil
}

func parseIndexedAmount(line string, n int) (int, money.Cents, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: want \"<n> <amount>\", got %q", ErrInvalidChoice, line)
	}
	idx, err := parseIndex(fields[0], n)
	if err != nil {
		return 0, 0, err
	}
	amount, err := money.Parse(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return idx, amount, nil
}
