package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/poiesic/tickerdex"
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/search"
	"github.com/urfave/cli/v2"
)

type securityView struct {
	ID       uint64   `json:"id"`
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Currency string   `json:"currency,omitempty"`
	Exchange string   `json:"exchange,omitempty"`
	Country  string   `json:"country,omitempty"`
	Type     string   `json:"type,omitempty"`
	FIGI     string   `json:"figi,omitempty"`
	ISIN     string   `json:"isin,omitempty"`
	Strategy string   `json:"strategy,omitempty"`
	Matched  []string `json:"matched_by,omitempty"`
}

type referenceView struct {
	ID      uint64 `json:"id"`
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

type checkpointView struct {
	Source    string    `json:"source"`
	RunID     string    `json:"run_id"`
	Rows      int64     `json:"rows"`
	Accepted  int64     `json:"accepted"`
	Rejected  int64     `json:"rejected"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}

type statusView struct {
	*tickerdex.Status
	Checkpoint *checkpointView `json:"checkpoint,omitempty"`
}

func writeTable(c *cli.Context, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(c.App.Writer, t.Render())
	return err
}

func writeJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSecurityView(s search.Suggestion, explain bool) securityView {
	sec := s.Security
	view := securityView{
		ID:       uint64(sec.Id),
		Symbol:   sec.Symbol,
		Name:     sec.Name,
		Currency: sec.Currency,
		Exchange: sec.Exchange,
		Country:  sec.Country,
		Type:     sec.Type,
		FIGI:     sec.FIGI,
		ISIN:     sec.ISIN,
	}
	if explain {
		if !s.Strategy.IsZero() {
			view.Strategy = s.Strategy.Description()
		}
		for _, m := range s.MatchedBy {
			view.Matched = append(view.Matched, m.String())
		}
	}
	return view
}

func writeSuggestions(c *cli.Context, suggestions []search.Suggestion) error {
	explain := c.Bool("explain")
	views := make([]securityView, 0, len(suggestions))
	for _, s := range suggestions {
		views = append(views, newSecurityView(s, explain))
	}

	if c.Bool("json") {
		return writeJSON(c, views)
	}

	if len(views) == 0 {
		fmt.Fprintln(c.App.Writer, "No matches")
		return nil
	}
	headers := []string{"SYMBOL", "NAME", "EXCHANGE", "CURRENCY", "COUNTRY"}
	if explain {
		headers = append(headers, "MATCHED BY")
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		row := []string{v.Symbol, v.Name, v.Exchange, v.Currency, v.Country}
		if explain {
			row = append(row, strings.Join(v.Matched, ","))
		}
		rows = append(rows, row)
	}
	return writeTable(c, headers, rows)
}

func writeReferences(c *cli.Context, entries []*core.ReferenceEntry) error {
	views := make([]referenceView, 0, len(entries))
	for _, e := range entries {
		views = append(views, referenceView{
			ID:      uint64(e.Id),
			Kind:    e.Kind.String(),
			Code:    e.Code,
			Name:    e.Name,
			Country: e.Country,
		})
	}

	if c.Bool("json") {
		return writeJSON(c, views)
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{v.Code, v.Name, v.Country})
	}
	return writeTable(c, []string{"CODE", "NAME", "COUNTRY"}, rows)
}

func writeStatus(c *cli.Context, status *tickerdex.Status, cp *core.Checkpoint) error {
	view := statusView{Status: status}
	if cp != nil {
		view.Checkpoint = &checkpointView{
			Source:    cp.Source,
			RunID:     cp.RunID,
			Rows:      cp.Rows,
			Accepted:  cp.Accepted,
			Rejected:  cp.Rejected,
			Completed: cp.Completed,
			UpdatedAt: cp.UpdatedAt,
		}
	}

	if c.Bool("json") {
		return writeJSON(c, view)
	}

	fmt.Fprintf(c.App.Writer, "Securities: %d\n", status.Securities)
	for _, kind := range []core.ReferenceKind{core.ReferenceCurrency, core.ReferenceExchange, core.ReferenceSecurityType} {
		fmt.Fprintf(c.App.Writer, "%s: %d\n", kind, status.References[kind.String()])
	}
	if view.Checkpoint != nil {
		fmt.Fprintf(c.App.Writer, "Checkpoint: %d rows (%d accepted, %d rejected), completed=%t, run %s\n",
			cp.Rows, cp.Accepted, cp.Rejected, cp.Completed, cp.RunID)
	}
	return nil
}
