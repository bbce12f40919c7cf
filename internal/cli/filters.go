package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

// filterFlags binds the history filter flags shared by list, stats and report.
type filterFlags struct {
	from, to string
	min, max int
	status   statusValue
}

// statusValue is a --status flag that only accepts a known tremor status.
type statusValue struct {
	status domain.TremorStatus
}

var _ pflag.Value = (*statusValue)(nil)

func (v *statusValue) String() string { return string(v.status) }

func (v *statusValue) Set(s string) error {
	status, err := parseStatus(s)
	if err != nil {
		return err
	}
	v.status = status
	return nil
}

func (v *statusValue) Type() string { return "status" }

func addFilterFlags(cmd *cobra.Command, f *filterFlags) {
	cmd.Flags().StringVar(&f.from, "from", "", "Only sessions starting on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Only sessions ending on or before this date (YYYY-MM-DD, inclusive)")
	cmd.Flags().IntVar(&f.min, "min-index", 0, "Minimum tremor index")
	cmd.Flags().IntVar(&f.max, "max-index", 100, "Maximum tremor index")
	cmd.Flags().Var(&f.status, "status", "Only sessions with this status (Bajo, Moderado, Alto)")
}

func (f *filterFlags) build(cmd *cobra.Command) (domain.HistoryFilters, error) {
	var filters domain.HistoryFilters

	if f.from != "" {
		t, err := time.ParseInLocation(dateLayout, f.from, time.Local)
		if err != nil {
			return filters, fmt.Errorf("--from: %w", err)
		}
		ms := t.UnixMilli()
		filters.StartDate = &ms
	}
	if f.to != "" {
		t, err := time.ParseInLocation(dateLayout, f.to, time.Local)
		if err != nil {
			return filters, fmt.Errorf("--to: %w", err)
		}
		ms := t.AddDate(0, 0, 1).UnixMilli() - 1
		filters.EndDate = &ms
	}
	if cmd.Flags().Changed("min-index") {
		v := f.min
		filters.MinTremorIndex = &v
	}
	if cmd.Flags().Changed("max-index") {
		v := f.max
		filters.MaxTremorIndex = &v
	}
	if f.status.status != "" {
		status := f.status.status
		filters.Status = &status
	}
	return filters, nil
}

func parseStatus(s string) (domain.TremorStatus, error) {
	for status := range domain.ValidTremorStatuses {
		if strings.EqualFold(string(status), s) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q (want Bajo, Moderado or Alto)", s)
}
