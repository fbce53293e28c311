package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/internal/storage"
)

const (
	displayDate     = "2006-01-02"
	displayDateTime = "2006-01-02 15:04"
	displayClock    = "15:04"
)

// requireEngine reports a clear error when a command runs before app
// initialization wired the engine and store.
func requireEngine() error {
	if Engine == nil {
		return fmt.Errorf("engine not initialized")
	}
	if Store == nil {
		return fmt.Errorf("storage not initialized")
	}
	return nil
}

// errUnchanged lets a commit closure report that there was nothing to
// change, so nothing is saved.
var errUnchanged = errors.New("nothing to change")

// commit runs mutate against the latest saved state and saves the result.
// Changes written by other commtrack processes since this one started are
// kept. On failure the engine holds exactly what the store holds.
func commit(mutate func() error) error {
	return storage.NewSync(Store, Engine).Commit(mutate)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting output as JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// parseDateFlags combines --date and --time into an instant. An empty date
// returns the zero time so callers can apply their own default.
func parseDateFlags(date, clock string) (time.Time, error) {
	if strings.TrimSpace(date) == "" {
		if strings.TrimSpace(clock) != "" {
			return time.Time{}, fmt.Errorf("--time requires --date")
		}
		return time.Time{}, nil
	}
	return core.ParseDateTime(date, clock, Engine.Location)
}

// parseRangeFlags turns --from and --to into an inclusive day range.
func parseRangeFlags(from, to string) (core.DateRange, error) {
	var r core.DateRange
	var err error
	if from != "" {
		if r.Start, err = core.ParseDateTime(from, "", Engine.Location); err != nil {
			return r, fmt.Errorf("parsing --from: %w", err)
		}
	}
	if to != "" {
		if r.End, err = core.ParseDateTime(to, "", Engine.Location); err != nil {
			return r, fmt.Errorf("parsing --to: %w", err)
		}
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return r, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return r, nil
}

// localTime renders an instant in the configured location.
func localTime(t time.Time) string {
	return t.In(Engine.Location).Format(displayDateTime)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
