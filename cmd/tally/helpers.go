package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/app"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/notify"
	"github.com/Veraticus/tally/internal/storage"
)

// session is an open database with a started App.
type session struct {
	store *storage.SQLiteStorage
	app   *app.App
	cfg   config.Config
}

// initStorage opens the configured database and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, config.Config{}, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, config.Config{}, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, config.Config{}, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, cfg, nil
}

func newApp(store *storage.SQLiteStorage) *app.App {
	return app.New(store, app.WithNotifier(notify.NewLogNotifier(slog.Default())))
}

// openSession opens storage and starts the App, which books due planned
// transactions and refreshes bill statuses.
func openSession(ctx context.Context) (*session, error) {
	store, cfg, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	a := newApp(store)
	if _, err := a.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	return &session{store: store, app: a, cfg: cfg}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// autoCheckpoint snapshots the database before op when enabled.
// In-memory databases are skipped.
func autoCheckpoint(ctx context.Context, store *storage.SQLiteStorage, cfg config.Config, op string) error {
	if !cfg.AutoCheckpoint {
		return nil
	}

	manager, err := store.NewCheckpointManager()
	if errors.Is(err, storage.ErrCheckpointInMemory) {
		slog.Debug("Skipping auto-checkpoint for in-memory database", "operation", op)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return manager.AutoCheckpoint(ctx, op)
}

// lookup finds the item whose ID equals ref, or failing that the one whose
// name matches ref case-insensitively.
func lookup[E any](items []E, kind, ref string, id, name func(E) string) (E, error) {
	var zero E
	for _, item := range items {
		if id(item) == ref {
			return item, nil
		}
	}

	var found []E
	for _, item := range items {
		if strings.EqualFold(name(item), ref) {
			found = append(found, item)
		}
	}
	switch len(found) {
	case 0:
		return zero, common.NewUserError(fmt.Sprintf("no %s named %q", kind, ref), common.ErrNotFound)
	case 1:
		return found[0], nil
	}
	return zero, common.NewUserError(fmt.Sprintf("%d %ss are named %q, use the ID", len(found), kind, ref), nil)
}

// lookupAll resolves every ref in refs.
func lookupAll[E any](items []E, kind string, refs []string, id, name func(E) string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		item, err := lookup(items, kind, ref, id, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id(item))
	}
	return ids, nil
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value), err)
	}
	return date, nil
}

// parseOptionalDate returns nil for an empty value.
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func parseMoney(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(value), "$"))
	if err != nil {
		return decimal.Decimal{}, common.NewUserError(fmt.Sprintf("invalid amount %q", value), err)
	}
	return amount, nil
}

func formatDate(date *time.Time) string {
	if date == nil {
		return "-"
	}
	return date.Format(time.DateOnly)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))

// newTable starts a tab-aligned table with a styled header row.
func newTable(w io.Writer, columns ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = headerStyle.Render(c)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	}
	return t.Format("2006-01-02 15:04")
}
