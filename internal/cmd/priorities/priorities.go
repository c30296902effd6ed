// Package priorities parses priorities command flags and prints the ranked
// worklist and notification inbox for the stored obligations.
package priorities

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	entrypoint "github.com/duebook/duebook/internal/platform/cmd"
	notifdomain "github.com/duebook/duebook/internal/services/notifications/domain"
	"github.com/duebook/duebook/internal/services/notifications/render"
	notifstorage "github.com/duebook/duebook/internal/services/notifications/storage"
	notifsqlite "github.com/duebook/duebook/internal/services/notifications/storage/sqlite"
	"github.com/duebook/duebook/internal/services/obligations/app"
	obligations "github.com/duebook/duebook/internal/services/obligations/domain"
	obligationsqlite "github.com/duebook/duebook/internal/services/obligations/storage/sqlite"
)

// Config holds priorities command configuration.
type Config struct {
	DBPath              string `env:"DUEBOOK_PRIORITIES_DB_PATH" envDefault:"data/obligations.db"`
	NotificationsDBPath string `env:"DUEBOOK_PRIORITIES_NOTIFICATIONS_DB_PATH" envDefault:"data/notifications.db"`
	Lang                string `env:"DUEBOOK_PRIORITIES_LANG" envDefault:"en-US"`
	MarkRead            string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The obligations SQLite database path")
	fs.StringVar(&cfg.NotificationsDBPath, "notifications-db-path", cfg.NotificationsDBPath, "The notification read-state SQLite database path")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "Language tag for notification copy")
	fs.StringVar(&cfg.MarkRead, "mark-read", cfg.MarkRead, "Mark the notification id as read and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run prints the ranked worklist and inbox, or records a read mark when
// -mark-read is set.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePriorities, func(ctx context.Context) error {
		return run(ctx, cfg, os.Stdout)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	store, err := obligationsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open obligations sqlite store: %w", err)
	}
	defer store.Close()

	readStore, err := notifsqlite.Open(cfg.NotificationsDBPath)
	if err != nil {
		return fmt.Errorf("open notifications sqlite store: %w", err)
	}
	defer readStore.Close()

	adapter := app.NewStoreAdapter(store)
	printer := render.Printer(render.NormalizeTag(cfg.Lang))
	inbox := notifdomain.NewService(adapter, readStore, printer, time.Now)

	if markRead := strings.TrimSpace(cfg.MarkRead); markRead != "" {
		if _, err := readStore.GetRead(ctx, markRead); err == nil {
			fmt.Fprintf(out, "%s was already read\n", markRead)
			return nil
		} else if !errors.Is(err, notifstorage.ErrNotFound) {
			return fmt.Errorf("load read mark: %w", err)
		}
		if err := inbox.MarkRead(ctx, markRead); err != nil {
			return fmt.Errorf("mark notification read: %w", err)
		}
		fmt.Fprintf(out, "marked %s as read\n", markRead)
		return nil
	}

	service := obligations.NewService(adapter, time.Now)
	priorities, err := service.TopPriorities(ctx)
	if err != nil {
		return fmt.Errorf("rank priorities: %w", err)
	}
	notifications, err := inbox.Inbox(ctx)
	if err != nil {
		return fmt.Errorf("load inbox: %w", err)
	}

	// Read marks whose ids no generation can produce anymore are dead weight.
	live := make([]string, 0, len(notifications))
	for _, notification := range notifications {
		live = append(live, notification.ID)
	}
	if _, err := readStore.PruneReads(ctx, live); err != nil {
		return fmt.Errorf("prune stale read marks: %w", err)
	}

	writeReport(out, priorities, notifications)
	return nil
}

func writeReport(out io.Writer, priorities []obligations.RankedPriority, notifications []notifdomain.Notification) {
	fmt.Fprintln(out, "Top priorities:")
	if len(priorities) == 0 {
		fmt.Fprintln(out, "  (nothing needs attention)")
	}
	for i, priority := range priorities {
		fmt.Fprintf(out, "  %d. [%3d] %s %s (%s)\n",
			i+1, priority.UrgencyScore, priority.Title, priority.Reason, priority.ActionURL)
	}

	unread := 0
	for _, notification := range notifications {
		if !notification.IsRead {
			unread++
		}
	}
	fmt.Fprintf(out, "Notifications (%d unread):\n", unread)
	if len(notifications) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, notification := range notifications {
		marker := " "
		if !notification.IsRead {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s [%s] %s: %s\n",
			marker, notification.Priority, notification.Title, notification.Message)
	}
}
