// Package worker keeps an off-site copy of the budget tables. The snapshot
// store offers no durability or concurrency guarantees, so the household
// runs a mirror: every table-change event triggers a fresh copy of that
// table from the primary store to the mirror store.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lushlawncarepros/petersen-budget/internal/amqp"
	"github.com/lushlawncarepros/petersen-budget/internal/tabular"
)

type Mirror struct {
	primary tabular.SnapshotStore
	mirror  tabular.SnapshotStore
}

func NewMirror(primary, mirror tabular.SnapshotStore) *Mirror {
	return &Mirror{primary: primary, mirror: mirror}
}

// HandleChange copies the changed table. The event carries no row data;
// the snapshot store only deals in whole tables anyway, so a fresh read of
// the primary is both simplest and most current.
func (m *Mirror) HandleChange(ctx context.Context, msg *amqp.TableChangedMessage) error {
	grid, err := m.primary.Read(ctx, msg.Table)
	if err != nil {
		return fmt.Errorf("read primary %s: %w", msg.Table, err)
	}
	if err := m.mirror.Write(ctx, msg.Table, grid); err != nil {
		return fmt.Errorf("write mirror %s: %w", msg.Table, err)
	}
	slog.InfoContext(ctx, "Mirrored table snapshot",
		"table", msg.Table,
		"action", msg.Action,
		"actor", msg.Actor,
		"rows", len(grid))
	return nil
}

// MirrorAll copies both tables, used at worker startup to catch up on
// events missed while the worker was down.
func (m *Mirror) MirrorAll(ctx context.Context) error {
	for _, table := range []string{tabular.TransactionsTable, tabular.CategoriesTable} {
		grid, err := m.primary.Read(ctx, table)
		if err != nil {
			return fmt.Errorf("read primary %s: %w", table, err)
		}
		if err := m.mirror.Write(ctx, table, grid); err != nil {
			return fmt.Errorf("write mirror %s: %w", table, err)
		}
	}
	return nil
}
