package trader

import (
	"context"
	"fmt"

	"autotrader/internal/models"
)

// ExportState collects the full ledger into one snapshot for backup.
func (c *Coordinator) ExportState(ctx context.Context) (*models.Snapshot, error) {
	decisions, err := c.decisions.All(ctx)
	if err != nil {
		return nil, storagef("export decisions", err)
	}
	executions, err := c.execs.All(ctx)
	if err != nil {
		return nil, storagef("export executions", err)
	}
	config, err := c.config.All(ctx)
	if err != nil {
		return nil, storagef("export config", err)
	}
	holdings, err := c.holdings.List(ctx)
	if err != nil {
		return nil, storagef("export holdings", err)
	}

	return &models.Snapshot{
		Decisions:  decisions,
		Executions: executions,
		Config:     config,
		Holdings:   holdings,
	}, nil
}

// ImportState restores a snapshot row by row with upsert semantics, so a
// repeated import of the same snapshot is a no-op. Malformed rows are
// skipped and excluded from the restored count; config entries restore
// silently and are not counted, matching the export counterpart.
func (c *Coordinator) ImportState(ctx context.Context, snap *models.Snapshot) (int, error) {
	if snap == nil {
		return 0, invalidInputf("snapshot is required")
	}

	restored := 0

	for i := range snap.Decisions {
		d := &snap.Decisions[i]
		if d.ID <= 0 || !d.Action.Valid() || !d.Status.Valid() {
			fmt.Printf("[TRADER] Skipping malformed decision row (id=%d)\n", d.ID)
			continue
		}
		if err := c.decisions.Upsert(ctx, d); err != nil {
			fmt.Printf("[TRADER] Restore failed for decision %d: %v\n", d.ID, err)
			continue
		}
		restored++
	}

	for i := range snap.Executions {
		e := &snap.Executions[i]
		if e.ID <= 0 || e.DecisionID <= 0 || !e.Status.Valid() {
			fmt.Printf("[TRADER] Skipping malformed execution row (id=%d)\n", e.ID)
			continue
		}
		if err := c.execs.Upsert(ctx, e); err != nil {
			fmt.Printf("[TRADER] Restore failed for execution %d: %v\n", e.ID, err)
			continue
		}
		restored++
	}

	for k, v := range snap.Config {
		if _, ok := allowedConfigKeys[k]; !ok {
			fmt.Printf("[TRADER] Skipping unknown config key %q\n", k)
			continue
		}
		if err := c.config.Set(ctx, k, v); err != nil {
			fmt.Printf("[TRADER] Restore failed for config %s: %v\n", k, err)
		}
	}

	for i := range snap.Holdings {
		h := &snap.Holdings[i]
		if h.TokenAddress == "" {
			fmt.Println("[TRADER] Skipping holdings row without token address")
			continue
		}
		if err := c.holdings.Upsert(ctx, h); err != nil {
			fmt.Printf("[TRADER] Restore failed for holding %s: %v\n", h.TokenAddress, err)
			continue
		}
		restored++
	}

	// Explicit-id upserts leave the serial sequences behind MAX(id).
	if err := c.decisions.SyncIDSequence(ctx); err != nil {
		return restored, storagef("sync decision ids", err)
	}
	if err := c.execs.SyncIDSequence(ctx); err != nil {
		return restored, storagef("sync execution ids", err)
	}

	return restored, nil
}
