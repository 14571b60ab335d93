package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"macross/internal/broker"
	"macross/internal/state"
)

// ReconcileLoop periodically replaces the locally tracked position with the
// gateway's. The local position is only an optimistic guess between polls.
func ReconcileLoop(ctx context.Context, gateway broker.Gateway, store *state.Store, contract broker.ContractSpec, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reconcileOnce(ctx, gateway, store, contract, logger)
		}
	}
}

func reconcileOnce(ctx context.Context, gateway broker.Gateway, store *state.Store, contract broker.ContractSpec, logger zerolog.Logger) {
	position, err := gateway.Position(ctx, contract)
	if err != nil {
		logger.Warn().Err(err).Msg("reconcile position failed")
		return
	}

	previous := store.Snapshot().Position
	if previous.Qty != position.Qty {
		logger.Info().Int("local", previous.Qty).Int("broker", position.Qty).Msg("position reconciled")
	}
	store.UpdatePosition(state.Position{Qty: position.Qty, AvgCost: position.AvgCost})
}
