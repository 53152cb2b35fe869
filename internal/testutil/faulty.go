package testutil

import (
	"context"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// FaultyGateway wraps a gateway and fails transaction inserts chosen by
// FailAdd. Gateways handed out by WithTx carry the same fault.
type FaultyGateway struct {
	service.Gateway
	FailAdd func(model.Transaction) error
}

// Transactions returns the wrapped transaction collection with the fault applied.
func (g *FaultyGateway) Transactions() service.Collection[model.Transaction] {
	return &faultyTransactions{
		Collection: g.Gateway.Transactions(),
		failAdd:    g.FailAdd,
	}
}

// WithTx runs fn inside the wrapped gateway's unit of work.
func (g *FaultyGateway) WithTx(ctx context.Context, fn func(service.Gateway) error) error {
	return g.Gateway.WithTx(ctx, func(inner service.Gateway) error {
		return fn(&FaultyGateway{Gateway: inner, FailAdd: g.FailAdd})
	})
}

type faultyTransactions struct {
	service.Collection[model.Transaction]
	failAdd func(model.Transaction) error
}

func (c *faultyTransactions) Add(ctx context.Context, txn model.Transaction) error {
	if c.failAdd != nil {
		if err := c.failAdd(txn); err != nil {
			return err
		}
	}
	return c.Collection.Add(ctx, txn)
}
