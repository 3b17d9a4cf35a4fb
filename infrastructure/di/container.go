package di

import (
	"simkernel/application/commands/bus"
	"simkernel/application/ports"
	querybus "simkernel/application/queries/bus"
	"simkernel/infrastructure/config"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Registry   ports.SessionRegistry
	Ledger     ports.LedgerStore
	Publisher  ports.EventPublisher
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
}
