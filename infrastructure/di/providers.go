package di

import (
	"context"
	"fmt"

	"simkernel/application/commands"
	"simkernel/application/commands/bus"
	commands_handlers "simkernel/application/commands/handlers"
	"simkernel/application/ports"
	"simkernel/application/queries"
	querybus "simkernel/application/queries/bus"
	queries_handlers "simkernel/application/queries/handlers"
	domainconfig "simkernel/domain/config"
	"simkernel/domain/core/validators"
	"simkernel/domain/versioning"
	"simkernel/infrastructure/config"
	"simkernel/infrastructure/messaging"
	dynamoledger "simkernel/infrastructure/persistence/dynamodb"
	"simkernel/infrastructure/persistence/memory"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideDomainConfig supplies the kernel's business constraints
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideOpValidator creates the op batch validator
func ProvideOpValidator(dc *domainconfig.DomainConfig) *validators.OpValidator {
	return validators.NewOpValidator(dc)
}

// ProvideStateHasher creates the canonical state hasher
func ProvideStateHasher(dc *domainconfig.DomainConfig) *versioning.StateHasher {
	return versioning.NewStateHasher(dc)
}

// ProvideSessionRegistry creates the in-process session registry
func ProvideSessionRegistry(
	dc *domainconfig.DomainConfig,
	validator *validators.OpValidator,
	hasher *versioning.StateHasher,
) ports.SessionRegistry {
	return memory.NewSessionRegistry(dc, validator, hasher)
}

// ProvideLedgerStore selects the ledger backend. The DynamoDB client is
// only constructed when that backend is configured.
func ProvideLedgerStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.LedgerStore, error) {
	switch cfg.LedgerBackend {
	case config.LedgerBackendMemory:
		return memory.NewLedgerStore(), nil
	case config.LedgerBackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := awsdynamodb.NewFromConfig(awsCfg)
		return dynamoledger.NewLedgerStore(client, cfg.LedgerTable, logger), nil
	}
	return nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
}

// ProvideEventPublisher creates the in-process event dispatcher
func ProvideEventPublisher(logger *zap.Logger) ports.EventPublisher {
	return messaging.NewEventDispatcher(logger)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) (interface{}, error)
}

// Handle implements bus.CommandHandler
func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	registry ports.SessionRegistry,
	ledger ports.LedgerStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	stageHandler := commands_handlers.NewStageDraftHandler(registry, publisher, logger)
	commandBus.Register(commands.StageDraftCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			stageCmd, ok := cmd.(commands.StageDraftCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return stageHandler.Handle(ctx, stageCmd)
		},
	})

	commitHandler := commands_handlers.NewCommitSessionHandler(registry, publisher, logger)
	commandBus.Register(commands.CommitSessionCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			commitCmd, ok := cmd.(commands.CommitSessionCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return commitHandler.Handle(ctx, commitCmd)
		},
	})

	markerHandler := commands_handlers.NewRecordMarkerHandler(ledger, publisher, logger)
	commandBus.Register(commands.RecordMarkerCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			markerCmd, ok := cmd.(commands.RecordMarkerCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return markerHandler.Handle(ctx, markerCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

// Handle implements querybus.QueryHandler
func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	registry ports.SessionRegistry,
	ledger ports.LedgerStore,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	stateHandler := queries_handlers.NewGetSessionStateHandler(registry, logger)
	queryBus.Register(queries.GetSessionStateQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			stateQuery, ok := query.(queries.GetSessionStateQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return stateHandler.Handle(ctx, stateQuery)
		},
	})

	listHandler := queries_handlers.NewListMarkersHandler(ledger, logger)
	queryBus.Register(queries.ListMarkersQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListMarkersQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listHandler.Handle(ctx, listQuery)
		},
	})

	verifyHandler := queries_handlers.NewVerifyChainHandler(ledger, logger)
	queryBus.Register(queries.VerifyChainQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			verifyQuery, ok := query.(queries.VerifyChainQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return verifyHandler.Handle(ctx, verifyQuery)
		},
	})

	return queryBus
}
