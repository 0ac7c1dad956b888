package marketplaceengine

import (
	"log/slog"

	httpadapter "nftmarket/contexts/market-core/marketplace-engine/adapters/http"
	"nftmarket/contexts/market-core/marketplace-engine/adapters/memory"
	"nftmarket/contexts/market-core/marketplace-engine/application"
	"nftmarket/contexts/market-core/marketplace-engine/ports"
)

const DefaultEscrowAccount = "marketplace-escrow"

type Module struct {
	Handler httpadapter.Handler
	Service application.Service

	// In-memory wiring only; nil when adapters are injected.
	Store  *memory.Store
	Assets *memory.AssetRegistry
	Ledger *memory.PaymentLedger
}

type Dependencies struct {
	Repository    ports.Repository
	Custody       ports.CustodyAdapter
	Payments      ports.PaymentLedger
	Royalty       ports.RoyaltySource
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Owner         string
	EscrowAccount string
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	escrow := deps.EscrowAccount
	if escrow == "" {
		escrow = DefaultEscrowAccount
	}
	service := application.Service{
		Repo:          deps.Repository,
		Custody:       deps.Custody,
		Payments:      deps.Payments,
		Royalty:       deps.Royalty,
		Clock:         deps.Clock,
		IDGen:         deps.IDGenerator,
		Owner:         deps.Owner,
		EscrowAccount: escrow,
		Logger:        deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the engine against in-memory registries and
// in-memory asset/payment collaborators, the setup used by tests and by
// deployments that have no external registry integration yet.
func NewInMemoryModule(owner string, logger *slog.Logger) Module {
	store := memory.NewStore()
	assets := memory.NewAssetRegistry()
	ledger := memory.NewPaymentLedger()
	module := NewModule(Dependencies{
		Repository:  store,
		Custody:     assets,
		Payments:    ledger,
		Royalty:     assets,
		Clock:       store,
		IDGenerator: store,
		Owner:       owner,
		Logger:      logger,
	})
	module.Store = store
	module.Assets = assets
	module.Ledger = ledger
	return module
}
