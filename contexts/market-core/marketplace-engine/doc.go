// Package marketplaceengine contains the custodial NFT marketplace
// settlement core: listing and offer registries, the payable-token
// whitelist, and the fee-split engine that runs on every sale or
// accepted offer.
//
// The module keeps domain/application logic decoupled from runtime/platform
// concerns through ports and adapter composition.
package marketplaceengine
