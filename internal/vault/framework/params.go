package framework

import (
	"time"

	"github.com/pkg/errors"

	"github.com/axiomesh/axiom-vault/internal/vault/epoch"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

// Params are fixed at genesis and stored with the vault.
type Params struct {
	Variant        string `json:"variant"`
	GenesisTime    int64  `json:"genesis_time"`
	EpochDuration  uint64 `json:"epoch_duration"`
	MaturityWindow uint64 `json:"maturity_window"`

	PermissionlessRewards bool `json:"permissionless_rewards"`
	VerifyConcurrency     int  `json:"verify_concurrency"`
}

func ParamsFromConfig(cfg repo.Vault) Params {
	return Params{
		Variant:               cfg.Variant,
		GenesisTime:           cfg.GenesisTime,
		EpochDuration:         uint64(cfg.EpochDuration.ToDuration() / time.Second),
		MaturityWindow:        cfg.MaturityWindow,
		PermissionlessRewards: cfg.PermissionlessRewards,
		VerifyConcurrency:     cfg.VerifyConcurrency,
	}
}

func (p Params) Validate() error {
	switch p.Variant {
	case repo.VariantPosition, repo.VariantShare:
	default:
		return errors.Errorf("unsupported vault variant %q", p.Variant)
	}
	if p.EpochDuration == 0 {
		return errors.New("epoch duration must be positive")
	}
	if p.MaturityWindow == 0 {
		return errors.New("maturity window must be positive")
	}
	return nil
}

func (p Params) Clock() *epoch.Clock {
	return &epoch.Clock{
		Genesis:  p.GenesisTime,
		Duration: p.EpochDuration,
	}
}
