package repo

import (
	"math/big"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type GenesisConfig struct {
	Owner string `mapstructure:"owner" toml:"owner"`

	// opened or minted by the owner at genesis so total shares never return to zero
	SeedDeposit string `mapstructure:"seed_deposit" toml:"seed_deposit"`

	Accounts     []*Account     `mapstructure:"accounts" toml:"accounts"`
	RewardTokens []*RewardToken `mapstructure:"reward_tokens" toml:"reward_tokens"`
	Router       Router         `mapstructure:"router" toml:"router"`
}

type Account struct {
	Address string `mapstructure:"address" toml:"address"`
	Balance string `mapstructure:"balance" toml:"balance"`
}

type RewardToken struct {
	Name     string `mapstructure:"name" toml:"name"`
	Symbol   string `mapstructure:"symbol" toml:"symbol"`
	Address  string `mapstructure:"address" toml:"address"`
	Decimals uint8  `mapstructure:"decimals" toml:"decimals"`

	// minted to the rewards distributor at genesis
	DistributorSupply string `mapstructure:"distributor_supply" toml:"distributor_supply"`
}

type Router struct {
	Liquidity string        `mapstructure:"liquidity" toml:"liquidity"`
	Rates     []*RouterRate `mapstructure:"rates" toml:"rates"`
}

type RouterRate struct {
	Token       string `mapstructure:"token" toml:"token"`
	Numerator   uint64 `mapstructure:"numerator" toml:"numerator"`
	Denominator uint64 `mapstructure:"denominator" toml:"denominator"`
}

// ParseAmount parses a decimal big integer amount from config.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, errors.Errorf("amount %q below zero", s)
	}
	return v, nil
}

func DefaultGenesisConfig() *GenesisConfig {
	accounts := []string{
		DefaultOwnerAddress,
		"0x79a1215469FaB6f9c63c1816b45183AD3624bE34",
		"0x97c8B516D19edBf575D72a172Af7F418BE498C37",
		"0xc0Ff2e0b3189132D815b8eb325bE17285AC898f8",
	}
	return &GenesisConfig{
		Owner:       DefaultOwnerAddress,
		SeedDeposit: DefaultSeedDeposit.String(),
		Accounts: lo.Map(accounts, func(addr string, _ int) *Account {
			return &Account{
				Address: addr,
				Balance: DefaultAccountBalance.String(),
			}
		}),
		RewardTokens: []*RewardToken{
			{
				Name:              "Convex Token",
				Symbol:            "CVX",
				Address:           "0x0000000000000000000000000000000000003001",
				Decimals:          18,
				DistributorSupply: DefaultRewardSupply.String(),
			},
			{
				Name:              "Curve DAO Token",
				Symbol:            "CRV",
				Address:           "0x0000000000000000000000000000000000003002",
				Decimals:          18,
				DistributorSupply: DefaultRewardSupply.String(),
			},
		},
		Router: Router{
			Liquidity: DefaultRouterBalance.String(),
			Rates: []*RouterRate{
				{Token: "0x0000000000000000000000000000000000003001", Numerator: 1, Denominator: 1},
				{Token: "0x0000000000000000000000000000000000003002", Numerator: 1, Denominator: 2},
			},
		},
	}
}

func LoadGenesisConfig(repoRoot string) (*GenesisConfig, error) {
	genesis, err := func() (*GenesisConfig, error) {
		genesis := DefaultGenesisConfig()
		cfgPath := path.Join(repoRoot, genesisCfgFileName)
		if !fileExist(cfgPath) {
			if err := os.MkdirAll(repoRoot, 0755); err != nil {
				return nil, errors.Wrap(err, "failed to build default genesis config")
			}

			if err := writeConfigWithEnv(cfgPath, genesis); err != nil {
				return nil, errors.Wrap(err, "failed to build default genesis config")
			}
		} else {
			if err := readConfigFromFile(cfgPath, genesis); err != nil {
				return nil, err
			}
		}
		return genesis, nil
	}()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load genesis config")
	}
	return genesis, nil
}
