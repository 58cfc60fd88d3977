package config

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/openbridge-io/bridge-core/internal/bridge"
	"github.com/openbridge-io/bridge-core/internal/constants"
)

type Config struct {
	ListenHost string
	ListenPort string
	Bridge     bridge.Config
}

// Load reads bridged.yaml from ~/.config/bridged or the working
// directory, with BRIDGE_* environment overrides
// (e.g. BRIDGE_BRIDGE_TRUSTEDSIGNER).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType("yaml")

	home, _ := os.UserHomeDir()
	v.AddConfigPath(filepath.Join(home, ".config", constants.AppName))
	v.AddConfigPath(".")

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen.host", "127.0.0.1")
	v.SetDefault("listen.port", "8547")
	v.SetDefault("bridge.chainid", uint64(1))
	v.SetDefault("bridge.servicefeewei", constants.DefaultServiceFeeWei)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "config: read")
		}
		// config file optional, env/defaults are enough
	}

	cfg := &Config{
		ListenHost: v.GetString("listen.host"),
		ListenPort: v.GetString("listen.port"),
	}

	signerRaw := strings.TrimSpace(v.GetString("bridge.trustedsigner"))
	if !common.IsHexAddress(signerRaw) {
		return nil, errors.Errorf("config: invalid bridge.trustedsigner %q", signerRaw)
	}

	feeRaw := strings.TrimSpace(v.GetString("bridge.servicefeewei"))
	fee, ok := new(big.Int).SetString(feeRaw, 10)
	if !ok || fee.Sign() < 0 {
		return nil, errors.Errorf("config: invalid bridge.servicefeewei %q", feeRaw)
	}

	cfg.Bridge = bridge.Config{
		ChainID:       v.GetUint64("bridge.chainid"),
		TrustedSigner: common.HexToAddress(signerRaw),
		ServiceFeeWei: fee,
	}
	if err := cfg.Bridge.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
