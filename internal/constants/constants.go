package constants

const (
	AppName = "bridged"

	ConfigName = "bridged"
	EnvPrefix  = "BRIDGE"

	DigestSize    = 32
	SignatureSize = 65

	// NativeAddr is the zero-address sentinel for the chain's native
	// currency (no token contract behind it).
	NativeAddr = "0x0000000000000000000000000000000000000000"

	// System accounts. CustodyAddr holds escrowed home assets and
	// collected fees; RegistryAddr owns every deployed wrapped token
	// and is its sole minter/burner.
	CustodyAddr  = "0x0000000000000000000000000000000000000b01"
	RegistryAddr = "0x0000000000000000000000000000000000000b02"

	WrappedDecimals = 18

	// DefaultServiceFeeWei is the per-lock service fee when none is
	// configured (0.001 native units).
	DefaultServiceFeeWei = "1000000000000000"
)
