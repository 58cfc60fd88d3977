package httpapi

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/openbridge-io/bridge-core/internal/attest"
	"github.com/openbridge-io/bridge-core/internal/bridge"
	"github.com/openbridge-io/bridge-core/internal/constants"
	"github.com/openbridge-io/bridge-core/internal/registry"
	"github.com/openbridge-io/bridge-core/internal/token"
)

// Handler is a convenience type so we can wrap common behavior.
type Handler func(http.ResponseWriter, *http.Request)

func requireMethod(method string, next Handler) Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeJSON(w, http.StatusMethodNotAllowed, opResponse{OK: false, Error: "method not allowed"})
			return
		}
		next(w, r)
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeOpError maps the custody taxonomy onto stable HTTP statuses so
// an automated relay can tell a permanently invalid attestation from a
// malformed request.
func writeOpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, bridge.ErrBadArgs),
		errors.Is(err, registry.ErrBadName),
		errors.Is(err, registry.ErrBadSymbol),
		errors.Is(err, registry.ErrBadChainID):
		status = http.StatusBadRequest
	case errors.Is(err, bridge.ErrBadSigner):
		status = http.StatusUnauthorized
	case errors.Is(err, bridge.ErrInsufficientFee):
		status = http.StatusPaymentRequired
	case errors.Is(err, bridge.ErrTokenDoesNotExist):
		status = http.StatusNotFound
	case errors.Is(err, registry.ErrAlreadyWrapped):
		status = http.StatusConflict
	case errors.Is(err, bridge.ErrTransferFailed),
		errors.Is(err, token.ErrInsufficientAllowance):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, opResponse{OK: false, Error: err.Error()})
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, errors.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return nil, errors.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

func parseDigest(raw string) (common.Hash, error) {
	b, err := hexutil.Decode(raw)
	if err != nil {
		return common.Hash{}, errors.Errorf("invalid digest %q", raw)
	}
	if err := attest.EnsureDigest32(b); err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(b), nil
}

func parseSignature(raw string) ([]byte, error) {
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != constants.SignatureSize {
		return nil, errors.Errorf("invalid signature %q", raw)
	}
	return b, nil
}
