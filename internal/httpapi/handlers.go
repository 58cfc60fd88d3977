package httpapi

import (
	"net/http"

	"github.com/openbridge-io/bridge-core/internal/bridge"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true, ChainID: s.ledger.ChainID()})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	var req lockRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return
	}
	asset, err := parseAddress(req.Asset)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return
	}
	payment, err := parseAmount(req.PaymentWei)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return
	}

	if err := s.ledger.Lock(r.Context(), caller, req.TargetChainID, asset, amount, payment); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opResponse{OK: true})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTransfer(w, r)
	if !ok {
		return
	}
	if err := s.ledger.Release(r.Context(), req); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opResponse{OK: true})
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTransfer(w, r)
	if !ok {
		return
	}
	if err := s.ledger.Mint(r.Context(), req); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opResponse{OK: true})
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req burnRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	caller, err := parseAddress(req.Caller)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return
	}
	asset, err := parseAddress(req.Asset)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return
	}
	receiver, err := parseAddress(req.Receiver)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return
	}

	if err := s.ledger.Burn(r.Context(), caller, req.SourceChainID, asset, amount, receiver); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opResponse{OK: true})
}

func (s *Server) handleLocked(w http.ResponseWriter, r *http.Request) {
	asset, err := parseAddress(r.URL.Query().Get("asset"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return
	}
	locked := s.ledger.LockedBalance(asset)
	writeJSON(w, http.StatusOK, lockedResponse{Asset: asset.Hex(), Locked: locked.String()})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	recs := s.ledger.WrappedRecords()
	out := make([]wrappedRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, wrappedRecord{
			HomeChainID: rec.HomeChainID,
			HomeAsset:   rec.HomeAsset.Hex(),
			Wrapped:     rec.Wrapped.Hex(),
			Name:        rec.Name,
			Symbol:      rec.Symbol,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, feesResponse{
		CollectedWei: s.ledger.CollectedFees().String(),
		ServiceWei:   s.ledger.ServiceFee().String(),
	})
}

func (s *Server) decodeTransfer(w http.ResponseWriter, r *http.Request) (bridge.TransferRequest, bool) {
	var req transferRequest
	if !decodeJSONBody(w, r, &req) {
		return bridge.TransferRequest{}, false
	}

	asset, err := parseAddress(req.Asset)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return bridge.TransferRequest{}, false
	}
	receiver, err := parseAddress(req.Receiver)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return bridge.TransferRequest{}, false
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return bridge.TransferRequest{}, false
	}
	digest, err := parseDigest(req.Digest)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return bridge.TransferRequest{}, false
	}
	sig, err := parseSignature(req.Signature)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, opResponse{OK: false, Error: err.Error()})
		return bridge.TransferRequest{}, false
	}

	return bridge.TransferRequest{
		SourceChainID: req.SourceChainID,
		Asset:         asset,
		Amount:        amount,
		Receiver:      receiver,
		WrappedName:   req.WrappedName,
		WrappedSymbol: req.WrappedSymbol,
		Digest:        digest,
		Signature:     sig,
	}, true
}
