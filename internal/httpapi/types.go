package httpapi

type lockRequest struct {
	Caller        string `json:"caller"`
	TargetChainID uint64 `json:"targetChainId"`
	Asset         string `json:"asset"`
	Amount        string `json:"amount"`
	PaymentWei    string `json:"paymentWei"`
}

type transferRequest struct {
	SourceChainID uint64 `json:"sourceChainId"`
	Asset         string `json:"asset"`
	Amount        string `json:"amount"`
	Receiver      string `json:"receiver"`
	WrappedName   string `json:"wrappedName,omitempty"`
	WrappedSymbol string `json:"wrappedSymbol,omitempty"`
	Digest        string `json:"digest"`
	Signature     string `json:"signature"`
}

type burnRequest struct {
	Caller        string `json:"caller"`
	SourceChainID uint64 `json:"sourceChainId"`
	Asset         string `json:"asset"`
	Amount        string `json:"amount"`
	Receiver      string `json:"receiver"`
}

type opResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type lockedResponse struct {
	Asset  string `json:"asset"`
	Locked string `json:"locked"`
}

type feesResponse struct {
	CollectedWei string `json:"collectedWei"`
	ServiceWei   string `json:"serviceWei"`
}

type wrappedRecord struct {
	HomeChainID uint64 `json:"homeChainId"`
	HomeAsset   string `json:"homeAsset"`
	Wrapped     string `json:"wrapped"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	ChainID uint64 `json:"chainId"`
}
