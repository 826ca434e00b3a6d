package dto

// PlaceOrderRequest represents the order placement payload
type PlaceOrderRequest struct {
	WalletType    string  `json:"wallet_type"`
	ScripCode     string  `json:"scrip_code"`
	Side          string  `json:"side"`
	Kind          string  `json:"kind"`
	Quantity      float64 `json:"quantity"`
	LimitPrice    float64 `json:"limit_price"`
	CurrentPrice  float64 `json:"current_price"`
	StopLoss      float64 `json:"stop_loss"`
	Target1       float64 `json:"target_1"`
	Target2       float64 `json:"target_2"`
	TrailingType  string  `json:"trailing_type"`
	TrailingValue float64 `json:"trailing_value"`
}

// CloseTradeRequest represents a manual trade close payload. ExitPrice
// is optional; when omitted the last cached market price is used.
type CloseTradeRequest struct {
	ExitPrice float64 `json:"exit_price"`
}
