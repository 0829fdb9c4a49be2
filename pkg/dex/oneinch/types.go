package oneinch

import "encoding/json"

// API response shapes for the 1inch v5.0 aggregation protocol.
// Field names follow the upstream JSON; decoding is case-insensitive.
// Token amounts come back as strings, gas fields as JSON numbers.

type tokenInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
}

type quoteResponse struct {
	FromToken       tokenInfo   `json:"fromToken"`
	ToToken         tokenInfo   `json:"toToken"`
	FromTokenAmount string      `json:"fromTokenAmount"`
	ToTokenAmount   string      `json:"toTokenAmount"`
	EstimatedGas    json.Number `json:"estimatedGas"`
}

type transactionData struct {
	From     string      `json:"from"`
	To       string      `json:"to"`
	Data     string      `json:"data"`
	Value    string      `json:"value"`
	Gas      json.Number `json:"gas"`
	GasPrice string      `json:"gasPrice"`
}

type swapResponse struct {
	FromToken       tokenInfo       `json:"fromToken"`
	ToToken         tokenInfo       `json:"toToken"`
	FromTokenAmount string          `json:"fromTokenAmount"`
	ToTokenAmount   string          `json:"toTokenAmount"`
	Tx              transactionData `json:"tx"`
}

type errorResponse struct {
	StatusCode  int    `json:"statusCode"`
	Error       string `json:"error"`
	Description string `json:"description"`
}
