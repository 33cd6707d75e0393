package entities

// BalanceRecord is the native currency balance of a wallet on one chain
type BalanceRecord struct {
	Address   string `json:"address"`
	ChainID   string `json:"chain_id"`
	ChainName string `json:"chain_name"`
	Balance   string `json:"balance"` // native units, 6 fraction digits
	Unit      string `json:"unit"`
	Wei       string `json:"wei"`
}

// Transaction is a normal (external) transaction of a wallet
type Transaction struct {
	Hash              string `json:"hash"`
	BlockNumber       string `json:"block_number"`
	BlockHash         string `json:"block_hash"`
	Timestamp         string `json:"timestamp"`
	Nonce             string `json:"nonce"`
	TransactionIndex  string `json:"transaction_index"`
	From              string `json:"from"`
	To                string `json:"to"`
	Value             string `json:"value"`
	Gas               string `json:"gas"`
	GasPrice          string `json:"gas_price"`
	GasUsed           string `json:"gas_used"`
	CumulativeGasUsed string `json:"cumulative_gas_used"`
	IsError           string `json:"is_error"`
	TxReceiptStatus   string `json:"txreceipt_status"`
	Input             string `json:"input"`
	ContractAddress   string `json:"contract_address"`
	MethodID          string `json:"method_id"`
	FunctionName      string `json:"function_name"`
	Confirmations     string `json:"confirmations"`

	// Derived in native units
	ValueFormatted string `json:"value_formatted"`
	FeeFormatted   string `json:"fee_formatted"`
}

// EtherPrice is the latest native currency price quoted by the block explorer
type EtherPrice struct {
	ETHBTC          string `json:"ethbtc"`
	ETHBTCTimestamp string `json:"ethbtc_timestamp"`
	ETHUSD          string `json:"ethusd"`
	ETHUSDTimestamp string `json:"ethusd_timestamp"`
}

// WalletOverview joins everything shown for a single wallet lookup
type WalletOverview struct {
	Balance      *BalanceRecord      `json:"balance"`
	Transactions []Transaction       `json:"transactions"`
	Tokens       []NormalizedBalance `json:"tokens"`
}
