package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-explorer/internal/config"
	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/domain/repositories"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/cache"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/httpclient"
)

// ProviderName identifies the block explorer in errors, logs and metrics
const ProviderName = "etherscan"

const (
	statusOK             = "1"
	noTransactionsFound  = "No transactions found"
	transactionPageLimit = 1000
	latestEndBlock       = "99999999"
)

var _ repositories.ExplorerProvider = (*Client)(nil)

// Client talks to the Etherscan v2 multichain API
type Client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewClient creates a new block explorer client
func NewClient(cfg config.EtherscanConfig, timeout time.Duration, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *Client {
	logger = logger.Named(ProviderName)
	return &Client{
		http: httpclient.New(httpclient.Options{
			Provider:  ProviderName,
			Timeout:   timeout,
			Cache:     c,
			CacheTTL:  cacheTTL,
			RateLimit: cfg.RateLimitRPS,
		}, logger),
		baseURL: cfg.APIURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// apiQuery is the query string of every Etherscan call
type apiQuery struct {
	ChainID    string `url:"chainid"`
	Module     string `url:"module"`
	Action     string `url:"action"`
	Address    string `url:"address,omitempty"`
	Tag        string `url:"tag,omitempty"`
	StartBlock string `url:"startblock,omitempty"`
	EndBlock   string `url:"endblock,omitempty"`
	Page       int    `url:"page,omitempty"`
	Offset     int    `url:"offset,omitempty"`
	Sort       string `url:"sort,omitempty"`
	APIKey     string `url:"apikey,omitempty"`
}

// envelope is the common Etherscan response wrapper
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// resultText returns the result as a string when the API put an error message there
func (e *envelope) resultText() string {
	var s string
	if err := json.Unmarshal(e.Result, &s); err == nil {
		return s
	}
	return string(e.Result)
}

type transaction struct {
	BlockNumber       string `json:"blockNumber"`
	TimeStamp         string `json:"timeStamp"`
	Hash              string `json:"hash"`
	Nonce             string `json:"nonce"`
	BlockHash         string `json:"blockHash"`
	TransactionIndex  string `json:"transactionIndex"`
	From              string `json:"from"`
	To                string `json:"to"`
	Value             string `json:"value"`
	Gas               string `json:"gas"`
	GasPrice          string `json:"gasPrice"`
	IsError           string `json:"isError"`
	TxReceiptStatus   string `json:"txreceipt_status"`
	Input             string `json:"input"`
	ContractAddress   string `json:"contractAddress"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
	GasUsed           string `json:"gasUsed"`
	Confirmations     string `json:"confirmations"`
	MethodID          string `json:"methodId"`
	FunctionName      string `json:"functionName"`
}

type etherPrice struct {
	ETHBTC          string `json:"ethbtc"`
	ETHBTCTimestamp string `json:"ethbtc_timestamp"`
	ETHUSD          string `json:"ethusd"`
	ETHUSDTimestamp string `json:"ethusd_timestamp"`
}

// GetNativeBalance returns the balance of address in wei
func (c *Client) GetNativeBalance(ctx context.Context, address, chainID string) (*big.Int, error) {
	q := apiQuery{
		ChainID: chainID,
		Module:  "account",
		Action:  "balance",
		Address: address,
		Tag:     "latest",
	}

	var env envelope
	var wei *big.Int
	err := c.call(ctx, q, &env, func() error {
		if env.Status != statusOK {
			return fmt.Errorf("balance request failed: %s: %s", env.Message, env.resultText())
		}
		v, ok := new(big.Int).SetString(strings.TrimSpace(env.resultText()), 10)
		if !ok {
			return fmt.Errorf("balance result is not an integer: %q", env.resultText())
		}
		wei = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	return wei, nil
}

// GetTransactions returns the latest normal transactions of address, newest first
func (c *Client) GetTransactions(ctx context.Context, address, chainID string) ([]entities.Transaction, error) {
	q := apiQuery{
		ChainID:    chainID,
		Module:     "account",
		Action:     "txlist",
		Address:    address,
		StartBlock: "0",
		EndBlock:   latestEndBlock,
		Page:       1,
		Offset:     transactionPageLimit,
		Sort:       "desc",
	}

	var env envelope
	var rows []transaction
	err := c.call(ctx, q, &env, func() error {
		if env.Status != statusOK {
			if env.Message == noTransactionsFound {
				rows = nil
				return nil
			}
			return fmt.Errorf("transaction list request failed: %s: %s", env.Message, env.resultText())
		}
		if err := json.Unmarshal(env.Result, &rows); err != nil {
			return fmt.Errorf("unexpected transaction list format: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	txs := make([]entities.Transaction, 0, len(rows))
	for _, r := range rows {
		txs = append(txs, toTransaction(r))
	}

	return txs, nil
}

// GetEtherPrice returns the latest native currency price
func (c *Client) GetEtherPrice(ctx context.Context, chainID string) (*entities.EtherPrice, error) {
	q := apiQuery{
		ChainID: chainID,
		Module:  "stats",
		Action:  "ethprice",
	}

	var env envelope
	var price etherPrice
	err := c.call(ctx, q, &env, func() error {
		if env.Status != statusOK {
			return fmt.Errorf("price request failed: %s: %s", env.Message, env.resultText())
		}
		if err := json.Unmarshal(env.Result, &price); err != nil {
			return fmt.Errorf("unexpected price format: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &entities.EtherPrice{
		ETHBTC:          price.ETHBTC,
		ETHBTCTimestamp: price.ETHBTCTimestamp,
		ETHUSD:          price.ETHUSD,
		ETHUSDTimestamp: price.ETHUSDTimestamp,
	}, nil
}

// call encodes q, performs the request and runs check on the decoded envelope.
// check also runs on cache hits so that derived values are always populated.
func (c *Client) call(ctx context.Context, q apiQuery, env *envelope, check func() error) error {
	q.APIKey = c.apiKey
	values, err := query.Values(q)
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	url := c.baseURL + "?" + values.Encode()

	checked := false
	req := httpclient.Request{
		Method: http.MethodGet,
		URL:    url,
		Check: func() error {
			checked = true
			return check()
		},
	}

	if err := c.http.Do(ctx, req, env); err != nil {
		c.logger.Debug("Explorer request failed",
			zap.String("module", q.Module),
			zap.String("action", q.Action),
			zap.Error(err),
		)
		return err
	}

	if !checked {
		if err := check(); err != nil {
			return &entities.UpstreamError{Provider: ProviderName, StatusCode: http.StatusOK, Err: err}
		}
	}

	return nil
}

func toTransaction(t transaction) entities.Transaction {
	return entities.Transaction{
		Hash:              t.Hash,
		BlockNumber:       t.BlockNumber,
		BlockHash:         t.BlockHash,
		Timestamp:         t.TimeStamp,
		Nonce:             t.Nonce,
		TransactionIndex:  t.TransactionIndex,
		From:              t.From,
		To:                t.To,
		Value:             t.Value,
		Gas:               t.Gas,
		GasPrice:          t.GasPrice,
		GasUsed:           t.GasUsed,
		CumulativeGasUsed: t.CumulativeGasUsed,
		IsError:           t.IsError,
		TxReceiptStatus:   t.TxReceiptStatus,
		Input:             t.Input,
		ContractAddress:   t.ContractAddress,
		MethodID:          t.MethodID,
		FunctionName:      t.FunctionName,
		Confirmations:     t.Confirmations,
	}
}
