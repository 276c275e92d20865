// Package onchain reads ERC-721 ownership over a JSON-RPC endpoint.
package onchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// erc721ABI covers the single view function this package calls.
const erc721ABI = `[{
	"constant": true,
	"inputs": [{"name": "owner", "type": "address"}],
	"name": "balanceOf",
	"outputs": [{"name": "", "type": "uint256"}],
	"stateMutability": "view",
	"type": "function"
}]`

// ErrNotConfigured is returned by Dial when no RPC endpoint is configured.
var ErrNotConfigured = errors.New("on-chain rpc endpoint not configured")

// ErrNoContractCode is returned when the call returns no data, which is what
// nodes answer for an address without contract code.
var ErrNoContractCode = errors.New("empty call result; no contract code at address")

// BalanceReader reads the ERC-721 balance of owner on contract.
type BalanceReader interface {
	BalanceOf(ctx context.Context, contract, owner common.Address) (*big.Int, error)
}

// ConnectivityStatus is reported by the health endpoint.
type ConnectivityStatus struct {
	Connected bool
	ChainID   string
}

// Client is a read-only ERC-721 client. It is safe for concurrent use.
type Client struct {
	eth *ethclient.Client
	abi abi.ABI
}

// Dial connects to the JSON-RPC endpoint at rpcURL. HTTP endpoints do not
// perform any request until the first call.
func Dial(ctx context.Context, rpcURL string) (*Client, error) {
	if strings.TrimSpace(rpcURL) == "" {
		return nil, ErrNotConfigured
	}

	parsed, err := abi.JSON(strings.NewReader(erc721ABI))
	if err != nil {
		return nil, fmt.Errorf("parsing erc721 abi: %w", err)
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dialing rpc endpoint: %w", err)
	}

	return &Client{eth: eth, abi: parsed}, nil
}

// BalanceOf calls balanceOf(owner) on contract at the latest block.
func (c *Client) BalanceOf(ctx context.Context, contract, owner common.Address) (*big.Int, error) {
	data, err := c.abi.Pack("balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("packing balanceOf call: %w", err)
	}

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling balanceOf: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoContractCode
	}

	values, err := c.abi.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("unpacking balanceOf result: %w", err)
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", values[0])
	}
	return balance, nil
}

// CheckConnectivity asks the node for its chain id.
func (c *Client) CheckConnectivity(ctx context.Context) ConnectivityStatus {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return ConnectivityStatus{Connected: false}
	}
	return ConnectivityStatus{Connected: true, ChainID: id.String()}
}

// Close releases the underlying RPC client.
func (c *Client) Close() {
	c.eth.Close()
}
