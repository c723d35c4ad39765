package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/delaydex/delaydex-backend/internal/domain"
	"github.com/delaydex/delaydex-backend/internal/logx"
)

// closeMarketABI is the only contract surface the backend touches.
const closeMarketABI = `[{"inputs":[{"name":"marketId","type":"bytes32"},{"name":"outcome","type":"uint8"}],"name":"closeMarket","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

// backend is the subset of ethclient.Client the writer needs; tests supply a
// fake.
type backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Writer submits resolved outcomes to the market contract's closeMarket
// write. Retry and confirmation tracking are the caller's concern; the
// writer reports the transaction hash of the submitted write.
type Writer struct {
	backend  backend
	key      *ecdsa.PrivateKey
	from     common.Address
	contract common.Address
	chainID  *big.Int
	abi      abi.ABI
	logger   logx.Logger
}

// NewWriter builds a Writer from a hex-encoded signing key and contract
// address. Returns an error when the key or address cannot be parsed.
func NewWriter(b backend, privateKeyHex, contractAddress string, chainID int64, logger logx.Logger) (*Writer, error) {
	if b == nil {
		return nil, fmt.Errorf("chain writer: nil backend")
	}
	if logger == nil {
		logger = logx.Nop()
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("chain writer: parse private key: %w", err)
	}
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("chain writer: invalid contract address %q", contractAddress)
	}

	parsed, err := abi.JSON(strings.NewReader(closeMarketABI))
	if err != nil {
		return nil, fmt.Errorf("chain writer: parse ABI: %w", err)
	}

	return &Writer{
		backend:  b,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		contract: common.HexToAddress(contractAddress),
		chainID:  big.NewInt(chainID),
		abi:      parsed,
		logger:   logger,
	}, nil
}

// From returns the signing account address.
func (w *Writer) From() common.Address { return w.from }

// CloseMarket signs and sends closeMarket(marketId, outcome) and returns the
// transaction hash. The market identifier is an opaque hex token mapped onto
// bytes32 unmodified.
func (w *Writer) CloseMarket(ctx context.Context, marketID string, outcome domain.Outcome) (string, error) {
	data, err := w.abi.Pack("closeMarket", common.HexToHash(marketID), uint8(outcome))
	if err != nil {
		return "", fmt.Errorf("pack closeMarket: %w", err)
	}

	nonce, err := w.backend.PendingNonceAt(ctx, w.from)
	if err != nil {
		return "", fmt.Errorf("pending nonce: %w", err)
	}
	gasPrice, err := w.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}
	gas, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: w.from,
		To:   &w.contract,
		Data: data,
	})
	if err != nil {
		return "", fmt.Errorf("estimate gas: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &w.contract,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return "", fmt.Errorf("sign closeMarket: %w", err)
	}
	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send closeMarket: %w", err)
	}

	hash := signed.Hash().Hex()
	w.logger.Info("closeMarket submitted",
		logx.String("market_id", marketID),
		logx.String("outcome", outcome.String()),
		logx.String("tx_hash", hash),
	)
	return hash, nil
}
