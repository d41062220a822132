package solana

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRPCClient implements RPCClient for testing.
// It's behavior-focused: we set what it should return, not verify call
// sequences. The per-method function hooks take precedence over the static
// fields when set.
type mockRPCClient struct {
	accountInfo       *rpc.GetAccountInfoResult
	accountInfoErr    error
	accountInfoFn     func(solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	blockhash         solana.Hash
	blockhashErr      error
	sendSignature     solana.Signature
	sendErr           error
	sendCalls         int
	statusResults     []*rpc.GetSignatureStatusesResult
	statusErr         error
	statusCalls       int
}

func (m *mockRPCClient) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	if m.accountInfoFn != nil {
		return m.accountInfoFn(account)
	}
	if m.accountInfoErr != nil {
		return nil, m.accountInfoErr
	}
	return m.accountInfo, nil
}

func (m *mockRPCClient) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	if m.blockhashErr != nil {
		return nil, m.blockhashErr
	}
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{
			Blockhash:            m.blockhash,
			LastValidBlockHeight: 12345,
		},
	}, nil
}

func (m *mockRPCClient) SendRawTransaction(ctx context.Context, serializedTx []byte, opts rpc.TransactionOpts) (solana.Signature, error) {
	m.sendCalls++
	if m.sendErr != nil {
		return solana.Signature{}, m.sendErr
	}
	return m.sendSignature, nil
}

func (m *mockRPCClient) GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, signatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	m.statusCalls++
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	if len(m.statusResults) == 0 {
		return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{nil}}, nil
	}
	result := m.statusResults[0]
	if len(m.statusResults) > 1 {
		m.statusResults = m.statusResults[1:]
	}
	return result, nil
}

var (
	testMint      = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	testSignature = solana.MustSignatureFromBase58("5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(mock *mockRPCClient, decimals uint8) *Client {
	return NewClient(mock, DefaultTokenConfig(testMint, decimals), "test", nil, testLogger())
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	mock := &mockRPCClient{sendSignature: testSignature}
	client := newTestClient(mock, 6)

	sig, err := client.Submit(ctx, []byte("signed-tx"))
	require.NoError(t, err)
	assert.Equal(t, testSignature, sig)
	assert.Equal(t, 1, mock.sendCalls)
}

func TestSubmit_RejectionIsNotRetried(t *testing.T) {
	ctx := context.Background()

	mock := &mockRPCClient{sendErr: errors.New("Transaction simulation failed")}
	client := newTestClient(mock, 6)

	_, err := client.Submit(ctx, []byte("signed-tx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, 1, mock.sendCalls, "non-rate-limit rejections should not be retried")
}
