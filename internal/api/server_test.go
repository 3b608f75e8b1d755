package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/axiomesh/axiom-vault/internal/ledger"
	"github.com/axiomesh/axiom-vault/internal/storagemgr/kv"
	"github.com/axiomesh/axiom-vault/internal/vault"
	"github.com/axiomesh/axiom-vault/internal/vault/base"
	"github.com/axiomesh/axiom-vault/internal/vault/framework"
	"github.com/axiomesh/axiom-vault/pkg/loggers"
	"github.com/axiomesh/axiom-vault/pkg/repo"
)

const testEpochDuration = 100

var alice = ethcommon.HexToAddress("0x79a1215469FaB6f9c63c1816b45183AD3624bE34")

type testServer struct {
	rep   *repo.Repo
	ts    *atomic.Uint64
	vault *vault.Vault
	http  *httptest.Server
}

func newTestServer(t *testing.T, variant string, adjust func(rep *repo.Repo)) *testServer {
	rep := repo.Default(t.TempDir())
	rep.Config.Vault.Variant = variant
	rep.Config.Vault.EpochDuration = repo.Duration(testEpochDuration * time.Second)
	if adjust != nil {
		adjust(rep)
	}
	ts := atomic.NewUint64(0)
	stateLedger, err := ledger.NewStateLedger(kv.NewMemory(), 128, loggers.Logger(loggers.Ledger))
	require.Nil(t, err)
	v, err := vault.New(rep, stateLedger, vault.WithTimeSource(ts.Load))
	require.Nil(t, err)
	s, err := New(rep, v)
	require.Nil(t, err)
	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)
	return &testServer{rep: rep, ts: ts, vault: v, http: server}
}

func (s *testServer) do(t *testing.T, method, path string, out any) int {
	req, err := http.NewRequest(method, s.http.URL+path, nil)
	require.Nil(t, err)
	req.Header.Set("Origin", "http://localhost")
	resp, err := http.DefaultClient.Do(req)
	require.Nil(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.Nil(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServer_Status(t *testing.T) {
	s := newTestServer(t, repo.VariantShare, nil)

	var status vault.Status
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/status", &status))
	assert.Equal(t, repo.VariantShare, status.Variant)
	assert.Equal(t, repo.DefaultSeedDeposit.String(), status.NAV.String())
	assert.EqualValues(t, repo.DefaultMaturityWindow, status.NextCycle)

	var report framework.InvariantReport
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/invariants", &report))
	assert.Empty(t, report.Violations)

	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodPost, "/v1/status", nil))
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/metrics", nil))
}

func TestServer_QueueFlow(t *testing.T) {
	s := newTestServer(t, repo.VariantShare, nil)
	_, err := s.vault.Mint(alice, repo.CoinNumberByUnit(2))
	require.Nil(t, err)
	unlockEpoch, err := s.vault.RequestWithdraw(alice, repo.CoinNumberByUnit(1))
	require.Nil(t, err)

	var entries []*framework.QueueEntry
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/queue", &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, framework.EntryStatusPending, entries[0].Status)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/queue/"+alice.Hex(), &entries))
	assert.Len(t, entries, 1)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/queue/0x1234", nil))

	var claims []*base.Claim
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/claims", &claims))
	assert.Len(t, claims, 2)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/claims/"+alice.Hex(), &claims))
	require.Len(t, claims, 1)
	assert.Equal(t, repo.CoinNumberByUnit(1).String(), claims[0].Shares.String())

	var tick framework.TickResult
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/tick", &tick))
	assert.False(t, tick.CycleRun)

	s.ts.Store(unlockEpoch * testEpochDuration)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/v1/process-queue?max=0", nil))
	var result framework.ProcessResult
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/v1/process-queue?max=5", &result))
	assert.True(t, result.Tick.CycleRun)
	assert.Equal(t, []uint64{1}, result.Settled)
	assert.Equal(t, repo.CoinNumberByUnit(1).String(), result.Paid.String())
}

func TestServer_Position(t *testing.T) {
	s := newTestServer(t, repo.VariantPosition, nil)
	id, err := s.vault.Open(alice, repo.CoinNumberByUnit(1))
	require.Nil(t, err)

	var position base.Claim
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, fmt.Sprintf("/v1/positions/%d", id), &position))
	assert.Equal(t, alice, position.Owner)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/positions/99", nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/positions/abc", nil))

	var balance map[string]any
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/balances/"+alice.Hex(), &balance))
	assert.NotNil(t, balance["shares"])
}

func TestServer_RateLimit(t *testing.T) {
	s := newTestServer(t, repo.VariantShare, func(rep *repo.Repo) {
		rep.Config.API.Limiter = repo.JLimiter{
			Interval: repo.Duration(time.Hour),
			Quantum:  1,
			Capacity: 2,
			Enable:   true,
		}
	})
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/status", nil))
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/status", nil))
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodGet, "/v1/status", nil))
}

func TestNewJRateLimiterWithQuantum(t *testing.T) {
	_, err := NewJRateLimiterWithQuantum(0, 1, 1)
	assert.NotNil(t, err)
	_, err = NewJRateLimiterWithQuantum(time.Second, 0, 1)
	assert.NotNil(t, err)
	limiter, err := NewJRateLimiterWithQuantum(time.Second, 10, 1)
	require.Nil(t, err)
	assert.EqualValues(t, 10, limiter.Available())
}
