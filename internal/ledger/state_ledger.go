package ledger

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axiomesh/axiom-vault/internal/storagemgr/kv"
)

var _ StateLedger = (*StateLedgerImpl)(nil)

var ErrInsufficientFunds = errors.New("insufficient funds for transfer")

type revision struct {
	id           int
	changerIndex int
}

type StateLedgerImpl struct {
	logger  logrus.FieldLogger
	backend kv.Storage

	// accounts touched since the last commit
	accounts map[common.Address]*SimpleAccount

	// committed accounts, reused across commits
	accountCache *lru.Cache

	changer        *stateChanger
	validRevisions []revision
	nextRevisionId int

	version uint64
}

func NewStateLedger(backend kv.Storage, accountCacheSize int, logger logrus.FieldLogger) (*StateLedgerImpl, error) {
	if accountCacheSize <= 0 {
		accountCacheSize = 1024
	}
	accountCache, err := lru.New(accountCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "init account cache failed")
	}

	l := &StateLedgerImpl{
		logger:       logger,
		backend:      backend,
		accounts:     make(map[common.Address]*SimpleAccount),
		accountCache: accountCache,
		changer:      newChanger(),
	}
	if raw := backend.Get([]byte(versionKey)); len(raw) == 8 {
		l.version = binary.BigEndian.Uint64(raw)
	}
	versionMetric.Set(float64(l.version))
	return l, nil
}

func (l *StateLedgerImpl) loadAccount(addr common.Address) *SimpleAccount {
	if account, ok := l.accounts[addr]; ok {
		return account
	}

	if value, ok := l.accountCache.Get(addr); ok {
		accountCacheHitCounter.Inc()
		account := value.(*SimpleAccount)
		account.changer = l.changer
		l.accounts[addr] = account
		return account
	}
	accountCacheMissCounter.Inc()

	raw := l.backend.Get(compositeBalanceKey(addr))
	if raw == nil {
		return nil
	}
	account := NewAccount(l.logger, l.backend, addr, l.changer)
	account.originBalance = decodeBalance(raw)
	account.dirtyBalance = new(big.Int).Set(account.originBalance)
	account.exist = true
	l.accounts[addr] = account
	return account
}

func (l *StateLedgerImpl) GetAccount(addr common.Address) IAccount {
	account := l.loadAccount(addr)
	if account == nil {
		return nil
	}
	return account
}

func (l *StateLedgerImpl) GetOrCreateAccount(addr common.Address) IAccount {
	if account := l.loadAccount(addr); account != nil {
		return account
	}

	account := NewAccount(l.logger, l.backend, addr, l.changer)
	l.changer.append(createObjectChange{account: &account.Addr})
	l.accounts[addr] = account
	return account
}

func (l *StateLedgerImpl) GetBalance(addr common.Address) *big.Int {
	account := l.loadAccount(addr)
	if account == nil {
		return big.NewInt(0)
	}
	return account.GetBalance()
}

func (l *StateLedgerImpl) SetBalance(addr common.Address, value *big.Int) {
	l.GetOrCreateAccount(addr).SetBalance(value)
}

func (l *StateLedgerImpl) SubBalance(addr common.Address, value *big.Int) {
	l.GetOrCreateAccount(addr).SubBalance(value)
}

func (l *StateLedgerImpl) AddBalance(addr common.Address, value *big.Int) {
	l.GetOrCreateAccount(addr).AddBalance(value)
}

func (l *StateLedgerImpl) Transfer(from, to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.Errorf("transfer amount %s below zero", amount.String())
	}
	if l.GetBalance(from).Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientFunds, "%s has %s, need %s", from.Hex(), l.GetBalance(from).String(), amount.String())
	}
	l.SubBalance(from, amount)
	l.AddBalance(to, amount)
	return nil
}

func (l *StateLedgerImpl) GetState(addr common.Address, key []byte) (bool, []byte) {
	account := l.loadAccount(addr)
	if account == nil {
		return false, nil
	}
	return account.GetState(key)
}

func (l *StateLedgerImpl) SetState(addr common.Address, key []byte, value []byte) {
	l.GetOrCreateAccount(addr).SetState(key, value)
}

func (l *StateLedgerImpl) Exist(addr common.Address) bool {
	account := l.loadAccount(addr)
	return account != nil && !account.IsEmpty()
}

func (l *StateLedgerImpl) Snapshot() int {
	id := l.nextRevisionId
	l.nextRevisionId++
	l.validRevisions = append(l.validRevisions, revision{id: id, changerIndex: l.changer.length()})
	return id
}

func (l *StateLedgerImpl) RevertToSnapshot(revid int) {
	idx := sort.Search(len(l.validRevisions), func(i int) bool {
		return l.validRevisions[i].id >= revid
	})
	if idx == len(l.validRevisions) || l.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannod be reverted", revid))
	}
	snap := l.validRevisions[idx].changerIndex

	l.changer.revert(l, snap)
	l.validRevisions = l.validRevisions[:idx]
}

func (l *StateLedgerImpl) Finalise() {
	for _, account := range l.accounts {
		account.finalise()
	}
	l.changer.reset()
	l.validRevisions = l.validRevisions[:0]
}

// Commit finalises any open transaction and persists everything since the last commit.
func (l *StateLedgerImpl) Commit() error {
	current := time.Now()
	l.Finalise()

	batch := l.backend.NewBatch()
	var flushed int
	for _, account := range l.accounts {
		if account.dirty() {
			account.flush(batch)
			flushed++
		}
	}
	version := make([]byte, 8)
	binary.BigEndian.PutUint64(version, l.version+1)
	batch.Put([]byte(versionKey), version)
	batch.Commit()

	for addr, account := range l.accounts {
		if account.exist {
			l.accountCache.Add(addr, account)
		}
	}
	l.accounts = make(map[common.Address]*SimpleAccount)
	l.version++

	versionMetric.Set(float64(l.version))
	commitDuration.Observe(float64(time.Since(current)) / float64(time.Second))
	l.logger.WithFields(logrus.Fields{
		"version":  l.version,
		"accounts": flushed,
		"elapse":   time.Since(current),
	}).Debug("Commit state ledger")
	return nil
}

func (l *StateLedgerImpl) Version() uint64 {
	return l.version
}

func (l *StateLedgerImpl) Close() {
	if err := l.backend.Close(); err != nil {
		l.logger.WithField("err", err).Warn("Close state ledger backend failed")
	}
}

// IterateState walks the committed state of addr in key order.
func (l *StateLedgerImpl) IterateState(addr common.Address, fn func(key, value []byte) bool) error {
	it := l.backend.Prefix(StoragePrefix(addr))
	defer it.Release()
	for it.Next() {
		_, key, ok := SplitStorageKey(it.Key())
		if !ok {
			continue
		}
		if !fn(key, it.Value()) {
			break
		}
	}
	return it.Error()
}
