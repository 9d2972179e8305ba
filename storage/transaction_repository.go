package storage

import (
	"fmt"
	"sort"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

const txPrefix = "tx:"

type TransactionRepository struct {
	db Store
}

func NewTransactionRepository(db Store) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// txKey zero-pads epoch and sequence so lexical key order equals creation
// order, which the anchor hash depends on.
func txKey(epoch, seq int) string {
	return fmt.Sprintf("%s%010d:%04d", txPrefix, epoch, seq)
}

// SaveAll persists an epoch's transactions in one write transaction,
// numbering them by list position.
func (r *TransactionRepository) SaveAll(epoch int, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	objs := make(map[string]interface{}, len(txs))
	for i, tx := range txs {
		objs[txKey(epoch, i)] = tx
	}
	return r.db.PutObjects(objs)
}

// ByEpoch returns an epoch's transactions in creation order.
func (r *TransactionRepository) ByEpoch(epoch int) ([]core.Transaction, error) {
	prefix := fmt.Sprintf("%s%010d:", txPrefix, epoch)
	values, err := r.db.GetByPrefix(prefix)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	txs := make([]core.Transaction, 0, len(keys))
	for _, key := range keys {
		var tx core.Transaction
		if err := decode(values[key], &tx); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transaction %s: %v", key, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
