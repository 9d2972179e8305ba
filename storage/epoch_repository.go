package storage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

const epochPrefix = "epoch:"

// ErrEpochExists is returned when an epoch number was already recorded.
// Epoch runs are single-writer; the loser of an accidental race must fail.
var ErrEpochExists = errors.New("storage: epoch already recorded")

type EpochRepository struct {
	db Store
}

func NewEpochRepository(db Store) *EpochRepository {
	return &EpochRepository{db: db}
}

func epochKey(number int) string {
	return fmt.Sprintf("%s%010d", epochPrefix, number)
}

// Create records an epoch, failing if its number already exists.
func (r *EpochRepository) Create(epoch core.Epoch) error {
	key := epochKey(epoch.EpochNumber)
	if _, err := r.db.Get(key); err == nil {
		return ErrEpochExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return r.db.PutObject(key, epoch)
}

func (r *EpochRepository) Get(number int) (core.Epoch, error) {
	var epoch core.Epoch
	err := r.db.GetObject(epochKey(number), &epoch)
	return epoch, err
}

// MaxNumber returns the highest recorded epoch number, 0 when none exist.
func (r *EpochRepository) MaxNumber() (int, error) {
	epochs, err := r.all()
	if err != nil {
		return 0, err
	}

	max := 0
	for _, e := range epochs {
		if e.EpochNumber > max {
			max = e.EpochNumber
		}
	}
	return max, nil
}

// Recent returns up to limit epochs, newest first.
func (r *EpochRepository) Recent(limit int) ([]core.Epoch, error) {
	epochs, err := r.all()
	if err != nil {
		return nil, err
	}

	sort.Slice(epochs, func(i, j int) bool { return epochs[i].EpochNumber > epochs[j].EpochNumber })
	if limit > 0 && len(epochs) > limit {
		epochs = epochs[:limit]
	}
	return epochs, nil
}

func (r *EpochRepository) all() ([]core.Epoch, error) {
	values, err := r.db.GetByPrefix(epochPrefix)
	if err != nil {
		return nil, err
	}

	epochs := make([]core.Epoch, 0, len(values))
	for key, data := range values {
		var epoch core.Epoch
		if err := decode(data, &epoch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal epoch %s: %v", key, err)
		}
		epochs = append(epochs, epoch)
	}
	return epochs, nil
}
