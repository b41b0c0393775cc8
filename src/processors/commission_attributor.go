package processors

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
)

// CommissionAttributor correlates a broker reference to candidate commission
// and risk-fee rows. References are embedded in free-text fee descriptions,
// so correlation is substring containment, not an exact key match. This is
// the only place that correlation happens; both matchers go through it.
type CommissionAttributor interface {
	// Commissions returns commission rows whose description contains the
	// broker reference and whose date is on or before the ceiling, ordered
	// by (import sequence, ref date).
	Commissions(ceiling time.Time, brokerRef string) ([]models.RawEntry, error)
	// RiskFees is the same lookup over risk-fee rows.
	RiskFees(ceiling time.Time, brokerRef string) ([]models.RawEntry, error)
}

// commissionAttributorImpl memoises the per-reference candidate lists, since
// every additional tranche of a chain repeats the same substring lookup.
// The date ceiling is applied after the cache; consumption filtering is the
// matcher's business.
type commissionAttributorImpl struct {
	store store.Store
	cache *cache.Cache
}

const (
	attributorCacheExpiration      = 5 * time.Minute
	attributorCacheCleanupInterval = 10 * time.Minute
)

// NewCommissionAttributor creates an attributor over the given store. Build
// a fresh one per processing run; the cache is only valid while the raw
// ledger is not being re-imported.
func NewCommissionAttributor(st store.Store) CommissionAttributor {
	return &commissionAttributorImpl{
		store: st,
		cache: cache.New(attributorCacheExpiration, attributorCacheCleanupInterval),
	}
}

func (c *commissionAttributorImpl) Commissions(ceiling time.Time, brokerRef string) ([]models.RawEntry, error) {
	return c.lookup(models.CategoryCommission, ceiling, brokerRef)
}

func (c *commissionAttributorImpl) RiskFees(ceiling time.Time, brokerRef string) ([]models.RawEntry, error) {
	return c.lookup(models.CategoryRiskFee, ceiling, brokerRef)
}

func (c *commissionAttributorImpl) lookup(cat models.Category, ceiling time.Time, brokerRef string) ([]models.RawEntry, error) {
	key := fmt.Sprintf("%d|%s", int(cat), brokerRef)
	var candidates []models.RawEntry
	if v, ok := c.cache.Get(key); ok {
		candidates = v.([]models.RawEntry)
	} else {
		var err error
		candidates, err = c.store.RawEntriesMatchingRef(cat, brokerRef)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, candidates, cache.DefaultExpiration)
	}

	var out []models.RawEntry
	for _, e := range candidates {
		if !e.RefDate.After(ceiling) {
			out = append(out, e)
		}
	}
	return out, nil
}
