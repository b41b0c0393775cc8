package classifier

import (
	"log/slog"
	"regexp"

	"github.com/username/tradeherder/src/logger"
	"github.com/username/tradeherder/src/models"
	"github.com/username/tradeherder/src/store"
)

// rule matches a ledger row by its type code and, when set, a pattern over
// its description. Rules are tried in order; the first hit wins.
type rule struct {
	typeCode string
	pattern  *regexp.Regexp
	category models.Category
}

// Description patterns are case-insensitive: broker exports have changed
// letter case across the years without changing meaning.
var rules = []rule{
	{"DEAL", regexp.MustCompile(`(?i)Australia\s*200`), models.CategoryIndex},
	{"DEAL", nil, models.CategoryTrade},
	{"DEPO", regexp.MustCompile(`(?i)BPAY`), models.CategoryTransfer},
	{"WITH", regexp.MustCompile(`(?i)eft payment sent`), models.CategoryTransfer},
	{"EXCHANGE", nil, models.CategoryExchangeFee},
	{"", regexp.MustCompile(`(?i)ASX FEE`), models.CategoryExchangeFee},
	{"", regexp.MustCompile(`(?i)Transfer from .* to .* at`), models.CategoryExchangeFee},
	{"WITH", regexp.MustCompile(`(?i)LONG INT`), models.CategoryInterest},
	{"DEPO", regexp.MustCompile(`(?i)SHORT INT`), models.CategoryInterest},
	{"WITH", regexp.MustCompile(`(?i) COMM `), models.CategoryCommission},
	{"WITH", regexp.MustCompile(`(?i) CRPREM `), models.CategoryRiskFee},
	{"DIVIDEND", nil, models.CategoryDividend},
	{"", regexp.MustCompile(`(?i)DVD[A-Z]`), models.CategoryDividend},
}

// Classify assigns a category to one ledger row. Option activity rows carry
// their action in the type code and are not categorised here; everything the
// rules cannot place stays Unknown.
func Classify(e *models.RawEntry) models.Category {
	if _, err := models.ParseActionType(e.Type); err == nil {
		return models.CategoryUnknown
	}
	for _, r := range rules {
		if r.typeCode != "" && r.typeCode != e.Type {
			continue
		}
		if r.pattern != nil && !r.pattern.MatchString(e.Description) {
			continue
		}
		return r.category
	}
	return models.CategoryUnknown
}

// Run reclassifies every CFD ledger row in the store. It returns how many
// rows ended up Unknown; those are reported, never dropped.
func Run(st store.Store) (int, error) {
	entries, err := st.RawEntries()
	if err != nil {
		return 0, err
	}
	unknown := 0
	for i := range entries {
		e := &entries[i]
		if _, err := models.ParseActionType(e.Type); err == nil {
			continue
		}
		cat := Classify(e)
		if cat == models.CategoryUnknown {
			unknown++
			lg().Warn("uncategorised ledger row",
				"type", e.Type, "date", e.RefDate.Format("2006-01-02"), "desc", e.Description)
		}
		if cat == e.Category {
			continue
		}
		if err := st.UpdateRawCategory(e.ID, cat); err != nil {
			return unknown, err
		}
	}
	return unknown, nil
}

func lg() *slog.Logger {
	if logger.L != nil {
		return logger.L
	}
	return slog.Default()
}
