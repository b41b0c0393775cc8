package models

import "fmt"

// Category is the semantic classification assigned to a raw ledger entry by
// the categoriser. It is a closed set: anything the rules cannot place ends
// up as CategoryUnknown and is reported as such, never silently dropped.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryTrade
	CategoryCommission
	CategoryRiskFee
	CategoryExchangeFee
	CategoryInterest
	CategoryDividend
	CategoryTransfer
	CategoryIndex
)

var categoryNames = []string{
	"UNKNOWN", "TRADE", "COMMISSION", "RISK FEE", "EXCHANGE FEE",
	"INTEREST", "DIVIDEND", "TRANSFER", "INDEX",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("CATEGORY(%d)", int(c))
	}
	return categoryNames[c]
}

// ActionType identifies the leg an activity represents. OPEN/CLOSE are used
// by the contract-for-difference family, the remaining values by the option
// family.
type ActionType int

const (
	ActionUnknown ActionType = iota
	ActionOpen
	ActionClose
	ActionBuyToOpen
	ActionSellToClose
	ActionExercise
)

var actionNames = []string{
	"???", "OPEN", "CLOSE", "BUY TO OPEN", "SELL TO CLOSE", "EXERCISE",
}

func (a ActionType) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "???"
	}
	return actionNames[a]
}

// ParseActionType maps the action label found in an options activity file to
// its ActionType. Unrecognised labels are a data-shape problem for the
// caller to handle.
func ParseActionType(label string) (ActionType, error) {
	for i := 1; i < len(actionNames); i++ {
		if label == actionNames[i] {
			return ActionType(i), nil
		}
	}
	return ActionUnknown, fmt.Errorf("invalid action type %q", label)
}

// IsClosing reports whether the action closes (part of) an open trade.
func (a ActionType) IsClosing() bool {
	return a == ActionClose || a == ActionSellToClose || a == ActionExercise
}

// TradeStatus is the lifecycle state of a position.
type TradeStatus int

const (
	StatusUnknown TradeStatus = iota
	StatusOpen
	StatusClosed
	StatusHold
)

var statusNames = []string{"???", "OPEN", "CLOSED", "HOLD"}

func (s TradeStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "???"
	}
	return statusNames[s]
}

// Instrument distinguishes the two matching families. CFD positions are
// keyed by broker reference, option positions by symbol.
type Instrument int

const (
	InstrumentCFD Instrument = iota
	InstrumentOption
)

func (i Instrument) String() string {
	if i == InstrumentOption {
		return "OPTION"
	}
	return "CFD"
}
