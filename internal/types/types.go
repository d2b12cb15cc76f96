package types

type AccountType string

type OrderStatus string

type OrderType string

type Instruction string

type Session string

type Duration string

type AssetType string

type PositionEffect string

type TransactionType string

type ActivityType string

const (
	AccountTypeCash   AccountType = "CASH"
	AccountTypeMargin AccountType = "MARGIN"
)

const (
	OrderStatusWorking  OrderStatus = "WORKING"
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusCanceled OrderStatus = "CANCELED"
	OrderStatusRejected OrderStatus = "REJECTED"
)

const (
	OrderTypeMarket    OrderType = "MARKET"
	OrderTypeLimit     OrderType = "LIMIT"
	OrderTypeStop      OrderType = "STOP"
	OrderTypeStopLimit OrderType = "STOP_LIMIT"
)

const (
	InstructionBuy         Instruction = "BUY"
	InstructionSell        Instruction = "SELL"
	InstructionBuyToOpen   Instruction = "BUY_TO_OPEN"
	InstructionBuyToClose  Instruction = "BUY_TO_CLOSE"
	InstructionSellToOpen  Instruction = "SELL_TO_OPEN"
	InstructionSellToClose Instruction = "SELL_TO_CLOSE"
	InstructionSellShort   Instruction = "SELL_SHORT"
	InstructionBuyToCover  Instruction = "BUY_TO_COVER"
)

const (
	SessionNormal   Session = "NORMAL"
	SessionAM       Session = "AM"
	SessionPM       Session = "PM"
	SessionSeamless Session = "SEAMLESS"
)

const (
	DurationDay               Duration = "DAY"
	DurationGoodTillCancel    Duration = "GOOD_TILL_CANCEL"
	DurationFillOrKill        Duration = "FILL_OR_KILL"
	DurationImmediateOrCancel Duration = "IMMEDIATE_OR_CANCEL"
	DurationEndOfWeek         Duration = "END_OF_WEEK"
	DurationEndOfMonth        Duration = "END_OF_MONTH"
)

const (
	AssetTypeEquity         AssetType = "EQUITY"
	AssetTypeOption         AssetType = "OPTION"
	AssetTypeIndex          AssetType = "INDEX"
	AssetTypeMutualFund     AssetType = "MUTUAL_FUND"
	AssetTypeCashEquivalent AssetType = "CASH_EQUIVALENT"
)

const (
	PositionEffectOpening   PositionEffect = "OPENING"
	PositionEffectClosing   PositionEffect = "CLOSING"
	PositionEffectAutomatic PositionEffect = "AUTOMATIC"
)

const (
	TransactionTypeTrade              TransactionType = "TRADE"
	TransactionTypeReceiveAndDeliver  TransactionType = "RECEIVE_AND_DELIVER"
	TransactionTypeDividendOrInterest TransactionType = "DIVIDEND_OR_INTEREST"
	TransactionTypeJournal            TransactionType = "JOURNAL"
	TransactionTypeCashReceipt        TransactionType = "CASH_RECEIPT"
	TransactionTypeCashDisbursement   TransactionType = "CASH_DISBURSEMENT"
)

const (
	ActivityTypeExecution   ActivityType = "EXECUTION"
	ActivityTypeOrderAction ActivityType = "ORDER_ACTION"
)

// IsBuy reports whether the instruction takes the buy side of a trade.
func (i Instruction) IsBuy() bool {
	switch i {
	case InstructionBuy, InstructionBuyToOpen, InstructionBuyToClose, InstructionBuyToCover:
		return true
	}
	return false
}

// IsSell reports whether the instruction takes the sell side of a trade.
func (i Instruction) IsSell() bool {
	switch i {
	case InstructionSell, InstructionSellToOpen, InstructionSellToClose, InstructionSellShort:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCanceled || s == OrderStatusRejected
}
