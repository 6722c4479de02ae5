package domain

type MemberStatusType string

const (
	MemberStatusActive   MemberStatusType = "active"
	MemberStatusInactive MemberStatusType = "inactive"
)

type BorrowingStatusType string

const (
	BorrowingStatusActive BorrowingStatusType = "active"
	BorrowingStatusClosed BorrowingStatusType = "closed"
)

type TokenTransactionType string

const (
	TokenTransactionPurchase TokenTransactionType = "purchase"
	TokenTransactionSale     TokenTransactionType = "sale"
	TokenTransactionTransfer TokenTransactionType = "transfer"
)

// BankAssignee - специальное значение assignedTo/moneySource, обозначающее
// кассу общества, а не конкретного участника.
const BankAssignee = "Bank"

// SharePrice - ожидаемый месячный взнос на одну долю.
const SharePrice = 1000
