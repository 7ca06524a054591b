package constants

const (
	StatusRegistered     = "Registered"
	StatusFunded         = "Funded"
	StatusPurchased      = "Insurance purchased"
	StatusRequested      = "Status requested"
	StatusResponseStored = "Oracle response recorded"
	StatusWithdrawn      = "Payout withdrawn"
)

const (
	MsgInvalidBody      = "Invalid request body"
	MsgInvalidAddress   = "Invalid address"
	MsgInvalidTimestamp = "Invalid timestamp"
	MsgInvalidAmount    = "Invalid amount"
	MsgMissingCaller    = "Caller identity missing"
)
