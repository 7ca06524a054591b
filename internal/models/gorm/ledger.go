package gorm

import "time"

// LedgerMeta holds the gate settings and pool totals of one deployed ledger
type LedgerMeta struct {
	Owner            string    `gorm:"column:owner;primaryKey;type:varchar(42)"`
	AuthorizedCaller string    `gorm:"column:authorized_caller;type:varchar(42)"`
	Operational      bool      `gorm:"column:operational;not null"`
	BalanceWei       string    `gorm:"column:balance_wei;type:varchar(80);not null"`
	PaidOutWei       string    `gorm:"column:paid_out_wei;type:varchar(80);not null"`
	OracleFeesWei    string    `gorm:"column:oracle_fees_wei;type:varchar(80);not null"`
	IndexCounter     uint64    `gorm:"column:index_counter;not null"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (LedgerMeta) TableName() string {
	return "ledger_meta"
}

type Airline struct {
	Identity   string   `gorm:"column:identity;primaryKey;type:varchar(42)"`
	Seq        int      `gorm:"column:seq;not null"`
	Name       string   `gorm:"column:name;type:varchar(100);not null"`
	FundingWei string   `gorm:"column:funding_wei;type:varchar(80);not null"`
	Activated  bool     `gorm:"column:activated;not null"`
	Consensus  bool     `gorm:"column:consensus;not null"`
	VoteCount  int      `gorm:"column:vote_count;not null"`
	Voters     []string `gorm:"column:voters;serializer:json"`
}

// TableName specifies the table name for GORM
func (Airline) TableName() string {
	return "airlines"
}

type Flight struct {
	Airline     string `gorm:"column:airline;primaryKey;type:varchar(42)"`
	Flight      string `gorm:"column:flight;primaryKey;type:varchar(50)"`
	Timestamp   int64  `gorm:"column:timestamp;primaryKey"`
	Seq         int    `gorm:"column:seq;not null"`
	AirlineName string `gorm:"column:airline_name;type:varchar(100)"`
	Status      uint8  `gorm:"column:status;not null"`
}

// TableName specifies the table name for GORM
func (Flight) TableName() string {
	return "flights"
}

type Policy struct {
	Passenger  string `gorm:"column:passenger;primaryKey;type:varchar(42)"`
	Airline    string `gorm:"column:airline;primaryKey;type:varchar(42)"`
	Flight     string `gorm:"column:flight;primaryKey;type:varchar(50)"`
	Timestamp  int64  `gorm:"column:timestamp;primaryKey"`
	Seq        int    `gorm:"column:seq;not null"`
	PremiumWei string `gorm:"column:premium_wei;type:varchar(80);not null"`
	Status     string `gorm:"column:status;type:varchar(20);not null"`
	ClaimWei   string `gorm:"column:claim_wei;type:varchar(80);not null"`
}

// TableName specifies the table name for GORM
func (Policy) TableName() string {
	return "policies"
}

type Oracle struct {
	Identity string `gorm:"column:identity;primaryKey;type:varchar(42)"`
	Sequence uint64 `gorm:"column:sequence;not null"`
	Indexes  []int  `gorm:"column:indexes;serializer:json"`
}

// TableName specifies the table name for GORM
func (Oracle) TableName() string {
	return "oracles"
}

// StatusRequest stores the reporter buckets keyed by numeric status code
type StatusRequest struct {
	Airline   string             `gorm:"column:airline;primaryKey;type:varchar(42)"`
	Flight    string             `gorm:"column:flight;primaryKey;type:varchar(50)"`
	Timestamp int64              `gorm:"column:timestamp;primaryKey"`
	Index     uint8              `gorm:"column:request_index;not null"`
	Requester string             `gorm:"column:requester;type:varchar(42)"`
	Finalized bool               `gorm:"column:finalized;not null"`
	Status    uint8              `gorm:"column:status;not null"`
	Responses map[uint8][]string `gorm:"column:responses;serializer:json"`
}

// TableName specifies the table name for GORM
func (StatusRequest) TableName() string {
	return "status_requests"
}

// AllModels lists every table for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&LedgerMeta{},
		&Airline{},
		&Flight{},
		&Policy{},
		&Oracle{},
		&StatusRequest{},
	}
}
