package types

// Standard table names for Console.GetTable.
const (
	TableUsers    = "users"
	TableRooms    = "rooms"
	TableGifts    = "gifts"
	TablePayments = "payments"
	TableAgents   = "agents"
	TableReports  = "reports"
	TableSettings = "settings"
	TableBanks    = "banks"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableAgents,
	TableBanks,
	TableGifts,
	TablePayments,
	TableReports,
	TableRooms,
	TableSettings,
	TableUsers,
}
