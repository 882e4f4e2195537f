package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldEndpoint      = "endpoint"
	FieldMethod        = "method"
	FieldStatusCode    = "status_code"
	FieldTransactionID = "transaction_id"
	FieldAmount        = "amount"
	FieldCategory      = "category"
	FieldUserName      = "user_name"
	FieldSessionState  = "session_state"
	FieldStoreKey      = "store_key"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentAPI     = "api"
	ComponentSession = "session"
	ComponentLedger  = "ledger"
	ComponentStore   = "store"
	ComponentEvents  = "events"
	ComponentSheets  = "sheets"
)

// Operations defines standard operation names
const (
	OpLogin   = "login"
	OpSignup  = "signup"
	OpLogout  = "logout"
	OpRestore = "restore"
	OpRefresh = "refresh"
	OpCreate  = "create"
	OpDelete  = "delete"
	OpList    = "list"
	OpSummary = "summary"
	OpProfile = "profile"
	OpExport  = "export"
	OpPublish = "publish"
)
