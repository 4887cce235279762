package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldOwner         = "owner"
	FieldEmail         = "email"
	FieldKind          = "kind"
	FieldAmountPaise   = "amount_paise"
	FieldBalancePaise  = "balance_paise"
	FieldCategoryTitle = "category_title"
	FieldCategoryID    = "category_id"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentMail      = "mail"
	ComponentAuth      = "auth"
	ComponentOTP       = "otp"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpCredit   = "credit"
	OpDebit    = "debit"
	OpExpense  = "expense"
	OpDelete   = "delete"
	OpList     = "list"
	OpSignup   = "signup"
	OpSignin   = "signin"
	OpNotify   = "notify"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
