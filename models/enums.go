package models

type TaskState string

const (
	TaskStateOpen     TaskState = "Open"
	TaskStateAssigned TaskState = "Assigned"
	TaskStateClosed   TaskState = "Closed"
)

type OrderType string

const (
	OrderTypeSale     OrderType = "SaleOrder"
	OrderTypeTransfer OrderType = "TransferOrder"
	OrderTypePurchase OrderType = "PurchaseOrder"
	OrderTypeWork     OrderType = "WorkOrder"
)

type ShipViaType string

const (
	ShipViaTypeWillCall ShipViaType = "WillCall"
	ShipViaTypeDelivery ShipViaType = "Delivery"
	ShipViaTypeShipOut  ShipViaType = "ShipOut"
)

type StatStatus string

const (
	StatStatusCurrent StatStatus = "Current"
	StatStatusClosed  StatStatus = "Closed"
	StatStatusPurge   StatStatus = "Purge"
)

type LogType string

const (
	LogTypeInfo    LogType = "Info"
	LogTypeWarn    LogType = "Warn"
	LogTypeError   LogType = "Error"
	LogTypeSuccess LogType = "Success"
)

const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)
