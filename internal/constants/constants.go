package constants

// 适载状态常量
const (
	LoadStatusLoaded   = "O"
	LoadStatusUnloaded = "X"
	LoadStatusUnknown  = "UNKNOWN"
)

// 回收请求字段约束
const (
	QtyMin        = 1
	QtyMax        = 999
	NoteMaxRunes  = 100
	PhotoMaxBytes = 3 << 20
)

// 列表查询常量
const (
	ListDefaultLimit = 300
	ListMaxLimit     = 500
	QueryFilterAll   = "ALL"
)

// 地址补全任务常量
const (
	BackfillDefaultLimit = 30
	BackfillMaxLimit     = 80
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskPickupGeocodeRetry = "pickup:geocode_retry"
)

// 民用日期时区偏移（KST，UTC+9）
const (
	CivilOffsetMinutes = 540
)
