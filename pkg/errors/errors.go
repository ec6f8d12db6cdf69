package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 打卡实例相关错误。
var (
	CheckinNotFound      = Definition{Code: "CHECKIN_NOT_FOUND", Message: "Check-in not found"}
	CheckinNotActionable = Definition{Code: "CHECKIN_NOT_ACTIONABLE", Message: "Check-in is not in an actionable status"}
	InvalidCheckinID     = Definition{Code: "INVALID_CHECKIN_ID", Message: "Invalid check-in ID format"}
)

// 调度任务相关错误。
var (
	JobAlreadyRunning = Definition{Code: "JOB_ALREADY_RUNNING", Message: "Job is already running"}
	JobRunFailed      = Definition{Code: "JOB_RUN_FAILED", Message: "Job run failed"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	CheckinNotFound.Code:      CheckinNotFound,
	CheckinNotActionable.Code: CheckinNotActionable,
	InvalidCheckinID.Code:     InvalidCheckinID,
	JobAlreadyRunning.Code:    JobAlreadyRunning,
	JobRunFailed.Code:         JobRunFailed,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
