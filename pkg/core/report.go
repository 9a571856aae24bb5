package core

// Level is the severity tag of a notice.
type Level string

const (
	LevelSuccess  Level = "Success"
	LevelFatality Level = "NexusFatality"
	LevelConfig   Level = "CONFIG"
)

// Notice is one user-facing line produced by an operation.
type Notice struct {
	Level   Level
	Message string
	// Detail is an optional second line (usually a path).
	Detail string
}

// Report collects the notices of one operation in the order they happened.
// Presentation is left to the caller.
type Report struct {
	Notices []Notice
}

// Success appends a success notice.
func (r *Report) Success(msg string) {
	r.Notices = append(r.Notices, Notice{Level: LevelSuccess, Message: msg})
}

// SuccessDetail appends a success notice with a detail line.
func (r *Report) SuccessDetail(msg, detail string) {
	r.Notices = append(r.Notices, Notice{Level: LevelSuccess, Message: msg, Detail: detail})
}

// Fatality appends a non-terminal failure notice. The operation continues.
func (r *Report) Fatality(msg string) {
	r.Notices = append(r.Notices, Notice{Level: LevelFatality, Message: msg})
}

// Config appends a configuration notice.
func (r *Report) Config(msg string) {
	r.Notices = append(r.Notices, Notice{Level: LevelConfig, Message: msg})
}

// DeleteOutcome is the result of removing a file that may not exist.
type DeleteOutcome int

const (
	Deleted DeleteOutcome = iota
	NotFound
	// DeleteFailed means the file may still exist; the error says why.
	DeleteFailed
)

func (d DeleteOutcome) String() string {
	switch d {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not found"
	default:
		return "delete failed"
	}
}
