package scheduler

// TaskTypeConvert is the task type registered with the external scheduler.
const TaskTypeConvert = "retouch:convert"

// SizeKeySrcset is the pseudo-size under which all ad hoc srcset widths of
// one subject coalesce into a single batch job.
const SizeKeySrcset = "srcset"

// ConvertPayload is what we hand to the scheduler. No file bytes here —
// the job reloads metadata by SubjectID when it runs.
type ConvertPayload struct {
	SubjectID int64  `json:"subject_id"`
	SizeKey   string `json:"size_key"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}
