package errinfo

// ErrorInfo is the structured error payload surfaced over RPC.
type ErrorInfo struct {
	ErrorCode string   `json:"error_code"`
	Phase     string   `json:"phase,omitempty"`
	Retryable bool     `json:"retryable"`
	Actions   []string `json:"actions,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	Query     string   `json:"query,omitempty"`
	Path      string   `json:"path,omitempty"`
	Detail    string   `json:"detail,omitempty"`
}

const (
	CodeResolutionFailed = "RESOLUTION_FAILED"
	CodeFileReadFailed   = "FILE_READ_FAILED"
	CodeFileWriteFailed  = "FILE_WRITE_FAILED"
	CodeCorpusNotFound   = "CORPUS_NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeSessionNotFound  = "SESSION_NOT_FOUND"
	CodeNoLinkedDocument = "NO_LINKED_DOCUMENT"
	CodeDiffTooLarge     = "DIFF_TOO_LARGE"
)

const (
	ActionRetry        = "retry"
	ActionEditSource   = "edit_source"
	ActionOpenSettings = "open_settings"
)

const (
	PhaseSession  = "session"
	PhaseNavigate = "navigate"
	PhaseSave     = "save"
	PhaseRender   = "render"
	PhaseSettings = "settings"
	PhaseCorpus   = "corpus"
)

// ResolutionFailed covers a reference that matched no file. The session is
// unaffected, so the caller may retry with a corrected query or fix the
// marker text itself.
func ResolutionFailed(phase, query string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeResolutionFailed,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry, ActionEditSource},
		Query:     query,
	}
}

func FileReadFailed(phase, path, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeFileReadFailed,
		Phase:     phase,
		Retryable: false,
		Path:      path,
		Detail:    detail,
	}
}

// FileWriteFailed is retryable: the baseline was not advanced and the edit
// buffer is intact, so a repeated save is always safe.
func FileWriteFailed(phase, path, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeFileWriteFailed,
		Phase:     phase,
		Retryable: true,
		Actions:   []string{ActionRetry},
		Path:      path,
		Detail:    detail,
	}
}

// CorpusNotFound is fatal to session construction: neither the main document
// directory nor the fallback file exists.
func CorpusNotFound(detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeCorpusNotFound,
		Phase:     PhaseCorpus,
		Retryable: false,
		Actions:   []string{ActionOpenSettings},
		Detail:    detail,
	}
}

func ValidationFailed(phase, detail string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeValidationFailed,
		Phase:     phase,
		Retryable: false,
		Detail:    detail,
	}
}

func SessionNotFound(sessionID string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeSessionNotFound,
		Phase:     PhaseSession,
		Retryable: false,
		SessionID: sessionID,
	}
}

func NoLinkedDocument(sessionID string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeNoLinkedDocument,
		Phase:     PhaseSession,
		Retryable: false,
		SessionID: sessionID,
	}
}

func DiffTooLarge(phase string) *ErrorInfo {
	return &ErrorInfo{
		ErrorCode: CodeDiffTooLarge,
		Phase:     phase,
		Retryable: false,
	}
}
