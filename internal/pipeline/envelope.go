package pipeline

// Envelope is the sole externally observable failure shape. Code names the
// outer operation that failed, never the inner component, so callers branch
// on one small set.
type Envelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

const (
	CodeTranscribe = "transcribe_error"
	CodeAnalysis   = "analysis_error"
	CodePipeline   = "pipeline_error"
	CodeBatch      = "batch_error"
)

// NewEnvelope maps any internal failure onto the uniform error shape.
func NewEnvelope(code string, err error) Envelope {
	return Envelope{Error: err.Error(), Code: code}
}
