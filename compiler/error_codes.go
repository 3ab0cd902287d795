package compiler

const (
	// Parse stage
	ErrCodeInputDetect    = "INPUT_DETECT_ERROR"
	ErrCodeCUELoad        = "CUE_LOAD_ERROR"
	ErrCodeCUESchema      = "CUE_SCHEMA_ERROR"
	ErrCodeCUENormalize   = "CUE_NORMALIZE_ERROR"
	ErrCodeYAMLRead       = "YAML_READ_ERROR"
	ErrCodeYAMLNormalize  = "YAML_NORMALIZE_ERROR"
	ErrCodeDuplicateInput = "DUPLICATE_MODULE_ERROR"

	// IR stage
	ErrCodeIRValidate = "IR_VALIDATE_ERROR"

	// Transformers stage
	ErrCodeTransformerApply = "TRANSFORMER_APPLY_ERROR"

	// Emitters stage
	ErrCodeEmitterOptions = "EMITTER_OPTIONS_ERROR"
	ErrCodeEmitterStep    = "EMITTER_STEP_ERROR"
	ErrCodeEmitterFormat  = "EMITTER_FORMAT_ERROR"
	ErrCodeEmitterWrite   = "EMITTER_WRITE_ERROR"
)

// StableErrorCodes is the canonical registry of compiler/CLI stage error codes.
var StableErrorCodes = []string{
	ErrCodeInputDetect,
	ErrCodeCUELoad,
	ErrCodeCUESchema,
	ErrCodeCUENormalize,
	ErrCodeYAMLRead,
	ErrCodeYAMLNormalize,
	ErrCodeDuplicateInput,
	ErrCodeIRValidate,
	ErrCodeTransformerApply,
	ErrCodeEmitterOptions,
	ErrCodeEmitterStep,
	ErrCodeEmitterFormat,
	ErrCodeEmitterWrite,
}
