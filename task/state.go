package task

// State is the task lifecycle position.
type State string

const (
	StateUploaded   State = "uploaded"
	StateASRPending State = "asr_pending"
	StateASRDone    State = "asr_done"
	StateLLMPending State = "llm_pending"
	StateLLMDone    State = "llm_done"
	StatePersisted  State = "persisted"
	StateError      State = "error"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StatePersisted || s == StateError
}

// StageStatus is the outcome of one stage.
type StageStatus string

const (
	StageNone    StageStatus = ""
	StagePending StageStatus = "pending"
	StageSuccess StageStatus = "success"
	StageFailed  StageStatus = "error"
)

// Stage names used in logs, spans and artifacts.
const (
	StageASR = "asr"
	StageLLM = "llm"
)
