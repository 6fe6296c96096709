package model

// InteractionState represents the current board interaction state
type InteractionState struct {
	Selected      int    // Index of the highlighted topic
	ShowHelp      bool
	StatusMessage string // Status message to display
	ConfirmDialog *ConfirmDialog
	Prompt        *Prompt
}

// ConfirmDialog represents a confirmation dialog
type ConfirmDialog struct {
	Title     string
	Message   string
	OnConfirm func()
	OnCancel  func()
}

// Prompt is an open single-line text input, used to name a new topic.
type Prompt struct {
	Title string
	Value string
}

// Modal reports whether a dialog or prompt currently owns keyboard input.
func (s InteractionState) Modal() bool {
	return s.ConfirmDialog != nil || s.Prompt != nil
}
