package config

// Feedback is the customizable text/style mapping applied to a button once
// an activation's outcome is known. It is read at activation time, never
// snapshotted at bind time: replacing it between activations changes the
// next activation's feedback.
type Feedback struct {
	Text    FeedbackText    `yaml:"text" json:"text"`
	Classes FeedbackClasses `yaml:"classes" json:"classes"`
}

// FeedbackText maps outcome to the button's replacement display text.
type FeedbackText struct {
	Success string `yaml:"success" json:"success"`
	Failed  string `yaml:"failed" json:"failed"`
}

// ClassChange is the pair of style-tag lists applied for one outcome.
// Remove happens before Add, so a class present in both ends up applied.
type ClassChange struct {
	Add    []string `yaml:"add" json:"add"`
	Remove []string `yaml:"remove" json:"remove"`
}

// FeedbackClasses maps outcome to its class change.
type FeedbackClasses struct {
	Success ClassChange `yaml:"success" json:"success"`
	Failed  ClassChange `yaml:"failed" json:"failed"`
}

// ApplyDefaults fills an all-zero Feedback with the stock Bootstrap-ish
// defaults. A partially filled Feedback is left alone: an operator who set
// any field owns the whole mapping.
func (f *Feedback) ApplyDefaults() {
	if !f.isZero() {
		return
	}
	*f = DefaultFeedback()
}

func (f *Feedback) isZero() bool {
	return f.Text == (FeedbackText{}) &&
		len(f.Classes.Success.Add) == 0 && len(f.Classes.Success.Remove) == 0 &&
		len(f.Classes.Failed.Add) == 0 && len(f.Classes.Failed.Remove) == 0
}

// DefaultFeedback returns the stock feedback mapping. The "disabled" class is
// cosmetic: the button stays clickable and re-enters activation on the next
// interaction.
func DefaultFeedback() Feedback {
	return Feedback{
		Text: FeedbackText{
			Success: "✔ Copied!",
			Failed:  "Failed",
		},
		Classes: FeedbackClasses{
			Success: ClassChange{
				Add: []string{"disabled"},
			},
			Failed: ClassChange{
				Add:    []string{"disabled", "btn-outline-danger", "text-danger"},
				Remove: []string{"btn-outline-secondary"},
			},
		},
	}
}

// For returns the display text and class change for an outcome.
// success selects the success mapping, anything else the failed one.
func (f Feedback) For(success bool) (string, ClassChange) {
	if success {
		return f.Text.Success, f.Classes.Success
	}
	return f.Text.Failed, f.Classes.Failed
}
