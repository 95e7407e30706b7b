package view

// Dialog is the state of a modal form. Form keeps its contents between
// a failed submit and the next attempt.
type Dialog[F any] struct {
	Open       bool `json:"open"`
	Form       F    `json:"form"`
	Submitting bool `json:"submitting"`
}

func (d *Dialog[F]) Show(form F) {
	d.Open = true
	d.Form = form
	d.Submitting = false
}

// Hide closes the dialog and resets the form.
func (d *Dialog[F]) Hide() {
	var zero F
	d.Open = false
	d.Form = zero
	d.Submitting = false
}
