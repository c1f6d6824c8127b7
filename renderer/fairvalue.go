package renderer

import "github.com/etnz/folio"

// FairValue is a fair value computation and its inputs.
type FairValue struct {
	Symbol string
	Input  folio.FairValueInput
	Result folio.FairValue
}

func (v *FairValue) Growth() *float64 { return &v.Input.Growth }
func (v *FairValue) Target() *float64 { return &v.Input.TargetReturn }

// RenderFairValue renders the fair value of a security.
func RenderFairValue(v *FairValue) string {
	return renderTemplate("fairvalue", "fairvalue.md", nil, v)
}
