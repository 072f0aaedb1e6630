package domain

// CallbackResult answers a case-creation callback. Data is set only when the
// case can be created from the record.
type CallbackResult struct {
	Data     *CaseCreationDetails `json:"data"`
	Errors   []string             `json:"errors"`
	Warnings []string             `json:"warnings"`
}

// Adjudicate decides a callback from a transformation outcome. Rejections
// report their errors. Warnings block creation until the caller resubmits
// with ignoreWarnings set.
func Adjudicate(o Outcome, ignoreWarnings bool) CallbackResult {
	switch {
	case !o.OK:
		errs := o.Errors
		if errs == nil {
			errs = []string{}
		}
		return CallbackResult{Errors: errs, Warnings: []string{}}
	case len(o.Warnings) > 0 && !ignoreWarnings:
		return CallbackResult{Errors: []string{}, Warnings: o.Warnings}
	default:
		return CallbackResult{Data: o.Details, Errors: []string{}, Warnings: []string{}}
	}
}
