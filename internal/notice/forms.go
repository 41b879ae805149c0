// Package notice computes statutory date floors and hard compliance gates for
// notice-only products. It is a consumer of the shared decision evaluation,
// never a second validation path: everything rule-shaped lives in the rule
// packs, and only date arithmetic lives here.
package notice

// Official form codes the routes render to.
const (
	FormSection3      = "form_3"  // Housing Act 1988 section 8 notice
	FormSection6A     = "form_6a" // Housing Act 1988 section 21 notice
	FormRHW16         = "rhw16"
	FormRHW20         = "rhw20"
	FormNoticeToLeave = "notice_to_leave"
	FormNoticeToQuit  = "notice_to_quit"
)

// prescribedInfoWindowDays is the statutory window after deposit receipt
// within which the prescribed information must be given.
const prescribedInfoWindowDays = 30

// proceedingsValidity returns how long a served notice stays usable: the
// number of months within which possession proceedings must begin, and
// whether the clock runs from the expiry date (true) or the service date.
// Zero months means the form carries no validity limit this evaluator knows.
func proceedingsValidity(form string) (months int, fromExpiry bool) {
	switch form {
	case FormSection3:
		// Section 8 notices lapse 12 months after service.
		return 12, false
	case FormSection6A:
		// Form 6A: proceedings within 6 months "commencing from the date this
		// notice is given", so the clock runs from service.
		return 6, false
	case FormNoticeToLeave:
		// Tribunal applications within 6 months of the notice period expiring.
		return 6, true
	default:
		return 0, false
	}
}
