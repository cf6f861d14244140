// Package identity carries the authenticated caller through service calls.
// Services receive it as an explicit parameter instead of reading a
// security context, so ownership and role checks stay visible at call sites.
package identity

// Identity describes the authenticated employee making a request.
type Identity struct {
	EmployeeNo  int64
	DisplayName string
	HRRole      bool
}

// Owns reports whether the identity matches the given applicant.
func (id Identity) Owns(applicantNo int64) bool {
	return id.EmployeeNo == applicantNo
}
