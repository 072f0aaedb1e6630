package domain

type ValidationStatus string

const (
	StatusSuccess  ValidationStatus = "SUCCESS"
	StatusWarnings ValidationStatus = "WARNINGS"
	StatusErrors   ValidationStatus = "ERRORS"
)

type TransformationResult string

const (
	TransformationSuccess  TransformationResult = "success"
	TransformationRejected TransformationResult = "rejected"
	TransformationFault    TransformationResult = "fault"
)

func ResultOf(o Outcome) TransformationResult {
	if o.OK {
		return TransformationSuccess
	}
	return TransformationRejected
}
