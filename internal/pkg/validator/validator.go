package validator

// Validator checks tagged structs and returns field errors keyed in snake_case.
type Validator interface {
	Validate(data any) error
}
