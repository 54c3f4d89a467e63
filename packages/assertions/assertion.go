package assertions

import "fmt"

type Operator int

const (
	OpEquals Operator = iota
	OpExists
	OpType
	OpRequired
)

func (o Operator) String() string {
	switch o {
	case OpEquals:
		return "=="
	case OpExists:
		return "exists"
	case OpType:
		return "type"
	case OpRequired:
		return "required"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// Assertion is a single expectation on a response. Subject is "status",
// "body" or a body path such as "body.client_name" or "body.0".
type Assertion struct {
	Subject  string
	Operator Operator
	Expected any
}

func Status(code int) *Assertion {
	return &Assertion{Subject: "status", Operator: OpEquals, Expected: code}
}

func Equals(subject string, expected any) *Assertion {
	return &Assertion{Subject: subject, Operator: OpEquals, Expected: expected}
}

func Exists(subject string) *Assertion {
	return &Assertion{Subject: subject, Operator: OpExists}
}

// IsType asserts the JSON type of subject: object, array, string, number,
// boolean or null.
func IsType(subject, jsonType string) *Assertion {
	return &Assertion{Subject: subject, Operator: OpType, Expected: jsonType}
}

// HasKeys asserts that subject is an object containing every key. Values
// are not inspected.
func HasKeys(subject string, keys ...string) *Assertion {
	return &Assertion{Subject: subject, Operator: OpRequired, Expected: keys}
}
