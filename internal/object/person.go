package object

import (
	"strings"
)

// Person is an author, committer or tagger line: "Name <email> <date>".
type Person struct {
	Name  string
	Email string
	When  Date
}

// ParsePerson parses an identity line without its header keyword.
func ParsePerson(s string) (Person, error) {
	closeIdx := strings.LastIndexByte(s, '>')
	if closeIdx < 0 {
		return Person{}, ErrMalformed.WithContext("reason", "identity without email").WithContext("identity", s)
	}
	openIdx := strings.LastIndexByte(s[:closeIdx], '<')
	if openIdx < 0 {
		return Person{}, ErrMalformed.WithContext("reason", "identity without email").WithContext("identity", s)
	}
	when, err := ParseDate(s[closeIdx+1:])
	if err != nil {
		return Person{}, err
	}
	return Person{
		Name:  strings.TrimSuffix(s[:openIdx], " "),
		Email: s[openIdx+1 : closeIdx],
		When:  when,
	}, nil
}

// String encodes the identity.
func (p Person) String() string {
	return p.Name + " <" + p.Email + "> " + p.When.String()
}
