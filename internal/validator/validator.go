// Package validator checks form input field by field and collects every
// failure instead of stopping at the first one.
package validator

import (
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	// digits with an optional leading +, spaces and dashes allowed
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 \-]{7,18}[0-9]$`)
)

// Errors maps a field name to its first failure message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

type Validator struct {
	errs Errors
}

func New() *Validator {
	return &Validator{errs: Errors{}}
}

func (v *Validator) add(field, msg string) {
	if _, ok := v.errs[field]; ok {
		return
	}
	v.errs[field] = msg
}

func (v *Validator) Check(ok bool, field, msg string) *Validator {
	if !ok {
		v.add(field, msg)
	}
	return v
}

func (v *Validator) Required(field, value string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// MaxLen counts runes, not bytes.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	return v.Check(utf8.RuneCountInString(value) <= max, field, "is too long")
}

func (v *Validator) LenBetween(field, value string, min, max int) *Validator {
	n := utf8.RuneCountInString(value)
	return v.Check(n >= min && n <= max, field, "has an invalid length")
}

func (v *Validator) Email(field, value string) *Validator {
	return v.Check(IsEmail(value), field, "is not a valid email")
}

// Phone skips empty values; combine with Required when needed.
func (v *Validator) Phone(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v
	}
	return v.Check(IsPhone(value), field, "is not a valid phone number")
}

func (v *Validator) Username(field, value string) *Validator {
	v.LenBetween(field, value, 3, 50)
	return v.Check(usernameRe.MatchString(value), field, "may only contain letters, digits and underscores")
}

func (v *Validator) Password(field, value string) *Validator {
	return v.LenBetween(field, value, 6, 100)
}

func (v *Validator) Matches(field, a, b string) *Validator {
	return v.Check(a == b, field, "does not match")
}

func (v *Validator) Valid() bool {
	return len(v.errs) == 0
}

// Err returns nil or the collected Errors.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return v.errs
}

func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 255 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// reject "Name <a@b.c>" forms
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

func IsPhone(s string) bool {
	return phoneRe.MatchString(strings.TrimSpace(s))
}
