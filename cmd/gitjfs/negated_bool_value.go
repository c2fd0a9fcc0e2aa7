package main

import "strconv"

// negatedBoolValue is a pflag.Value that sets a boolean variable to
// the inverse of what the argument would normally indicate, grounded
// on the teacher's NegatedBoolValue (there used for --no-progress;
// here for the --follow flag, which sets noFollow for the final path
// component).
type negatedBoolValue struct {
	value *bool
}

func (v *negatedBoolValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	*v.value = !b
	return err
}

func (v *negatedBoolValue) Get() interface{} {
	return !*v.value
}

func (v *negatedBoolValue) String() string {
	if v == nil || v.value == nil {
		return "true"
	}
	return strconv.FormatBool(!*v.value)
}

func (v *negatedBoolValue) Type() string {
	return "bool"
}
