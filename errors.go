package main

import "errors"

var (
	// errBlankField is returned when a text field is empty or whitespace only
	errBlankField = errors.New("field is blank")

	// errNotNumeric is returned when width, height or amount contain anything but digits
	errNotNumeric = errors.New("field is not numeric")

	// errTooLarge is returned when the coupon exceeds the maximum width or height
	errTooLarge = errors.New("coupon dimensions too large")

	// errOutOfRange is returned for zero sizes, zero amounts and unknown scaling steps
	errOutOfRange = errors.New("value out of range")
)
