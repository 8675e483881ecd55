package util

import (
	"strconv"

	"golang.org/x/xerrors"
)

// ParseUintList parses a comma-separated list of unsigned integers.
// Numbers follow strtoul base detection: a 0x prefix is hex, a leading 0 is
// octal, anything else is decimal. An out of range value saturates and an
// empty field reads as 0. Signs and white space are not accepted.
func ParseUintList(s string) ([]uint64, error) {
	result := make([]uint64, 0, 3)
	p := 0
	for {
		end := scanNumber(s, p)
		val, err := parseNumber(s[p:end])
		if err != nil {
			return nil, WrapErr("parse number list", err)
		}
		result = append(result, val)

		if end == len(s) {
			break
		}
		if s[end] != ',' {
			return nil, xerrors.Errorf("Invalid character '%c' in number list.", s[end])
		}
		p = end + 1
	}
	return result, nil
}

// Returns the index one past the longest number prefix starting at p.
func scanNumber(s string, p int) int {
	i := p
	isDigit := isDec
	if i+2 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') && isHex(s[i+2]) {
		isDigit = isHex
		i += 2
	} else if i < len(s) && s[i] == '0' {
		isDigit = isOct
	}
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func parseNumber(tok string) (uint64, error) {
	if tok == "" {
		return 0, nil
	}

	val, err := strconv.ParseUint(tok, 0, 64)
	if err != nil {
		// strtoul clamps on overflow.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return ^uint64(0), nil
		}
		return 0, err
	}
	return val, nil
}

func isDec(c byte) bool { return c >= '0' && c <= '9' }
func isOct(c byte) bool { return c >= '0' && c <= '7' }
func isHex(c byte) bool {
	return isDec(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
