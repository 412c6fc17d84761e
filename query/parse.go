package query

import (
	"strconv"
	"strings"
)

type parseState int

const (
	// stateSegmentStart expects a key, a quoted key or an index.
	stateSegmentStart parseState = iota
	// stateAfterSegment expects '.', '[' or the end of input.
	stateAfterSegment
)

// Parse splits expr into steps. Empty segments, unterminated quotes or
// brackets, and non-integer indexes are errors.
func Parse(expr string) (Path, error) {
	if expr == "" {
		return Path{}, syntaxError(expr, "path must not be empty")
	}

	var steps []Step
	state := stateSegmentStart
	pos := 0
	for pos < len(expr) {
		switch state {
		case stateSegmentStart:
			switch expr[pos] {
			case '.':
				return Path{}, syntaxError(expr, "empty segment at offset "+strconv.Itoa(pos))
			case ']':
				return Path{}, syntaxError(expr, "unexpected ']' at offset "+strconv.Itoa(pos))
			case '[':
				if pos != 0 {
					return Path{}, syntaxError(expr, "index must follow a key at offset "+strconv.Itoa(pos))
				}
				step, next, err := parseIndex(expr, pos)
				if err != nil {
					return Path{}, err
				}
				steps = append(steps, step)
				pos = next
			case '\'':
				end := strings.IndexByte(expr[pos+1:], '\'')
				if end < 0 {
					return Path{}, syntaxError(expr, "unterminated quote at offset "+strconv.Itoa(pos))
				}
				steps = append(steps, KeyStep(expr[pos+1:pos+1+end]))
				pos += end + 2
			default:
				end := pos
				for end < len(expr) && expr[end] != '.' && expr[end] != '[' && expr[end] != ']' {
					end++
				}
				steps = append(steps, KeyStep(expr[pos:end]))
				pos = end
			}
			state = stateAfterSegment

		case stateAfterSegment:
			switch expr[pos] {
			case '.':
				if pos == len(expr)-1 {
					return Path{}, syntaxError(expr, "path must not end with '.'")
				}
				pos++
				state = stateSegmentStart
			case '[':
				step, next, err := parseIndex(expr, pos)
				if err != nil {
					return Path{}, err
				}
				steps = append(steps, step)
				pos = next
			default:
				return Path{}, syntaxError(expr, "unexpected "+strconv.QuoteRune(rune(expr[pos]))+" at offset "+strconv.Itoa(pos))
			}
		}
	}

	return Path{steps: steps}, nil
}

// parseIndex reads "[n]" starting at the '[' at pos and returns the position
// after the closing bracket. Negative indexes parse but never resolve.
func parseIndex(expr string, pos int) (Step, int, error) {
	end := strings.IndexByte(expr[pos:], ']')
	if end < 0 {
		return Step{}, 0, syntaxError(expr, "unterminated '[' at offset "+strconv.Itoa(pos))
	}

	raw := strings.TrimSpace(expr[pos+1 : pos+end])
	index, err := strconv.Atoi(raw)
	if err != nil {
		return Step{}, 0, syntaxError(expr, "index "+strconv.Quote(raw)+" is not an integer")
	}
	return IndexStep(index), pos + end + 1, nil
}
