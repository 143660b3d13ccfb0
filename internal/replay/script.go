package replay

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrBadScript wraps every parse failure.
var ErrBadScript = errors.New("bad key script")

// Press holds one key from tick Start until tick End (exclusive). A negative
// End keeps the key down for the rest of the run.
type Press struct {
	Code  string
	Start int
	End   int
}

// Script is an ordered list of presses.
type Script []Press

var codePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// Parse reads entries of the form Code@start-end or Code@start, separated by
// commas or newlines. Everything after # on a line is ignored.
//
//	KeyW@0-120, ArrowLeft@30-60
//	Space@100   # brake to the end
func Parse(src string) (Script, error) {
	var out Script
	for lineNo, line := range strings.Split(src, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, entry := range strings.Split(line, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			p, err := parsePress(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadScript, lineNo+1, err)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func parsePress(entry string) (Press, error) {
	code, span, ok := strings.Cut(entry, "@")
	if !ok {
		return Press{}, fmt.Errorf("%q: missing @", entry)
	}
	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return Press{}, fmt.Errorf("%q: bad key code %q", entry, code)
	}
	startRaw, endRaw, ranged := strings.Cut(span, "-")
	start, err := strconv.Atoi(strings.TrimSpace(startRaw))
	if err != nil || start < 0 {
		return Press{}, fmt.Errorf("%q: bad start tick", entry)
	}
	end := -1
	if ranged {
		end, err = strconv.Atoi(strings.TrimSpace(endRaw))
		if err != nil {
			return Press{}, fmt.Errorf("%q: bad end tick", entry)
		}
		if end <= start {
			return Press{}, fmt.Errorf("%q: end must be after start", entry)
		}
	}
	return Press{Code: code, Start: start, End: end}, nil
}

// Span returns the first tick after every bounded press has ended.
func (s Script) Span() int {
	n := 0
	for _, p := range s {
		last := p.End
		if last < 0 {
			last = p.Start + 1
		}
		if last > n {
			n = last
		}
	}
	return n
}

func (s Script) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		if p.End < 0 {
			parts[i] = fmt.Sprintf("%s@%d", p.Code, p.Start)
			continue
		}
		parts[i] = fmt.Sprintf("%s@%d-%d", p.Code, p.Start, p.End)
	}
	return strings.Join(parts, ",")
}
