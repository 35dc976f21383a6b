// Package idrange parses the request ID arguments of batch approver commands.
package idrange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MaxRange is the largest allowed difference between the two ends of "a-b".
const MaxRange = 10

// Batch is the outcome of parsing a batch command.
type Batch struct {
	// IDs are unique and ascending.
	IDs []int64
	// ErrorMessage holds one line per rejected token, in token order.
	ErrorMessage string
}

// HasErrors reports whether any token was rejected.
func (b Batch) HasErrors() bool {
	return b.ErrorMessage != ""
}

// Parse splits command on single spaces, skips the leading command word and
// accumulates every ID named by the remaining tokens. Tokens are either a
// single non-negative integer or an inclusive range "a-b".
func Parse(command string) Batch {
	tokens := strings.Split(command, " ")

	seen := make(map[int64]struct{})
	var errs strings.Builder

	for _, tok := range tokens[1:] {
		switch strings.Count(tok, "-") {
		case 0:
			id, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				fmt.Fprintf(&errs, "WRONG_REQUEST %s: ID must be an integer\n", tok)
				continue
			}
			seen[id] = struct{}{}

		case 1:
			left, right, _ := strings.Cut(tok, "-")
			start, errStart := strconv.ParseInt(left, 10, 64)
			end, errEnd := strconv.ParseInt(right, 10, 64)
			if errStart != nil || errEnd != nil {
				fmt.Fprintf(&errs, "WRONG_REQUEST %s : contains characters other than non-negative integers\n", tok)
				continue
			}
			if msg := checkRange(start, end); msg != "" {
				fmt.Fprintf(&errs, "WRONG_REQUEST %s : %s\n", tok, msg)
				continue
			}
			// count by offset so an end of math.MaxInt64 cannot wrap
			for i := int64(0); i <= end-start; i++ {
				seen[start+i] = struct{}{}
			}

		default:
			fmt.Fprintf(&errs, "WRONG_REQUEST %s : possible negative ID\n", tok)
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return Batch{IDs: ids, ErrorMessage: errs.String()}
}

func checkRange(start, end int64) string {
	if end < start {
		return "in ID1-ID2, ID1 must be less than or equal to ID2"
	}
	if end-start > MaxRange {
		return fmt.Sprintf("cannot select more than %d IDs at once", MaxRange)
	}
	return ""
}
