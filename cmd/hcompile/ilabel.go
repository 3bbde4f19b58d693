package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseIlabelInfo reads the text form of an ilabel-info vector: one
// entry per line, in output-symbol order.
//
//	_            epsilon (only valid on the first line)
//	#<id>        disambiguation symbol (stored negated)
//	<n> <n> ...  phonetic context window of phone ids
//
// Blank lines and lines starting with ';' are skipped.
func parseIlabelInfo(r io.Reader) ([][]int32, error) {
	var info [][]int32
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		switch {
		case line == "_":
			if len(info) != 0 {
				return nil, fmt.Errorf("line %d: epsilon entry only valid first", lineno)
			}
			info = append(info, nil)
		case strings.HasPrefix(line, "#"):
			id, err := strconv.ParseInt(line[1:], 10, 32)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("line %d: bad disambiguation symbol %q", lineno, line)
			}
			info = append(info, []int32{int32(-id)})
		default:
			fields := strings.Fields(line)
			entry := make([]int32, len(fields))
			for i, f := range fields {
				n, err := strconv.ParseInt(f, 10, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad phone id %q", lineno, f)
				}
				entry[i] = int32(n)
			}
			info = append(info, entry)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(info) == 0 || info[0] != nil {
		return nil, fmt.Errorf("ilabel-info must start with the epsilon entry (a line holding _)")
	}
	return info, nil
}
