// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// CodeWords reslices shader bytecode into the 32 bit words
// the API consumes. Bytecode is a whole number of words,
// anything else is rejected before it reaches the driver.
func CodeWords(data []byte) ([]uint32, error) {
	if len(data) == 0 {
		return nil, errors.New("empty bytecode")
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("bytecode length %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}

// MakeVersion packs a version the way the API expects it
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// VersionString unpacks a version made with MakeVersion
func VersionString(version uint32) string {
	return fmt.Sprintf("%d.%d.%d", version>>22, (version>>12)&0x3ff, version&0xfff)
}

func clamp(value, min, max uint32) uint32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// missing returns the names in required that are not in available,
// compared by exact string equality
func missing(required, available []string) []string {
	set := make(map[string]struct{}, len(available))
	for _, name := range available {
		set[name] = struct{}{}
	}
	var absent []string
	for _, name := range required {
		if _, ok := set[name]; !ok {
			absent = append(absent, name)
		}
	}
	return absent
}

// union appends the names of b missing from a, preserving order
func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, name := range list {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

func quoted(names []string) string {
	return "\"" + strings.Join(names, "\", \"") + "\""
}
