// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "github.com/sirupsen/logrus"

// Releasable defines any API object that can be freed.
type Releasable interface {
	// Release releases the object and anything it exclusively holds.
	Release()
}

// ReleaseFunc adapts a plain function to Releasable
type ReleaseFunc func()

// Release implements interface
func (f ReleaseFunc) Release() { f() }

type release struct {
	name string
	item Releasable
}

// releaseStack records every created object in creation order.
// Unwinding pops from the top, so children always go before their parents.
// raise reorders an entry for objects whose teardown order differs.
type releaseStack struct {
	entries []release
}

func (s *releaseStack) push(name string, item Releasable) {
	s.entries = append(s.entries, release{name: name, item: item})
}

// raise moves the newest entry called name to the top, so it is released
// next. Unknown names are ignored.
func (s *releaseStack) raise(name string) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].name != name {
			continue
		}
		entry := s.entries[i]
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		s.entries = append(s.entries, entry)
		return
	}
}

func (s *releaseStack) len() int {
	return len(s.entries)
}

// unwindTo releases entries until only mark of them remain
func (s *releaseStack) unwindTo(mark int, log logrus.FieldLogger) {
	for len(s.entries) > mark {
		top := s.entries[len(s.entries)-1]
		s.entries = s.entries[:len(s.entries)-1]
		log.WithField("object", top.name).Debug("releasing")
		top.item.Release()
	}
}

func (s *releaseStack) unwind(log logrus.FieldLogger) {
	s.unwindTo(0, log)
}
