/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

// Values makes the running native procedure return all of vals. It must be
// the last thing the native does; its result is what the native returns.
func (s *State) Values(vals ...Scmer) (Scmer, error) {
	s.reserve(len(vals))
	copy(s.stack[s.sp:], vals)
	s.cis[s.ci].retc = len(vals)
	if len(vals) == 0 {
		return NewUndef(), nil
	}
	return vals[0], nil
}

// ValuesByList is Values for a proper list.
func (s *State) ValuesByList(list Scmer) (Scmer, error) {
	vals, err := ListToSlice(list)
	if err != nil {
		return invalid(), err
	}
	return s.Values(vals...)
}

// Receive copies the values of the most recently completed Apply into argv
// (as many as fit) and returns how many values there were.
func (s *State) Receive(argv []Scmer) int {
	done := &s.cis[s.ci+1]
	copy(argv, s.stack[done.fp:done.fp+done.retc])
	return done.retc
}

func (s *State) receiveAll() []Scmer {
	vals := make([]Scmer, s.Receive(nil))
	s.Receive(vals)
	return vals
}

// CallWithValues applies consumer to all values of producer.
func (s *State) CallWithValues(producer, consumer Scmer) (Scmer, error) {
	if err := s.apply(producer, nil); err != nil {
		return invalid(), err
	}
	return s.TailApply(consumer, s.receiveAll()...)
}

func init_values() {
	Declare(&Declaration{
		"values", "returns all of its arguments as multiple values",
		0, -1,
		[]DeclarationParameter{
			{"value...", "any", "values to return"},
		}, "values",
		func(s *State) (Scmer, error) {
			return s.Values(s.Args()...)
		},
	})
	Declare(&Declaration{
		"call-with-values", "calls consumer with all values returned by producer",
		2, 2,
		[]DeclarationParameter{
			{"producer", "func", "thunk"},
			{"consumer", "func", "procedure receiving the values"},
		}, "values",
		func(s *State) (Scmer, error) {
			var producer, consumer *Proc
			if err := s.GetArgs("ll", &producer, &consumer); err != nil {
				return invalid(), err
			}
			return s.CallWithValues(NewProc(producer), NewProc(consumer))
		},
	})
}
