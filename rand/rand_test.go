//
// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package rand

import (
	"bytes"
	"testing"
)

// fixedSource replays a fixed sequence of words.
type fixedSource struct {
	words []uint64
	pos   int
}

func (s *fixedSource) Uint64() uint64 {
	w := s.words[s.pos%len(s.words)]
	s.pos++
	return w
}

func (s *fixedSource) Seed(_ uint64) {}

func TestBooleanBufIsShifting(t *testing.T) {
	r := New(&fixedSource{words: []uint64{
		0b00100100 << 56,
		0b10010000 << 56,
	}})
	for pos, want := range []bool{
		// first byte
		false,
		false,
		true,
		false,
		false,
		true,
		false,
		false,
		// second byte
		false,
		false,
		false,
		false,
		true,
		false,
		false,
		true,
	} {
		if got := r.Boolean(); got != want {
			t.Errorf("Boolean: got %v, want %v in %v-th iteration", got, want, pos)
		}
	}
}

func TestSecureSourceReadsBuffer(t *testing.T) {
	saved := randBuf
	defer func() { randBuf = saved }()
	randBuf = bytes.NewReader([]byte{1, 0, 0, 0, 0, 0, 0, 0})
	if got := NewSecure().U64(); got != 1 {
		t.Errorf("U64: got %d, want 1", got)
	}
}

func TestSeededIsReproducible(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Uniform(), b.Uniform(); x != y {
			t.Fatalf("Uniform with equal seeds: got %v and %v in %d-th iteration", x, y, i)
		}
	}
}

func TestUniformRange(t *testing.T) {
	r := NewSeeded(7)
	for i := 0; i < 10000; i++ {
		if u := r.Uniform(); u <= 0 || u > 1 {
			t.Fatalf("Uniform: got %v, want value in (0,1]", u)
		}
	}
}

func TestSign(t *testing.T) {
	r := NewSeeded(3)
	for i := 0; i < 100; i++ {
		if s := r.Sign(); s != 1 && s != -1 {
			t.Fatalf("Sign: got %v, want ±1", s)
		}
	}
}
