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

// Package rand provides the random numbers consumed by the private selection
// and noise mechanisms.
//
// A Rand is backed either by a cryptographically secure source, which is what
// a real release must use, or by a seeded pseudo-random source, which makes a
// run reproducible in tests. Both satisfy golang.org/x/exp/rand.Source, so the
// same generator can drive gonum's distributions.
package rand

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"math/bits"
	"sync"

	log "github.com/golang/glog"
	exprand "golang.org/x/exp/rand"
)

var (
	randBufLock sync.Mutex
	randBuf     io.Reader = bufio.NewReaderSize(cryptorand.Reader, 65536)
)

func readRandBuf(b []byte) (int, error) {
	randBufLock.Lock()
	defer randBufLock.Unlock()
	return io.ReadFull(randBuf, b)
}

// secureSource implements exprand.Source on top of crypto/rand.
type secureSource struct{}

// Uint64 returns a uniformly random uint64.
func (secureSource) Uint64() uint64 {
	var r [8]uint8
	if _, err := readRandBuf(r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	return binary.LittleEndian.Uint64(r[:])
}

// Seed is a no-op.
func (secureSource) Seed(_ uint64) {}

// Rand generates the random values needed by the mechanisms. It is not safe
// for concurrent use; the engine runs a single sequential pass.
type Rand struct {
	src    exprand.Source
	bitBuf uint8
	bitPos int8
}

// New returns a Rand drawing from src.
func New(src exprand.Source) *Rand {
	return &Rand{src: src, bitPos: math.MaxInt8}
}

// NewSecure returns a Rand backed by crypto/rand.
func NewSecure() *Rand {
	return New(secureSource{})
}

// NewSeeded returns a deterministic Rand. Two Rands created with the same seed
// produce the same sequence.
func NewSeeded(seed uint64) *Rand {
	return New(exprand.NewSource(seed))
}

// Source returns the underlying source, for use with gonum's distuv.
func (r *Rand) Source() exprand.Source {
	return r.src
}

// U64 returns a uniformly random uint64.
func (r *Rand) U64() uint64 {
	return r.src.Uint64()
}

// U8 returns a uniformly random uint8.
func (r *Rand) U8() uint8 {
	return uint8(r.src.Uint64() >> 56)
}

// Sign returns +1.0 or -1.0 with equal probabilities.
func (r *Rand) Sign() float64 {
	if r.Boolean() {
		return 1.0
	}
	return -1.0
}

// Boolean returns true or false with equal probability.
func (r *Rand) Boolean() bool {
	if r.bitPos > 7 { // Out of random bits.
		r.bitBuf = r.U8()
		r.bitPos = 0
	}
	res := r.bitBuf&(1<<r.bitPos) > 0
	r.bitPos++
	return res
}

// Uniform returns a float64 from the interval (0,1] such that each float
// in the interval is returned with positive probability and the resulting
// distribution simulates a continuous uniform distribution on (0, 1].
func (r *Rand) Uniform() float64 {
	i := r.U64() % (1 << 53)
	u := (1 + float64(i)/(1<<53)) / math.Pow(2, r.Geometric())
	// Never return 0, callers take the log of the output.
	if u == 0 {
		return 1
	}
	return u
}

// Geometric returns a float64 that counts the number of Bernoulli trials until
// the first success for a success probability of 0.5.
func (r *Rand) Geometric() float64 {
	// 1 plus the number of leading zeros from an infinite stream of random bits
	// follows the desired geometric distribution.
	b := 1
	var x uint8
	for x == 0 {
		x = r.U8()
		b += bits.LeadingZeros8(x)
	}
	return float64(b)
}
