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

package noise

import (
	"math"
	"testing"

	"github.com/google/differential-privacy/diffgen/rand"
)

var ln3 = math.Log(3)

func nearEqual(a, b, maxError float64) bool {
	return math.Abs(a-b) < maxError
}

// shiftNoise adds a fixed offset instead of random noise.
type shiftNoise struct {
	offset int64
}

func (s shiftNoise) AddNoiseInt64(x, _ int64, _ float64) (int64, error) {
	return x + s.offset, nil
}

func TestParseKind(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", SecureLaplace, false},
		{"secure", SecureLaplace, false},
		{" Continuous ", ContinuousLaplace, false},
		{"gaussian", Unrecognised, true},
	} {
		got, err := ParseKind(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseKind(%q): got err %v, want error %t", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseKind(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestKindStringRoundTrip(t *testing.T) {
	for _, k := range []Kind{SecureLaplace, ContinuousLaplace} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%v.String()): got (%v, %v), want (%v, nil)", k, got, err, k)
		}
	}
}

func TestToNoise(t *testing.T) {
	r := rand.NewSeeded(1)
	if n := ToNoise(SecureLaplace, r); n == nil {
		t.Errorf("ToNoise(SecureLaplace): got nil")
	}
	if n := ToNoise(ContinuousLaplace, r); n == nil {
		t.Errorf("ToNoise(ContinuousLaplace): got nil")
	}
	if n := ToNoise(Unrecognised, r); n != nil {
		t.Errorf("ToNoise(Unrecognised): got %v, want nil", n)
	}
}

func TestAddNonNegativeNoiseInt64Clamps(t *testing.T) {
	for _, tc := range []struct {
		desc   string
		x      int64
		offset int64
		want   int64
	}{
		{"strongly negative noise", 3, -1000, 0},
		{"noise cancelling the count", 3, -3, 0},
		{"positive noise", 3, 2, 5},
	} {
		got, err := AddNonNegativeNoiseInt64(shiftNoise{tc.offset}, tc.x, 1, 1)
		if err != nil {
			t.Fatalf("AddNonNegativeNoiseInt64: when %s got err %v", tc.desc, err)
		}
		if got != tc.want {
			t.Errorf("AddNonNegativeNoiseInt64: when %s got %d, want %d", tc.desc, got, tc.want)
		}
	}
}

func TestAddNonNegativeNoiseInt64NeverNegative(t *testing.T) {
	r := rand.NewSeeded(5)
	for _, n := range []Noise{Laplace(r), ContinuousLaplaceNoise(r)} {
		for i := 0; i < 10000; i++ {
			got, err := AddNonNegativeNoiseInt64(n, 0, 1, 0.01)
			if err != nil {
				t.Fatalf("AddNonNegativeNoiseInt64 with %v: got err %v", n, err)
			}
			if got < 0 {
				t.Fatalf("AddNonNegativeNoiseInt64 with %v: got %d, want nonnegative", n, got)
			}
		}
	}
}
