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

// Package checks contains parameter checks for the private generalization
// engine.
package checks

import (
	"fmt"
	"math"
)

const (
	epsilonName     = "Epsilon"
	sensitivityName = "Sensitivity"
)

func verifyName(defaultName string, nameSlice []string) (string, error) {
	var name string
	switch len(nameSlice) {
	case 0:
		name = defaultName
	case 1:
		name = nameSlice[0]
	default:
		return "", fmt.Errorf("This should never happen. There should be 0 or 1 'name' parameter, got %d", len(nameSlice))
	}
	return name, nil
}

// CheckEpsilonVeryStrict returns an error if ε is +∞ or less than 2⁻⁵⁰.
func CheckEpsilonVeryStrict(epsilon float64, name ...string) error {
	epsName, err := verifyName(epsilonName, name)
	if err != nil {
		return err
	}
	if epsilon < math.Exp2(-50.0) || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%s is %f, must be at least 2^-50 and finite", epsName, epsilon)
	}
	return nil
}

// CheckEpsilonStrict returns an error if ε is nonpositive or +∞.
func CheckEpsilonStrict(epsilon float64, name ...string) error {
	epsName, err := verifyName(epsilonName, name)
	if err != nil {
		return err
	}
	if epsilon <= 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%s is %f, must be strictly positive and finite", epsName, epsilon)
	}
	return nil
}

// CheckSensitivity returns an error if the sensitivity of a score function is
// nonpositive, infinite or NaN.
func CheckSensitivity(sensitivity float64, name ...string) error {
	sensName, err := verifyName(sensitivityName, name)
	if err != nil {
		return err
	}
	if sensitivity <= 0 || math.IsInf(sensitivity, 0) || math.IsNaN(sensitivity) {
		return fmt.Errorf("%s is %f, must be strictly positive and finite", sensName, sensitivity)
	}
	return nil
}

// CheckL1Sensitivity returns an error if the L1 sensitivity of a count is
// nonpositive.
func CheckL1Sensitivity(l1Sensitivity int64) error {
	if l1Sensitivity <= 0 {
		return fmt.Errorf("L1Sensitivity is %d, must be strictly positive", l1Sensitivity)
	}
	return nil
}

// CheckSpecializations returns an error if the number of specializations is
// nonpositive.
func CheckSpecializations(n int) error {
	if n <= 0 {
		return fmt.Errorf("Specializations is %d, must be strictly positive", n)
	}
	return nil
}

// CheckTrainingSplit returns an error if the number of training records is
// nonpositive, or if it leaves no room for test records among the nInput
// records read. A negative nInput means all records are read.
func CheckTrainingSplit(nTraining, nInput int) error {
	if nTraining <= 0 {
		return fmt.Errorf("Training records is %d, must be strictly positive", nTraining)
	}
	if nInput >= 0 && nTraining >= nInput {
		return fmt.Errorf("Training records is %d, must be strictly less than input records %d", nTraining, nInput)
	}
	return nil
}

// CheckNumClasses returns an error if the class attribute has fewer than one
// class label.
func CheckNumClasses(n int) error {
	if n < 1 {
		return fmt.Errorf("Number of classes is %d, must be at least 1", n)
	}
	return nil
}

// CheckMaxLevel returns an error if the estimated maximum path length is
// negative.
func CheckMaxLevel(maxLevel int) error {
	if maxLevel < 0 {
		return fmt.Errorf("Max level is %d, cannot be negative", maxLevel)
	}
	return nil
}
