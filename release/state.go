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

package release

type countState int

var errorMessages = map[countState]string{
	defaultState:   "",
	resultReturned: "Noised count is already computed and returned",
}

var stateName = map[countState]string{
	defaultState:   "Default",
	resultReturned: "ResultReturned",
}

const (
	defaultState countState = iota
	resultReturned
)

func (s countState) errorMessage() string {
	return errorMessages[s]
}

func (s countState) String() string {
	return stateName[s]
}
